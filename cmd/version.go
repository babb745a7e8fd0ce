// ABOUTME: Version command printing a banner and the build version
// ABOUTME: Version is set at build time with -ldflags

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is overridden at build time: -ldflags "-X github.com/markalston/slotbook/cmd.Version=v1.2.3"
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the slotbook version",
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runVersion(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(w io.Writer) int {
	if IsJSONOutput() {
		fmt.Fprintf(w, "{\"version\": %q}\n", Version)
		return exitOK
	}
	banner := figure.NewFigure("slotbook", "cybermedium", true)
	fmt.Fprintln(w, banner.String())
	fmt.Fprintf(w, "version %s\n", Version)
	return exitOK
}
