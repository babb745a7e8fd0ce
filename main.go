// ABOUTME: Entry point for the slotbook client
// ABOUTME: Starts the interactive interface or runs a scripted subcommand

package main

import (
	"fmt"
	"os"

	"github.com/markalston/slotbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
