// ABOUTME: Export command writing own slots and bookings as an iCalendar file
// ABOUTME: Both lists must load; a failure in either aborts the export

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markalston/slotbook/internal/calendar"
	"github.com/markalston/slotbook/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your slots and bookings to an .ics file",
	Long: `Export your slots and bookings as iCalendar events.

Use --out - to write to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runExport(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "slotbook.ics", "Output file, or - for stdout")
}

func runExport(ctx context.Context, w io.Writer) int {
	if exportOut == "" {
		fmt.Fprintln(w, "Error: --out is required")
		return exitValidation
	}

	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)
	email := store.Email()

	var (
		slots    []client.Slot
		bookings []client.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slots, err = c.ListSlots(gctx, email)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = c.ListBookings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return failure(w, store, err)
	}

	cal, sum := calendar.Build(email, slots, bookings, time.Now())

	if exportOut == "-" {
		if err := calendar.Write(w, cal); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitRequestFailed
		}
		return exitOK
	}

	f, err := os.Create(exportOut)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRequestFailed
	}
	if err := calendar.Write(f, cal); err != nil {
		f.Close()
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRequestFailed
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRequestFailed
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"file":     exportOut,
			"slots":    sum.Slots,
			"bookings": sum.Bookings,
			"skipped":  sum.Skipped,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Wrote %d slots and %d bookings to %s\n", sum.Slots, sum.Bookings, exportOut)
		if sum.Skipped > 0 {
			fmt.Fprintf(w, "Skipped %d bookings without times\n", sum.Skipped)
		}
	}
	return exitOK
}
