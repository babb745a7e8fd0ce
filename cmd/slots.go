// ABOUTME: Slot commands: list own slots and bookings, add a slot, delete a slot
// ABOUTME: The list fetches slots and bookings concurrently and reports each independently

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/markalston/slotbook/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	slotStart string
	slotEnd   string
)

const displayLayout = "Mon 2006-01-02 15:04"

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Manage your available slots",
}

var slotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your slots and bookings",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSlotsList(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var slotsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a new slot",
	Long: `Publish a new available slot.

Times accept RFC 3339 (2025-04-20T13:00:00Z) or local time as
"2025-04-20 13:00" / "2025-04-20T13:00". Start must be before end.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSlotsAdd(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var slotsDeleteCmd = &cobra.Command{
	Use:   "delete <slot-id>",
	Short: "Delete one of your slots",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSlotsDelete(ctx, os.Stdout, args[0]); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(slotsCmd)
	slotsCmd.AddCommand(slotsListCmd, slotsAddCmd, slotsDeleteCmd)

	slotsAddCmd.Flags().StringVar(&slotStart, "start", "", "Slot start time")
	slotsAddCmd.Flags().StringVar(&slotEnd, "end", "", "Slot end time")
}

type slotsListOutput struct {
	Slots         []client.Slot    `json:"slots"`
	SlotsError    string           `json:"slots_error,omitempty"`
	Bookings      []client.Booking `json:"bookings"`
	BookingsError string           `json:"bookings_error,omitempty"`
}

func runSlotsList(ctx context.Context, w io.Writer) int {
	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)
	email := store.Email()

	var (
		g           errgroup.Group
		slots       []client.Slot
		bookings    []client.Booking
		slotsErr    error
		bookingsErr error
	)
	g.Go(func() error {
		slots, slotsErr = c.ListSlots(ctx, email)
		return slotsErr
	})
	g.Go(func() error {
		bookings, bookingsErr = c.ListBookings(ctx)
		return bookingsErr
	})
	err := g.Wait()

	if IsJSONOutput() {
		out := slotsListOutput{Slots: slots, Bookings: bookings}
		if slotsErr != nil {
			out.SlotsError = slotsErr.Error()
		}
		if bookingsErr != nil {
			out.BookingsError = bookingsErr.Error()
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, "Slots:")
		if slotsErr != nil {
			fmt.Fprintf(w, "  Error: %v\n", slotsErr)
		} else {
			fmt.Fprint(w, formatSlots(slots, "  No slots"))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Bookings:")
		if bookingsErr != nil {
			fmt.Fprintf(w, "  Error: %v\n", bookingsErr)
		} else {
			fmt.Fprint(w, formatBookings(bookings))
		}
	}

	if err != nil {
		return failure(io.Discard, store, err)
	}
	return exitOK
}

func runSlotsAdd(ctx context.Context, w io.Writer) int {
	input, err := client.NewSlotInput(slotStart, slotEnd)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitValidation
	}

	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)

	slot, err := c.CreateSlot(ctx, input)
	if err != nil {
		return failure(w, store, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(slot, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Created slot %s: %s\n", slot.ID, formatRange(*slot))
	}
	return exitOK
}

func runSlotsDelete(ctx context.Context, w io.Writer, id string) int {
	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)

	if err := c.DeleteSlot(ctx, client.SlotID(strings.TrimSpace(id))); err != nil {
		return failure(w, store, err)
	}

	fmt.Fprintf(w, "Deleted slot %s\n", id)
	return exitOK
}

func formatRange(s client.Slot) string {
	return s.StartTime.Local().Format(displayLayout) + " - " + s.EndTime.Local().Format("15:04")
}

func formatSlots(slots []client.Slot, empty string) string {
	if len(slots) == 0 {
		return empty + "\n"
	}
	var sb strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&sb, "  %-10s %s\n", s.ID, formatRange(s))
	}
	return sb.String()
}

func formatBookings(bookings []client.Booking) string {
	if len(bookings) == 0 {
		return "  No bookings\n"
	}
	var sb strings.Builder
	for _, b := range bookings {
		when := ""
		if b.StartTime != nil {
			when = b.StartTime.Local().Format(displayLayout) + "  "
		}
		fmt.Fprintf(&sb, "  %-10s %shost %s, participants %s\n",
			b.SlotID, when, b.HostEmail, strings.Join(b.Participants, ", "))
	}
	return sb.String()
}
