// ABOUTME: Booking commands: list bookings, find another user's free slots, book one
// ABOUTME: Bookings are made with the session email as the only participant

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
	"github.com/markalston/slotbook/internal/session"
	"github.com/spf13/cobra"
)

var (
	freeEmail string
	bookSlot  string
	bookHost  string
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runBookings(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "List another user's free slots",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runFree(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book one of another user's free slots",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runBook(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(bookingsCmd, freeCmd, bookCmd)

	freeCmd.Flags().StringVar(&freeEmail, "email", "", "Email of the user whose free slots to list (empty lets the backend decide)")

	bookCmd.Flags().StringVar(&bookSlot, "slot", "", "Slot id to book")
	bookCmd.Flags().StringVar(&bookHost, "host", "", "Email of the slot's owner")
}

func runBookings(ctx context.Context, w io.Writer) int {
	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)

	bookings, err := c.ListBookings(ctx)
	if err != nil {
		return failure(w, store, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(bookings, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprint(w, formatBookings(bookings))
	}
	return exitOK
}

func runFree(ctx context.Context, w io.Writer) int {
	// An empty --email is passed through; the backend decides what it means
	email := strings.TrimSpace(freeEmail)

	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)

	slots, err := c.ListSlots(ctx, email)
	if err != nil {
		return failure(w, store, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(slots, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		if email == "" {
			fmt.Fprintln(w, "Free slots:")
		} else {
			fmt.Fprintf(w, "Free slots for %s:\n", email)
		}
		fmt.Fprint(w, formatSlots(slots, "  No free slots"))
	}
	return exitOK
}

func runBook(ctx context.Context, w io.Writer) int {
	host := strings.TrimSpace(bookHost)
	if host == "" {
		fmt.Fprintln(w, "Error: --host is required")
		return exitValidation
	}

	cfg := loadConfig()
	store := newSessionStore(cfg)
	self := store.Email()
	if self == "" {
		return failure(w, store, &client.RequestError{Err: session.ErrNoSession})
	}

	input, err := client.NewBookingInput(client.SlotID(strings.TrimSpace(bookSlot)), host, self)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitValidation
	}

	booking, err := newClient(cfg, store).CreateBooking(ctx, input)
	if err != nil {
		return failure(w, store, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(booking, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Booked slot %s with %s\n", booking.SlotID, booking.HostEmail)
	}
	return exitOK
}
