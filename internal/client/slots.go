// ABOUTME: Slot and booking endpoints of the scheduling backend
// ABOUTME: All calls here require a bearer token from the session store

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ListSlots calls GET /slots. The email filter is omitted when empty.
func (c *Client) ListSlots(ctx context.Context, email string) ([]Slot, error) {
	var slots []Slot
	query := url.Values{"email": {email}}
	if err := c.do(ctx, c.authClient, http.MethodGet, "/slots", query, nil, &slots); err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}

// CreateSlot calls POST /slots and returns the slot as stored by the backend
func (c *Client) CreateSlot(ctx context.Context, input SlotInput) (*Slot, error) {
	var slot Slot
	if err := c.do(ctx, c.authClient, http.MethodPost, "/slots", nil, input, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteSlot calls DELETE /slots/{id}. A 404 means the slot is already gone
// and is treated as success.
func (c *Client) DeleteSlot(ctx context.Context, id SlotID) error {
	if id == "" {
		return validationErrorf("slot_id", "slot id is required")
	}

	err := c.do(ctx, c.authClient, http.MethodDelete, "/slots/"+url.PathEscape(id.String()), nil, nil, nil)
	var re *RequestError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// ListBookings calls GET /bookings
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.do(ctx, c.authClient, http.MethodGet, "/bookings", nil, nil, &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

// CreateBooking calls POST /booking
func (c *Client) CreateBooking(ctx context.Context, input BookingInput) (*Booking, error) {
	if input.SlotID == "" {
		return nil, validationErrorf("slot_id", "select a slot first")
	}

	var booking Booking
	if err := c.do(ctx, c.authClient, http.MethodPost, "/booking", nil, input, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
