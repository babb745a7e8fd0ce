// ABOUTME: Wire schemas for slots and bookings with validation at the decode boundary
// ABOUTME: Malformed payloads fail to decode instead of leaking zero values into views

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotID is an opaque slot identifier. The backend may send it as a JSON
// number or string; integer-looking ids are written back as numbers.
type SlotID string

func (id *SlotID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SlotID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("slot_id must be a string or number: %w", err)
	}
	*id = SlotID(n.String())
	return nil
}

func (id SlotID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id SlotID) String() string {
	return string(id)
}

// Slot is an interval a user advertises as available
type Slot struct {
	ID         SlotID    `json:"slot_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OwnerEmail string    `json:"owner_email,omitempty"`
}

type slotWire struct {
	ID         SlotID `json:"slot_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	OwnerEmail string `json:"owner_email"`
	UserEmail  string `json:"user_email"`
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var w slotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return errors.New("slot is missing slot_id")
	}

	start, err := ParseTimestamp(w.StartTime)
	if err != nil {
		return fmt.Errorf("slot %s: invalid start_time: %w", w.ID, err)
	}
	end, err := ParseTimestamp(w.EndTime)
	if err != nil {
		return fmt.Errorf("slot %s: invalid end_time: %w", w.ID, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("slot %s: start_time must be before end_time", w.ID)
	}

	owner := w.OwnerEmail
	if owner == "" {
		owner = w.UserEmail
	}

	*s = Slot{ID: w.ID, StartTime: start, EndTime: end, OwnerEmail: owner}
	return nil
}

// Booking commits a slot to a set of participants
type Booking struct {
	SlotID       SlotID     `json:"slot_id"`
	HostEmail    string     `json:"host_email"`
	Participants []string   `json:"participants"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

type bookingWire struct {
	SlotID       SlotID   `json:"slot_id"`
	HostEmail    string   `json:"host_email"`
	UserEmail    string   `json:"user_email"`
	Participants []string `json:"participants"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var w bookingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.SlotID == "" {
		return errors.New("booking is missing slot_id")
	}

	out := Booking{
		SlotID:       w.SlotID,
		HostEmail:    w.HostEmail,
		Participants: w.Participants,
	}
	if out.HostEmail == "" {
		out.HostEmail = w.UserEmail
	}
	if out.Participants == nil {
		out.Participants = []string{}
	}
	if w.StartTime != "" {
		t, err := ParseTimestamp(w.StartTime)
		if err != nil {
			return fmt.Errorf("booking %s: invalid start_time: %w", w.SlotID, err)
		}
		out.StartTime = &t
	}
	if w.EndTime != "" {
		t, err := ParseTimestamp(w.EndTime)
		if err != nil {
			return fmt.Errorf("booking %s: invalid end_time: %w", w.SlotID, err)
		}
		out.EndTime = &t
	}

	*b = out
	return nil
}

// SlotInput is the body of POST /slots
type SlotInput struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BookingInput is the body of POST /booking
type BookingInput struct {
	SlotID       SlotID   `json:"slot_id"`
	HostEmail    string   `json:"host_email"`
	Participants []string `json:"participants"`
}

// Layouts accepted for user-entered times, interpreted in local time
// unless they carry an offset.
var inputLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NewSlotInput validates user-entered start and end times.
// Both are required and start must be before end.
func NewSlotInput(start, end string) (SlotInput, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	if start == "" || end == "" {
		return SlotInput{}, validationErrorf("time", "start and end time are required")
	}

	startTime, err := ParseInputTime(start)
	if err != nil {
		return SlotInput{}, validationErrorf("start_time", "invalid start time %q", start)
	}
	endTime, err := ParseInputTime(end)
	if err != nil {
		return SlotInput{}, validationErrorf("end_time", "invalid end time %q", end)
	}
	if !startTime.Before(endTime) {
		return SlotInput{}, validationErrorf("end_time", "end time must be after start time")
	}

	return SlotInput{StartTime: startTime.UTC(), EndTime: endTime.UTC()}, nil
}

// NewBookingInput composes a booking for slot hosted by host with self as the
// single participant.
func NewBookingInput(slot SlotID, host, self string) (BookingInput, error) {
	if slot == "" {
		return BookingInput{}, validationErrorf("slot_id", "select a slot first")
	}
	return BookingInput{
		SlotID:       slot,
		HostEmail:    host,
		Participants: []string{self},
	}, nil
}

// ParseInputTime accepts RFC 3339 or one of the short local layouts
func ParseInputTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ParseTimestamp parses a backend timestamp (ISO 8601). Values without an
// offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
