// ABOUTME: iCalendar export of a user's slots and bookings
// ABOUTME: Event UIDs are derived from slot ids so re-exports update rather than duplicate

package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/markalston/slotbook/internal/client"
)

const productID = "-//slotbook//slotbook export//EN"

// Summary counts what an export wrote
type Summary struct {
	Slots    int
	Bookings int
	// Skipped counts bookings the backend returned without times
	Skipped int
}

// Build assembles a calendar with one event per slot and per timed booking.
// owner is the signed-in user; stamp is written as DTSTAMP on every event.
func Build(owner string, slots []client.Slot, bookings []client.Booking, stamp time.Time) (*ical.Calendar, Summary) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	var sum Summary
	for _, s := range slots {
		event := newEvent("slot", s.ID, stamp, s.StartTime, s.EndTime)
		event.Props.SetText(ical.PropSummary, "Available")
		event.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		if owner != "" {
			event.Props.Set(mailto(ical.PropOrganizer, owner))
		}
		cal.Children = append(cal.Children, event.Component)
		sum.Slots++
	}

	for _, b := range bookings {
		if b.StartTime == nil || b.EndTime == nil {
			sum.Skipped++
			continue
		}
		event := newEvent("booking", b.SlotID, stamp, *b.StartTime, *b.EndTime)
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("Meeting with %s", b.HostEmail))
		event.Props.SetText(ical.PropStatus, "CONFIRMED")
		if b.HostEmail != "" {
			event.Props.Set(mailto(ical.PropOrganizer, b.HostEmail))
		}
		for _, p := range b.Participants {
			event.Props.Add(mailto(ical.PropAttendee, p))
		}
		cal.Children = append(cal.Children, event.Component)
		sum.Bookings++
	}

	return cal, sum
}

// Write encodes cal to w
func Write(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// EventUID returns the stable UID used for a slot or booking event
func EventUID(kind string, id client.SlotID) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("slotbook:"+kind+":"+id.String())).String() + "@slotbook"
}

func newEvent(kind string, id client.SlotID, stamp, start, end time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(kind, id))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	return event
}

func mailto(name, email string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = "mailto:" + email
	return prop
}
