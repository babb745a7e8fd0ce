package myslots

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/slotbook/internal/client"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	slots       []client.Slot
	slotsErr    error
	bookings    []client.Booking
	bookingsErr error
	createErr   error
	deleteErr   error

	listCalls   int
	createCalls int
	lastEmail   string
	lastCtx     context.Context
}

func (f *fakeAPI) ListSlots(ctx context.Context, email string) ([]client.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastEmail = email
	f.lastCtx = ctx
	return f.slots, f.slotsErr
}

func (f *fakeAPI) ListBookings(ctx context.Context) ([]client.Booking, error) {
	return f.bookings, f.bookingsErr
}

func (f *fakeAPI) CreateSlot(ctx context.Context, input client.SlotInput) (*client.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &client.Slot{ID: "new", StartTime: input.StartTime, EndTime: input.EndTime}, nil
}

func (f *fakeAPI) DeleteSlot(ctx context.Context, id client.SlotID) error {
	return f.deleteErr
}

func slot(id string, hour int) client.Slot {
	start := time.Date(2025, 4, 20, hour, 0, 0, 0, time.UTC)
	return client.Slot{ID: client.SlotID(id), StartTime: start, EndTime: start.Add(time.Hour)}
}

// collect runs cmd and any batched commands, dropping spinner ticks
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if _, ok := msg.(spinner.TickMsg); ok {
		return nil
	}
	return []tea.Msg{msg}
}

func apply(m *Model, msgs ...tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		out = append(out, collect(cmd)...)
	}
	return out
}

func TestActivate_LoadsBothListsInAnyOrder(t *testing.T) {
	api := &fakeAPI{
		slots:    []client.Slot{slot("1", 9)},
		bookings: []client.Booking{{SlotID: "7", HostEmail: "b@x.com", Participants: []string{"a@x.com"}}},
	}
	m := New(api, "a@x.com")

	msgs := collect(m.Activate())
	require.Len(t, msgs, 2)
	assert.Equal(t, Loading, m.SlotsState())
	assert.Equal(t, Loading, m.BookingsState())

	// Apply in reverse dispatch order
	apply(m, msgs[1], msgs[0])

	assert.Equal(t, Loaded, m.SlotsState())
	assert.Equal(t, Loaded, m.BookingsState())
	assert.Len(t, m.Slots(), 1)
	assert.Len(t, m.Bookings(), 1)
	assert.Equal(t, "a@x.com", api.lastEmail)
}

func TestActivate_FailuresAreIndependent(t *testing.T) {
	api := &fakeAPI{
		slotsErr: &client.RequestError{StatusCode: http.StatusInternalServerError},
		bookings: []client.Booking{},
	}
	m := New(api, "a@x.com")

	follow := apply(m, collect(m.Activate())...)

	assert.Empty(t, follow)
	assert.Equal(t, Failed, m.SlotsState())
	assert.Equal(t, Loaded, m.BookingsState())
	assert.Contains(t, m.View(), "Failed to load")
}

func TestActivate_UnauthorizedExpiresSession(t *testing.T) {
	api := &fakeAPI{slotsErr: &client.RequestError{StatusCode: http.StatusUnauthorized}}
	m := New(api, "a@x.com")

	follow := apply(m, collect(m.Activate())...)

	require.NotEmpty(t, follow)
	assert.IsType(t, nav.AuthExpiredMsg{}, follow[0])
}

func TestDeactivate_DropsLateResponses(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9)}}
	m := New(api, "a@x.com")

	msgs := collect(m.Activate())
	m.Deactivate()

	require.NotNil(t, api.lastCtx)
	assert.ErrorIs(t, api.lastCtx.Err(), context.Canceled)

	apply(m, msgs...)
	assert.Equal(t, Loading, m.SlotsState())
	assert.Empty(t, m.Slots())
}

func TestActivate_SupersedesEarlierActivation(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9)}}
	m := New(api, "a@x.com")

	first := collect(m.Activate())
	api.slots = []client.Slot{slot("2", 10)}
	second := collect(m.Activate())

	apply(m, second...)
	apply(m, first...)

	require.Len(t, m.Slots(), 1)
	assert.Equal(t, client.SlotID("2"), m.Slots()[0].ID)
}

func TestAddSlot_RequiresBothTimes(t *testing.T) {
	api := &fakeAPI{}
	m := New(api, "a@x.com")

	cmd := m.AddSlot("", "2025-04-20 14:00")

	assert.Nil(t, cmd)
	assert.Equal(t, "start and end time are required", m.FormError())
	assert.Equal(t, 0, api.createCalls)
}

func TestAddSlot_RejectsEndBeforeStart(t *testing.T) {
	api := &fakeAPI{}
	m := New(api, "a@x.com")

	cmd := m.AddSlot("2025-04-20 14:00", "2025-04-20 13:00")

	assert.Nil(t, cmd)
	assert.Equal(t, "end time must be after start time", m.FormError())
	assert.Equal(t, 0, api.createCalls)
}

func TestAddSlot_AppendsWithoutRefetch(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9)}}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)
	require.Equal(t, 1, api.listCalls)

	apply(m, collect(m.AddSlot("2025-04-20T13:00:00Z", "2025-04-20T14:00:00Z"))...)

	require.Len(t, m.Slots(), 2)
	assert.Equal(t, client.SlotID("new"), m.Slots()[1].ID)
	assert.Equal(t, 1, api.listCalls)
	assert.Equal(t, 1, api.createCalls)
	assert.Empty(t, m.FormError())
}

func TestAddSlot_WhileListFailedIsLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	api := &fakeAPI{slotsErr: &client.RequestError{StatusCode: http.StatusInternalServerError}}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)
	require.Equal(t, Failed, m.SlotsState())

	apply(m, collect(m.AddSlot("2025-04-20T13:00:00Z", "2025-04-20T14:00:00Z"))...)

	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, Failed, m.SlotsState())
	assert.Contains(t, logs.String(), "Slot added while slot list not loaded")
	assert.Contains(t, logs.String(), "slot_id=new")
}

func TestAddSlot_FailureLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9)}, createErr: errors.New("boom")}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)

	apply(m, collect(m.AddSlot("2025-04-20T13:00:00Z", "2025-04-20T14:00:00Z"))...)

	assert.Len(t, m.Slots(), 1)
	assert.Contains(t, m.FormError(), "Failed to add slot")
}

func TestDeleteSlot(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9), slot("2", 10), slot("3", 11)}}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)

	apply(m, collect(m.DeleteSlot("2"))...)
	require.Len(t, m.Slots(), 2)
	assert.Equal(t, client.SlotID("1"), m.Slots()[0].ID)
	assert.Equal(t, client.SlotID("3"), m.Slots()[1].ID)

	// Deleting an id that is no longer present changes nothing
	apply(m, collect(m.DeleteSlot("2"))...)
	assert.Len(t, m.Slots(), 2)
}

func TestDeleteSlot_FailureLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{slots: []client.Slot{slot("1", 9)}}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)

	api.deleteErr = errors.New("boom")
	follow := apply(m, collect(m.DeleteSlot("1"))...)

	assert.Empty(t, follow)
	assert.Len(t, m.Slots(), 1)
	assert.Empty(t, m.FormError())
}

func TestKeys_AddFormCapturesInput(t *testing.T) {
	api := &fakeAPI{}
	m := New(api, "a@x.com")
	apply(m, collect(m.Activate())...)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.True(t, m.Editing())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
}
