// ABOUTME: My Slots tab: the user's own availability and bookings
// ABOUTME: Fetches both lists on activation and applies each result independently

package myslots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/slotbook/internal/client"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/markalston/slotbook/internal/tui/styles"
	"github.com/markalston/slotbook/internal/tui/widgets"
)

// API is the subset of the backend client used by this tab
type API interface {
	ListSlots(ctx context.Context, email string) ([]client.Slot, error)
	ListBookings(ctx context.Context) ([]client.Booking, error)
	CreateSlot(ctx context.Context, input client.SlotInput) (*client.Slot, error)
	DeleteSlot(ctx context.Context, id client.SlotID) error
}

// ListState tracks one remote list
type ListState int

const (
	Idle ListState = iota
	Loading
	Loaded
	Failed
)

func (s ListState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

type focus int

const (
	focusList focus = iota
	focusStart
	focusEnd
)

const timeLayout = "Mon Jan 2 15:04"

type slotsLoadedMsg struct {
	gen   int
	slots []client.Slot
	err   error
}

type bookingsLoadedMsg struct {
	gen      int
	bookings []client.Booking
	err      error
}

type slotCreatedMsg struct {
	slot *client.Slot
	err  error
}

type slotDeletedMsg struct {
	id  client.SlotID
	err error
}

// Model is the My Slots bubbletea model
type Model struct {
	api   API
	email string

	slots         []client.Slot
	slotsState    ListState
	slotsErr      error
	bookings      []client.Booking
	bookingsState ListState
	bookingsErr   error

	// gen invalidates read responses from earlier activations
	gen    int
	cancel context.CancelFunc

	cursor  int
	focus   focus
	start   textinput.Model
	end     textinput.Model
	formErr string
	notice  string
	adding  bool
	spinner spinner.Model
	width   int
}

// New creates the tab for the user identified by email
func New(api API, email string) *Model {
	start := textinput.New()
	start.Placeholder = "2025-04-20 13:00"
	start.Prompt = "Start: "
	start.CharLimit = 32

	end := textinput.New()
	end.Placeholder = "2025-04-20 14:00"
	end.Prompt = "End:   "
	end.CharLimit = 32

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		api:     api,
		email:   email,
		start:   start,
		end:     end,
		spinner: sp,
	}
}

// Activate starts a fresh fetch of both lists. Any previous fetch is cancelled.
func (m *Model) Activate() tea.Cmd {
	m.stopReads()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.gen++

	m.slotsState = Loading
	m.slotsErr = nil
	m.bookingsState = Loading
	m.bookingsErr = nil

	return tea.Batch(
		m.fetchSlots(ctx, m.gen),
		m.fetchBookings(ctx, m.gen),
		m.spinner.Tick,
	)
}

// Deactivate cancels in-flight reads. Their late responses are dropped.
func (m *Model) Deactivate() {
	m.stopReads()
	m.gen++
	m.blurForm()
}

func (m *Model) stopReads() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Editing reports whether a text field has keyboard focus
func (m *Model) Editing() bool {
	return m.focus != focusList
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) fetchSlots(ctx context.Context, gen int) tea.Cmd {
	return func() tea.Msg {
		slots, err := m.api.ListSlots(ctx, m.email)
		return slotsLoadedMsg{gen: gen, slots: slots, err: err}
	}
}

func (m *Model) fetchBookings(ctx context.Context, gen int) tea.Cmd {
	return func() tea.Msg {
		bookings, err := m.api.ListBookings(ctx)
		return bookingsLoadedMsg{gen: gen, bookings: bookings, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case slotsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.slotsState = Failed
			m.slotsErr = msg.err
			slog.Warn("Failed to load slots", "error", msg.err)
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		m.slots = msg.slots
		m.slotsState = Loaded
		m.clampCursor()
		return m, nil

	case bookingsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.bookingsState = Failed
			m.bookingsErr = msg.err
			slog.Warn("Failed to load bookings", "error", msg.err)
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		m.bookings = msg.bookings
		m.bookingsState = Loaded
		return m, nil

	case slotCreatedMsg:
		m.adding = false
		if msg.err != nil {
			m.formErr = "Failed to add slot: " + msg.err.Error()
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		if m.slotsState != Loaded {
			// The list on screen is a spinner or an error; the next load replaces it
			slog.Info("Slot added while slot list not loaded", "slot_id", msg.slot.ID, "state", m.slotsState.String())
		}
		m.slots = append(m.slots, *msg.slot)
		m.notice = "Slot added"
		m.start.SetValue("")
		m.end.SetValue("")
		m.blurForm()
		return m, nil

	case slotDeletedMsg:
		if msg.err != nil {
			slog.Error("Failed to delete slot", "slot_id", msg.id, "error", msg.err)
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		m.removeSlot(msg.id)
		m.notice = "Slot deleted"
		return m, nil

	case spinner.TickMsg:
		if m.slotsState != Loading && m.bookingsState != Loading && !m.adding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.focus == focusList {
			return m.updateList(msg)
		}
		return m.updateForm(msg)
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.slots)-1 {
			m.cursor++
		}
	case "a":
		m.notice = ""
		m.formErr = ""
		m.focus = focusStart
		m.end.Blur()
		return m, m.start.Focus()
	case "d", "delete":
		if m.cursor < len(m.slots) {
			return m, m.DeleteSlot(m.slots[m.cursor].ID)
		}
	case "r":
		return m, m.Activate()
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formErr = ""
		m.blurForm()
		return m, nil
	case "up", "shift+tab":
		return m, m.focusField(focusStart)
	case "down":
		return m, m.focusField(focusEnd)
	case "enter":
		if m.focus == focusStart {
			return m, m.focusField(focusEnd)
		}
		return m, m.AddSlot(m.start.Value(), m.end.Value())
	}

	var cmd tea.Cmd
	if m.focus == focusStart {
		m.start, cmd = m.start.Update(msg)
	} else {
		m.end, cmd = m.end.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(f focus) tea.Cmd {
	m.focus = f
	if f == focusStart {
		m.end.Blur()
		return m.start.Focus()
	}
	m.start.Blur()
	return m.end.Focus()
}

func (m *Model) blurForm() {
	m.focus = focusList
	m.start.Blur()
	m.end.Blur()
}

// AddSlot validates the entered times and submits them. Invalid input is
// reported without a network call.
func (m *Model) AddSlot(start, end string) tea.Cmd {
	input, err := client.NewSlotInput(start, end)
	if err != nil {
		m.formErr = err.Error()
		return nil
	}

	m.formErr = ""
	m.adding = true
	return tea.Batch(func() tea.Msg {
		slot, err := m.api.CreateSlot(context.Background(), input)
		return slotCreatedMsg{slot: slot, err: err}
	}, m.spinner.Tick)
}

// DeleteSlot removes the slot remotely; the local list changes only on success
func (m *Model) DeleteSlot(id client.SlotID) tea.Cmd {
	m.notice = ""
	return func() tea.Msg {
		err := m.api.DeleteSlot(context.Background(), id)
		return slotDeletedMsg{id: id, err: err}
	}
}

func (m *Model) removeSlot(id client.SlotID) {
	kept := make([]client.Slot, 0, len(m.slots))
	for _, s := range m.slots {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.slots = kept
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.slots) {
		m.cursor = len(m.slots) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Slots returns the current slot list
func (m *Model) Slots() []client.Slot {
	return m.slots
}

// Bookings returns the current booking list
func (m *Model) Bookings() []client.Booking {
	return m.bookings
}

// SlotsState returns the load state of the slot list
func (m *Model) SlotsState() ListState {
	return m.slotsState
}

// BookingsState returns the load state of the booking list
func (m *Model) BookingsState() ListState {
	return m.bookingsState
}

// FormError returns the last add-slot error, if any
func (m *Model) FormError() string {
	return m.formErr
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Calendar.String() + " My Slots"))
	if m.slotsState == Loaded {
		sb.WriteString(" " + widgets.CountBadge(len(m.slots)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewSlots())
	sb.WriteString("\n")
	sb.WriteString(m.viewForm())
	sb.WriteString("\n\n")
	sb.WriteString(styles.Title.Render(icons.Booking.String() + " My Bookings"))
	if m.bookingsState == Loaded {
		sb.WriteString(" " + widgets.CountBadge(len(m.bookings)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewBookings())

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(widgets.StatusText(m.notice, widgets.StatusOK))
	}

	return sb.String()
}

func (m *Model) viewSlots() string {
	switch m.slotsState {
	case Idle:
		return ""
	case Loading:
		return m.spinner.View() + " Loading slots..."
	case Failed:
		return widgets.StatusText(userMessage(m.slotsErr), widgets.StatusCritical)
	}

	if len(m.slots) == 0 {
		return styles.Subtitle.Render("No slots yet. Press a to add one.")
	}

	var lines []string
	for i, s := range m.slots {
		line := fmt.Sprintf("%s  %s - %s", s.ID, s.StartTime.Local().Format(timeLayout), s.EndTime.Local().Format("15:04"))
		if i == m.cursor && m.focus == focusList {
			lines = append(lines, styles.Cursor.Render(icons.Pointer.String()+" "+line))
		} else {
			lines = append(lines, "  "+styles.Row.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewForm() string {
	if m.focus == focusList {
		if m.formErr != "" {
			return styles.StatusCritical.Render(m.formErr)
		}
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render(icons.Add.String() + " New slot"))
	sb.WriteString("\n")
	sb.WriteString(m.start.View())
	sb.WriteString("\n")
	sb.WriteString(m.end.View())
	if m.adding {
		sb.WriteString("\n" + m.spinner.View() + " Saving...")
	}
	if m.formErr != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render(m.formErr))
	}
	return sb.String()
}

func (m *Model) viewBookings() string {
	switch m.bookingsState {
	case Idle:
		return ""
	case Loading:
		return m.spinner.View() + " Loading bookings..."
	case Failed:
		return widgets.StatusText(userMessage(m.bookingsErr), widgets.StatusCritical)
	}

	if len(m.bookings) == 0 {
		return styles.Subtitle.Render("No bookings")
	}

	var lines []string
	for _, b := range m.bookings {
		when := ""
		if b.StartTime != nil {
			when = b.StartTime.Local().Format(timeLayout) + "  "
		}
		lines = append(lines, fmt.Sprintf("  %sslot %s with %s (%s)",
			when, b.SlotID, b.HostEmail, strings.Join(b.Participants, ", ")))
	}
	return strings.Join(lines, "\n")
}

// HelpKeys lists the shortcuts for the footer
func (m *Model) HelpKeys() []string {
	if m.focus != focusList {
		return []string{"↑↓ Field", "Enter Save", "Esc Cancel"}
	}
	return []string{"↑↓ Navigate", "a Add", "d Delete", "r Refresh"}
}

func userMessage(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return "Session expired"
	}
	return "Failed to load"
}
