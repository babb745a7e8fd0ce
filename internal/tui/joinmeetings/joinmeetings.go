// ABOUTME: Join Meetings tab: find another user's free slots and book one
// ABOUTME: Searches run only on explicit request; stale responses are discarded by sequence

package joinmeetings

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
	CreateBooking(ctx context.Context, input client.BookingInput) (*client.Booking, error)
}

// State of the finder
type State int

const (
	AwaitingQuery State = iota
	Searching
	Results
	Failed
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Results:
		return "results"
	case Failed:
		return "failed"
	default:
		return "awaiting query"
	}
}

const timeLayout = "Mon Jan 2 15:04"

// SearchRequested starts a search for email. Seq identifies the search; a
// response carrying an older seq is ignored.
type SearchRequested struct {
	Seq   int
	Email string
}

type searchResultMsg struct {
	seq   int
	slots []client.Slot
	err   error
}

type bookedMsg struct {
	slot    client.SlotID
	booking *client.Booking
	err     error
}

// Model is the Join Meetings bubbletea model
type Model struct {
	api       API
	selfEmail string

	input   textinput.Model
	spinner spinner.Model

	state  State
	seq    int
	query  string
	slots  []client.Slot
	err    error
	cancel context.CancelFunc

	cursor   int
	selected client.SlotID
	listMode bool

	booking bool
	notice  string
	bookErr string
	width   int
}

// New creates the tab. selfEmail is added as the participant of every booking.
func New(api API, selfEmail string) *Model {
	input := textinput.New()
	input.Placeholder = "colleague@example.com"
	input.Prompt = icons.Search.String() + " "
	input.CharLimit = 254

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		api:       api,
		selfEmail: selfEmail,
		input:     input,
		spinner:   sp,
	}
}

// Activate focuses the email field
func (m *Model) Activate() tea.Cmd {
	m.listMode = false
	return m.input.Focus()
}

// Deactivate cancels an in-flight search and returns to AwaitingQuery
func (m *Model) Deactivate() {
	m.stopSearch()
	if m.state == Searching {
		m.seq++
		m.state = AwaitingQuery
	}
	m.input.Blur()
}

func (m *Model) stopSearch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Editing reports whether the email field has keyboard focus
func (m *Model) Editing() bool {
	return !m.listMode
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Search issues a SearchRequested for the current email field
func (m *Model) Search() tea.Cmd {
	// An empty email is sent as-is; the backend decides what it means
	email := strings.TrimSpace(m.input.Value())

	m.seq++
	req := SearchRequested{Seq: m.seq, Email: email}
	return func() tea.Msg { return req }
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SearchRequested:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m, m.startSearch(msg)

	case searchResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.cancel = nil
		if msg.err != nil {
			m.state = Failed
			m.err = msg.err
			slog.Warn("Free slot search failed", "email", m.query, "error", msg.err)
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		m.state = Results
		m.slots = msg.slots
		m.cursor = 0
		if len(m.slots) > 0 {
			m.listMode = true
			m.input.Blur()
		}
		return m, nil

	case bookedMsg:
		m.booking = false
		if msg.err != nil {
			m.bookErr = "Booking failed: " + msg.err.Error()
			return m, nav.ExpiredIfUnauthorized(msg.err)
		}
		if m.selected == msg.slot {
			m.selected = ""
		}
		m.bookErr = ""
		m.notice = fmt.Sprintf("Booked slot %s with %s", msg.slot, msg.booking.HostEmail)
		return m, nil

	case spinner.TickMsg:
		if m.state != Searching && !m.booking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.listMode {
			return m.updateList(msg)
		}
		return m.updateInput(msg)
	}

	return m, nil
}

func (m *Model) startSearch(req SearchRequested) tea.Cmd {
	m.stopSearch()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.state = Searching
	m.query = req.Email
	m.slots = nil
	m.selected = ""
	m.err = nil
	m.notice = ""
	m.bookErr = ""

	return tea.Batch(func() tea.Msg {
		slots, err := m.api.ListSlots(ctx, req.Email)
		return searchResultMsg{seq: req.Seq, slots: slots, err: err}
	}, m.spinner.Tick)
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.Search()
	case "down":
		if m.state == Results && len(m.slots) > 0 {
			m.listMode = true
			m.input.Blur()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.resetQuery()
	}
	return m, cmd
}

// resetQuery returns to AwaitingQuery after the email is edited
func (m *Model) resetQuery() {
	m.stopSearch()
	m.seq++
	m.state = AwaitingQuery
	m.query = ""
	m.slots = nil
	m.selected = ""
	m.cursor = 0
	m.err = nil
	m.notice = ""
	m.bookErr = ""
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
	case " ", "enter":
		if m.cursor < len(m.slots) {
			m.Select(m.slots[m.cursor].ID)
		}
	case "b":
		return m, m.Book()
	case "/", "e", "esc":
		m.listMode = false
		return m, m.input.Focus()
	}
	return m, nil
}

// SetEmail replaces the email field, resetting any previous results
func (m *Model) SetEmail(email string) {
	if m.input.Value() == email {
		return
	}
	m.input.SetValue(email)
	m.resetQuery()
}

// Select marks id as the single selected slot
func (m *Model) Select(id client.SlotID) {
	m.selected = id
	m.bookErr = ""
	m.notice = ""
}

// Book submits a booking for the selected slot. Without a selection it
// reports an error and makes no request.
func (m *Model) Book() tea.Cmd {
	host := m.query
	if host == "" {
		host = m.ownerOf(m.selected)
	}
	input, err := client.NewBookingInput(m.selected, host, m.selfEmail)
	if err != nil {
		m.bookErr = err.Error()
		return nil
	}

	m.booking = true
	m.bookErr = ""
	slot := m.selected
	return tea.Batch(func() tea.Msg {
		booking, err := m.api.CreateBooking(context.Background(), input)
		return bookedMsg{slot: slot, booking: booking, err: err}
	}, m.spinner.Tick)
}

// ownerOf returns the owner of a listed slot, used when the search had no email
func (m *Model) ownerOf(id client.SlotID) string {
	for _, s := range m.slots {
		if s.ID == id {
			return s.OwnerEmail
		}
	}
	return ""
}

// State returns the finder state
func (m *Model) State() State {
	return m.state
}

// Selected returns the selected slot id, empty when nothing is selected
func (m *Model) Selected() client.SlotID {
	return m.selected
}

// Results returns the slots from the last completed search
func (m *Model) Results() []client.Slot {
	return m.slots
}

// BookError returns the last booking error message
func (m *Model) BookError() string {
	return m.bookErr
}

// Notice returns the last confirmation message
func (m *Model) Notice() string {
	return m.notice
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.User.String() + " Join Meetings"))
	if m.state == Results {
		sb.WriteString(" " + widgets.CountBadge(len(m.slots)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.viewResults())

	if m.booking {
		sb.WriteString("\n" + m.spinner.View() + " Booking...")
	}
	if m.bookErr != "" {
		sb.WriteString("\n" + widgets.StatusText(m.bookErr, widgets.StatusCritical))
	}
	if m.notice != "" {
		sb.WriteString("\n" + widgets.StatusText(m.notice, widgets.StatusOK))
	}

	return sb.String()
}

func (m *Model) viewResults() string {
	switch m.state {
	case AwaitingQuery:
		return styles.Subtitle.Render("Enter an email and press Enter to search")
	case Searching:
		if m.query == "" {
			return m.spinner.View() + " Searching free slots..."
		}
		return m.spinner.View() + " Searching free slots for " + m.query + "..."
	case Failed:
		return widgets.StatusText(failureMessage(m.err), widgets.StatusCritical)
	}

	if len(m.slots) == 0 {
		return styles.Subtitle.Render("No free slots")
	}

	var lines []string
	for i, s := range m.slots {
		mark := icons.RadioOff.String()
		if s.ID == m.selected {
			mark = styles.Selected.Render(icons.Radio.String())
		}
		line := fmt.Sprintf("%s %s - %s", mark, s.StartTime.Local().Format(timeLayout), s.EndTime.Local().Format("15:04"))
		if i == m.cursor && m.listMode {
			lines = append(lines, styles.Cursor.Render(icons.Pointer.String())+" "+line)
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// HelpKeys lists the shortcuts for the footer
func (m *Model) HelpKeys() []string {
	if m.listMode {
		return []string{"↑↓ Navigate", "Space Select", "b Book", "/ Edit email"}
	}
	return []string{"Enter Search", "↓ Results"}
}

func failureMessage(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return "Session expired"
	}
	return "Failed to load free slots"
}
