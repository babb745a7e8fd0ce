// ABOUTME: Dashboard shell switching between the My Slots and Join Meetings tabs
// ABOUTME: Holds no business data; activates and deactivates the tabs it hosts

package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/joinmeetings"
	"github.com/markalston/slotbook/internal/tui/myslots"
	"github.com/markalston/slotbook/internal/tui/styles"
)

// API combines the client calls both tabs need
type API interface {
	myslots.API
	joinmeetings.API
}

// Tab identifies a workflow tab
type Tab int

const (
	TabMySlots Tab = iota
	TabJoinMeetings
)

func (t Tab) String() string {
	if t == TabJoinMeetings {
		return "Join Meetings"
	}
	return "My Slots"
}

// tabModel is what the shell needs from a hosted tab
type tabModel interface {
	tea.Model
	Activate() tea.Cmd
	Deactivate()
	Editing() bool
	HelpKeys() []string
}

// Dashboard hosts the workflow tabs
type Dashboard struct {
	mySlots *myslots.Model
	join    *joinmeetings.Model
	active  Tab
	email   string
	width   int
	height  int
}

// New creates a dashboard for the signed-in user
func New(api API, email string) *Dashboard {
	return &Dashboard{
		mySlots: myslots.New(api, email),
		join:    joinmeetings.New(api, email),
		active:  TabMySlots,
		email:   email,
	}
}

// Init activates the initial tab
func (d *Dashboard) Init() tea.Cmd {
	return d.tab(d.active).Activate()
}

func (d *Dashboard) tab(t Tab) tabModel {
	if t == TabJoinMeetings {
		return d.join
	}
	return d.mySlots
}

// Active returns the visible tab
func (d *Dashboard) Active() Tab {
	return d.active
}

// Switch deactivates the current tab and activates t
func (d *Dashboard) Switch(t Tab) tea.Cmd {
	if t == d.active {
		return nil
	}
	d.tab(d.active).Deactivate()
	d.active = t
	return d.tab(t).Activate()
}

// Close deactivates the visible tab, cancelling its reads
func (d *Dashboard) Close() {
	d.tab(d.active).Deactivate()
}

// Editing reports whether the visible tab is capturing text input
func (d *Dashboard) Editing() bool {
	return d.tab(d.active).Editing()
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Update implements tea.Model. Keys go to the visible tab; other messages
// go to both tabs, which ignore messages that are not theirs.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return d, d.Switch(d.next())
		case "1":
			if !d.Editing() {
				return d, d.Switch(TabMySlots)
			}
		case "2":
			if !d.Editing() {
				return d, d.Switch(TabJoinMeetings)
			}
		}
		_, cmd := d.tab(d.active).Update(msg)
		return d, cmd
	}

	_, cmdA := d.mySlots.Update(msg)
	_, cmdB := d.join.Update(msg)
	return d, tea.Batch(cmdA, cmdB)
}

func (d *Dashboard) next() Tab {
	if d.active == TabMySlots {
		return TabJoinMeetings
	}
	return TabMySlots
}

// MySlots returns the My Slots tab
func (d *Dashboard) MySlots() *myslots.Model {
	return d.mySlots
}

// JoinMeetings returns the Join Meetings tab
func (d *Dashboard) JoinMeetings() *joinmeetings.Model {
	return d.join
}

// HelpKeys lists the shortcuts of the visible tab plus shell keys
func (d *Dashboard) HelpKeys() []string {
	return append([]string{"Tab Switch"}, d.tab(d.active).HelpKeys()...)
}

// View renders the tab bar and the visible tab
func (d *Dashboard) View() string {
	var tabs []string
	for _, t := range []Tab{TabMySlots, TabJoinMeetings} {
		label := t.String()
		if t == d.active {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	sb.WriteString("  ")
	sb.WriteString(styles.Subtitle.Render(icons.User.String() + " " + d.email))
	sb.WriteString("\n\n")
	sb.WriteString(d.tab(d.active).View())
	return sb.String()
}
