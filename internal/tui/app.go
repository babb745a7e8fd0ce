// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes every screen change through the route gate and owns the session lifecycle

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/slotbook/internal/route"
	"github.com/markalston/slotbook/internal/session"
	"github.com/markalston/slotbook/internal/tui/authform"
	"github.com/markalston/slotbook/internal/tui/dashboard"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/markalston/slotbook/internal/tui/styles"
)

// Backend is the client surface the TUI drives
type Backend interface {
	dashboard.API
	authform.Authenticator
	Logout(ctx context.Context) error
}

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenDashboard
)

const (
	minTerminalWidth = 80
	logoutTimeout    = 5 * time.Second
)

// loggedOutMsg is sent once the backend has been told about the logout
type loggedOutMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	api    Backend
	store  *session.Store
	gate   *route.Gate
	screen Screen
	path   string
	width  int
	height int

	// Child models
	login     *authform.Login
	register  *authform.Register
	dashboard *dashboard.Dashboard
}

// New creates a new TUI application
func New(api Backend, store *session.Store) *App {
	return &App{
		api:   api,
		store: store,
		gate:  route.New(store),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.navigate(route.Dashboard)
}

// navigate resolves path through the gate and switches to the screen it allows
func (a *App) navigate(path string) tea.Cmd {
	decision := a.gate.Resolve(path)
	if decision.Redirect {
		slog.Debug("Navigation redirected", "requested", path, "path", decision.Path)
	}
	a.path = decision.Path

	if decision.Path != route.Dashboard && a.dashboard != nil {
		a.dashboard.Close()
		a.dashboard = nil
	}

	switch decision.Path {
	case route.Register:
		a.screen = ScreenRegister
		a.register = authform.NewRegister(a.api)
		return a.register.Init()

	case route.Dashboard:
		a.screen = ScreenDashboard
		if a.dashboard == nil {
			a.dashboard = dashboard.New(a.api, a.store.Email())
			a.dashboard.SetSize(a.width, a.height)
			return a.dashboard.Init()
		}
		return nil

	default:
		a.screen = ScreenLogin
		if a.login == nil {
			a.login = authform.NewLogin(a.api, a.store)
			return a.login.Init()
		}
		return a.login.Reset()
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dashboard != nil {
			a.dashboard.SetSize(msg.Width, a.contentHeight())
		}
		return a, a.forward(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == ScreenDashboard {
			switch msg.String() {
			case "ctrl+l":
				return a, a.logout()
			case "q":
				if !a.dashboard.Editing() {
					return a, tea.Quit
				}
			}
		}
		return a, a.forward(msg)

	case nav.NavigateMsg:
		return a, a.navigate(msg.Path)

	case nav.AuthExpiredMsg:
		slog.Warn("Session rejected by backend, clearing it")
		email := a.store.Email()
		if err := a.store.ClearSession(); err != nil {
			slog.Error("Failed to clear session", "error", err)
		}
		a.navigate(route.Login)
		return a, a.login.SetNotice("Session expired, please log in again", email)

	case authform.RegisteredMsg:
		a.navigate(route.Login)
		return a, a.login.SetNotice("Registration successful! You can now log in.", msg.Email)

	case loggedOutMsg:
		if msg.err != nil {
			slog.Warn("Logout request failed", "error", msg.err)
		}
		if err := a.store.ClearSession(); err != nil {
			slog.Error("Failed to clear session", "error", err)
		}
		return a, a.navigate(route.Login)
	}

	return a, a.forward(msg)
}

// forward passes msg to the model of the current screen
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ScreenRegister:
		if a.register != nil {
			_, cmd = a.register.Update(msg)
		}
	case ScreenDashboard:
		if a.dashboard != nil {
			_, cmd = a.dashboard.Update(msg)
		}
	}
	return cmd
}

// logout revokes the token on the backend; the session is cleared when it returns
func (a *App) logout() tea.Cmd {
	if a.dashboard != nil {
		a.dashboard.Close()
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()
		return loggedOutMsg{err: a.api.Logout(ctx)}
	}
}

// Path returns the path currently rendered
func (a *App) Path() string {
	return a.path
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			content = styles.Panel.Render(a.login.View())
		}
	case ScreenRegister:
		if a.register != nil {
			content = styles.Panel.Render(a.register.View())
		}
	case ScreenDashboard:
		if a.dashboard != nil {
			content = styles.ActivePanel.Width(a.frameWidth() - 2).Render(a.dashboard.View())
		}
	}

	return a.wrapWithFrame(content)
}

func (a *App) helpKeys() []string {
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			return a.login.HelpKeys()
		}
	case ScreenRegister:
		if a.register != nil {
			return a.register.HelpKeys()
		}
	case ScreenDashboard:
		if a.dashboard != nil {
			return append(a.dashboard.HelpKeys(), "ctrl+l Logout")
		}
	}
	return nil
}

// frameWidth is one less than the terminal to avoid wrapping, never below
// the minimum supported width
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// contentHeight is the height left after header, footer and panel borders
func (a *App) contentHeight() int {
	return a.height - 8
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("slotbook"))

	right := ""
	if a.screen == ScreenDashboard {
		if email := a.store.Email(); email != "" {
			right = " " + contextStyle.Render(email) + " "
		}
	}

	fillWidth := width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─" + left + strings.Repeat("─", fillWidth) + right + "─╮")
}

// renderFooter creates the footer with keyboard shortcuts
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var styled []string
	for _, s := range a.helpKeys() {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, styles.KeyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	left := " " + strings.Join(styled, "  ") + " "
	fillWidth := width - 4 - lipgloss.Width(left)
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─" + left + strings.Repeat("─", fillWidth) + "─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI
func Run(api Backend, store *session.Store) error {
	p := tea.NewProgram(
		New(api, store),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
