// ABOUTME: Login screen built on a huh form
// ABOUTME: Stores the session on success and asks the app to open the dashboard

package authform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/slotbook/internal/route"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/markalston/slotbook/internal/tui/styles"
)

// Authenticator is the subset of the backend client used by the auth screens
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
}

// SessionWriter persists a successful login
type SessionWriter interface {
	SetSession(token, email string) error
}

type loginResultMsg struct {
	token string
	email string
	err   error
}

// Login is the login screen
type Login struct {
	auth     Authenticator
	sessions SessionWriter
	form     *huh.Form

	email    string
	password string

	busy   bool
	err    string
	notice string
}

// NewLogin creates the login screen
func NewLogin(auth Authenticator, sessions SessionWriter) *Login {
	l := &Login{auth: auth, sessions: sessions}
	l.form = l.newForm()
	return l
}

func (l *Login) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&l.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required("password")),
		).Title("Log in").
			Description("Sign in to manage your availability"),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// SetNotice shows a message above the form and prefills the email
func (l *Login) SetNotice(notice, email string) tea.Cmd {
	l.notice = notice
	l.err = ""
	l.email = email
	l.password = ""
	l.form = l.newForm()
	return l.form.Init()
}

// Reset clears the form, keeping the last email
func (l *Login) Reset() tea.Cmd {
	l.busy = false
	l.password = ""
	l.form = l.newForm()
	return l.form.Init()
}

// Submit logs in with the given credentials
func (l *Login) Submit(email, password string) tea.Cmd {
	l.busy = true
	l.err = ""
	email = strings.TrimSpace(email)
	return func() tea.Msg {
		token, err := l.auth.Login(context.Background(), email, password)
		return loginResultMsg{token: token, email: email, err: err}
	}
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		l.busy = false
		if msg.err != nil {
			slog.Info("Login failed", "email", msg.email, "error", msg.err)
			l.err = "Invalid credentials"
			l.notice = ""
			return l, l.Reset()
		}
		if err := l.sessions.SetSession(msg.token, msg.email); err != nil {
			slog.Error("Failed to store session", "error", err)
			l.err = "Could not save session: " + err.Error()
			return l, l.Reset()
		}
		slog.Info("Logged in", "email", msg.email)
		l.password = ""
		return l, nav.To(route.Dashboard)

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		if msg.String() == "ctrl+r" {
			return l, nav.To(route.Register)
		}
	}

	if l.busy {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}
	if l.form.State == huh.StateCompleted {
		return l, l.Submit(l.email, l.password)
	}
	return l, cmd
}

// Err returns the message shown for the last failed attempt
func (l *Login) Err() string {
	return l.err
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Welcome to slotbook"))
	sb.WriteString("\n")
	if l.notice != "" {
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String()+" "+l.notice) + "\n\n")
	}
	if l.busy {
		sb.WriteString("Signing in...")
	} else {
		sb.WriteString(l.form.View())
	}
	if l.err != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render(icons.Critical.String()+" "+l.err))
	}
	return sb.String()
}

// HelpKeys lists the shortcuts for the footer
func (l *Login) HelpKeys() []string {
	return []string{"Enter Next", "ctrl+r Register", "ctrl+c Quit"}
}
