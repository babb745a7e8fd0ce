// ABOUTME: Registration screen built on a huh form
// ABOUTME: Checks the confirmation locally before calling the backend

package authform

import (
	"context"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/slotbook/internal/client"
	"github.com/markalston/slotbook/internal/route"
	"github.com/markalston/slotbook/internal/tui/icons"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/markalston/slotbook/internal/tui/styles"
)

// RegisteredMsg is sent after an account is created
type RegisteredMsg struct {
	Email string
}

type registerResultMsg struct {
	email string
	err   error
}

// Register is the registration screen
type Register struct {
	auth Authenticator
	form *huh.Form

	name     string
	email    string
	password string
	confirm  string

	busy bool
	err  string
}

// NewRegister creates the registration screen
func NewRegister(auth Authenticator) *Register {
	r := &Register{auth: auth}
	r.form = r.newForm()
	return r
}

func (r *Register) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&r.name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&r.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.password).
				Validate(required("password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.confirm),
		).Title("Create an account"),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false)
}

// Init implements tea.Model
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Reset rebuilds the form, keeping name and email
func (r *Register) Reset() tea.Cmd {
	r.busy = false
	r.password = ""
	r.confirm = ""
	r.form = r.newForm()
	return r.form.Init()
}

// Submit validates the fields and registers the account. A mismatched
// confirmation is reported without a request.
func (r *Register) Submit(name, email, password, confirm string) tea.Cmd {
	if err := client.ValidateRegistration(name, email, password, confirm); err != nil {
		r.err = err.Error()
		return r.Reset()
	}

	r.busy = true
	r.err = ""
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	return func() tea.Msg {
		err := r.auth.Register(context.Background(), name, email, password)
		return registerResultMsg{email: email, err: err}
	}
}

// Update implements tea.Model
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		r.busy = false
		if msg.err != nil {
			slog.Info("Registration failed", "email", msg.email, "error", msg.err)
			r.err = "Registration failed"
			return r, r.Reset()
		}
		slog.Info("Registered", "email", msg.email)
		r.err = ""
		r.password = ""
		r.confirm = ""
		email := msg.email
		return r, func() tea.Msg { return RegisteredMsg{Email: email} }

	case tea.KeyMsg:
		if r.busy {
			return r, nil
		}
		if msg.String() == "esc" {
			return r, nav.To(route.Login)
		}
	}

	if r.busy {
		return r, nil
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}
	if r.form.State == huh.StateCompleted {
		return r, r.Submit(r.name, r.email, r.password, r.confirm)
	}
	return r, cmd
}

// Err returns the message shown for the last failed attempt
func (r *Register) Err() string {
	return r.err
}

// View implements tea.Model
func (r *Register) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.User.String() + " Register"))
	sb.WriteString("\n")
	if r.busy {
		sb.WriteString("Creating account...")
	} else {
		sb.WriteString(r.form.View())
	}
	if r.err != "" {
		sb.WriteString("\n" + styles.StatusCritical.Render(icons.Critical.String()+" "+r.err))
	}
	return sb.String()
}

// HelpKeys lists the shortcuts for the footer
func (r *Register) HelpKeys() []string {
	return []string{"Enter Next", "Esc Back to login", "ctrl+c Quit"}
}
