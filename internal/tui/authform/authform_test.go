package authform

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/slotbook/internal/route"
	"github.com/markalston/slotbook/internal/session"
	"github.com/markalston/slotbook/internal/tui/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token         string
	loginErr      error
	registerErr   error
	loginCalls    int
	registerCalls int
	lastName      string
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	f.loginCalls++
	return f.token, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) error {
	f.registerCalls++
	f.lastName = name
	return f.registerErr
}

func newStore() *session.Store {
	return session.NewStore(session.NewMemoryProvider())
}

func TestLogin_SuccessStoresSessionAndNavigates(t *testing.T) {
	auth := &fakeAuth{token: "T1"}
	store := newStore()
	l := NewLogin(auth, store)

	msg := l.Submit(" a@x.com ", "p")()
	_, cmd := l.Update(msg)
	require.NotNil(t, cmd)

	assert.Equal(t, nav.NavigateMsg{Path: route.Dashboard}, cmd())
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "a@x.com", store.Email())
	assert.Empty(t, l.Err())
}

func TestLogin_FailureShowsInvalidCredentials(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.New("400")}
	store := newStore()
	l := NewLogin(auth, store)

	l.Update(l.Submit("a@x.com", "wrong")())

	assert.Equal(t, "Invalid credentials", l.Err())
	_, ok := store.Token()
	assert.False(t, ok)
	assert.Contains(t, l.View(), "Invalid credentials")
}

func TestLogin_CtrlROpensRegister(t *testing.T) {
	l := NewLogin(&fakeAuth{}, newStore())

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, nav.NavigateMsg{Path: route.Register}, cmd())
}

func TestLogin_SetNoticeShowsMessage(t *testing.T) {
	l := NewLogin(&fakeAuth{}, newStore())
	l.SetNotice("Registration successful! You can now log in.", "a@x.com")

	assert.Contains(t, l.View(), "Registration successful! You can now log in.")
}

func TestRegister_MismatchMakesNoRequest(t *testing.T) {
	auth := &fakeAuth{}
	r := NewRegister(auth)

	r.Submit("Alice", "a@x.com", "pw1", "pw2")

	assert.Equal(t, 0, auth.registerCalls)
	assert.Equal(t, "passwords do not match", r.Err())
}

func TestRegister_Success(t *testing.T) {
	auth := &fakeAuth{}
	r := NewRegister(auth)

	_, cmd := r.Update(r.Submit("Alice", "a@x.com", "pw", "pw")())
	require.NotNil(t, cmd)

	assert.Equal(t, RegisteredMsg{Email: "a@x.com"}, cmd())
	assert.Equal(t, 1, auth.registerCalls)
	assert.Equal(t, "Alice", auth.lastName)
	assert.Empty(t, r.Err())
}

func TestRegister_Failure(t *testing.T) {
	auth := &fakeAuth{registerErr: errors.New("400")}
	r := NewRegister(auth)

	r.Update(r.Submit("Alice", "a@x.com", "pw", "pw")())

	assert.Equal(t, "Registration failed", r.Err())
}

func TestRegister_EscReturnsToLogin(t *testing.T) {
	r := NewRegister(&fakeAuth{})

	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, nav.NavigateMsg{Path: route.Login}, cmd())
}
