// ABOUTME: Session store holding the bearer token and user email
// ABOUTME: Read by the route gate and by every authenticated API request

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Storage keys
const (
	KeyToken = "token"
	KeyEmail = "email"
)

// ErrNoSession is returned when an authenticated call is made without a token
var ErrNoSession = errors.New("not logged in")

// Session is the authenticated identity of the current user
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Store reads and writes the session through a Provider
type Store struct {
	provider Provider
}

// NewStore creates a session store over the given provider
func NewStore(p Provider) *Store {
	return &Store{provider: p}
}

// SetSession persists the token and email
func (s *Store) SetSession(token, email string) error {
	if err := s.provider.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := s.provider.Set(KeyEmail, email); err != nil {
		return fmt.Errorf("failed to store email: %w", err)
	}
	slog.Debug("Session stored", "email", email)
	return nil
}

// Token returns the stored token. An empty token counts as absent.
func (s *Store) Token() (string, bool) {
	token, ok := s.provider.Get(KeyToken)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Email returns the stored email, falling back to the token's email claim
func (s *Store) Email() string {
	if email, ok := s.provider.Get(KeyEmail); ok && email != "" {
		return email
	}
	token, ok := s.Token()
	if !ok {
		return ""
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return ""
	}
	return claims.Email
}

// Current returns the whole session, or false if there is none
func (s *Store) Current() (Session, bool) {
	token, ok := s.Token()
	if !ok {
		return Session{}, false
	}
	return Session{Token: token, Email: s.Email()}, true
}

// ClearSession removes token and email. Safe to call repeatedly.
func (s *Store) ClearSession() error {
	errToken := s.provider.Remove(KeyToken)
	errEmail := s.provider.Remove(KeyEmail)
	if err := errors.Join(errToken, errEmail); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	slog.Debug("Session cleared")
	return nil
}

// TokenSource exposes the store as an oauth2.TokenSource. The token is read
// from the provider on every call, so requests always carry the current value.
func (s *Store) TokenSource() oauth2.TokenSource {
	return tokenSource{store: s}
}

type tokenSource struct {
	store *Store
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	token, ok := ts.store.Token()
	if !ok {
		return nil, ErrNoSession
	}
	// Expiry stays zero: an expired token is still sent and the backend decides.
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// Claims holds the token fields the client displays. They are read without
// signature verification and must never be used to make access decisions.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT payload without verifying it
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
