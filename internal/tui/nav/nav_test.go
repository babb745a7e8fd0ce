package nav

import (
	"errors"
	"net/http"
	"testing"

	"github.com/markalston/slotbook/internal/client"
)

func TestTo(t *testing.T) {
	msg := To("/login")()
	nm, ok := msg.(NavigateMsg)
	if !ok || nm.Path != "/login" {
		t.Errorf("expected NavigateMsg{/login}, got %#v", msg)
	}
}

func TestExpiredIfUnauthorized(t *testing.T) {
	if cmd := ExpiredIfUnauthorized(errors.New("boom")); cmd != nil {
		t.Error("expected nil command for a generic error")
	}
	if cmd := ExpiredIfUnauthorized(nil); cmd != nil {
		t.Error("expected nil command for nil error")
	}

	cmd := ExpiredIfUnauthorized(&client.RequestError{StatusCode: http.StatusUnauthorized})
	if cmd == nil {
		t.Fatal("expected command for 401")
	}
	if _, ok := cmd().(AuthExpiredMsg); !ok {
		t.Error("expected AuthExpiredMsg")
	}
}
