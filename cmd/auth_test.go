// ABOUTME: Tests for the login, register, logout and whoami commands
// ABOUTME: Uses an httptest backend and a temporary config directory for the session file

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markalston/slotbook/internal/session"
)

func setAuthFlags(t *testing.T, name, email, password string) {
	t.Helper()
	authName, authEmail, authPassword = name, email, password
	t.Cleanup(func() {
		authName, authEmail, authPassword = "", "", ""
	})
}

func TestLogin_StoresSession(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@x.com" || body["password"] != "pw" {
			t.Errorf("unexpected login body %v", body)
		}
		w.Write([]byte(`{"token":"T1"}`))
	})
	setAuthFlags(t, "", "a@x.com", "pw")

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as a@x.com") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(configDir, "session.json")); err != nil {
		t.Errorf("expected session file: %v", err)
	}

	store := session.NewStore(session.NewFileProvider(configDir))
	token, ok := store.Token()
	if !ok || token != "T1" {
		t.Errorf("expected stored token T1, got %q", token)
	}
	if store.Email() != "a@x.com" {
		t.Errorf("expected stored email a@x.com, got %q", store.Email())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad credentials"}`))
	})
	setAuthFlags(t, "", "a@x.com", "wrong")

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "invalid credentials") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if _, ok := session.NewStore(session.NewFileProvider(configDir)).Token(); ok {
		t.Error("expected no session after failed login")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	hits := 0
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	setAuthFlags(t, "", "a@x.com", "")

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}

func TestRegister_Success(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Ann" || body["email"] != "a@x.com" || body["password"] != "pw" {
			t.Errorf("unexpected register body %v", body)
		}
		w.WriteHeader(http.StatusCreated)
	})
	setAuthFlags(t, "Ann", "a@x.com", "pw")

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Registration successful! You can now log in.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRegister_MissingName(t *testing.T) {
	hits := 0
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	setAuthFlags(t, "", "a@x.com", "pw")

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "required") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}

func TestRegister_BackendFailure(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"email already registered"}`))
	})
	setAuthFlags(t, "Ann", "a@x.com", "pw")

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "registration failed") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	var gotAuth string
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/logout" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
	})
	store := loginAs(t, "T1", "a@x.com")

	var buf bytes.Buffer
	exitCode := runLogout(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if gotAuth != "Bearer T1" {
		t.Errorf("expected Bearer T1, got %q", gotAuth)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected session to be cleared")
	}
}

func TestLogout_BackendErrorStillClears(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	store := loginAs(t, "T1", "a@x.com")

	var buf bytes.Buffer
	exitCode := runLogout(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if _, ok := store.Token(); ok {
		t.Error("expected session to be cleared")
	}
}

func TestLogout_NotLoggedIn(t *testing.T) {
	hits := 0
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	var buf bytes.Buffer
	exitCode := runLogout(context.Background(), &buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 3 {
		t.Errorf("expected exit code 3, got %d", exitCode)
	}
}

func TestWhoami_ShowsClaims(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"name": "Ann",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	loginAs(t, token, "a@x.com")

	jsonOutput = true
	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	var out whoamiOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Email != "a@x.com" || out.Subject != "user-1" || out.Name != "Ann" {
		t.Errorf("unexpected whoami output %+v", out)
	}
	if out.ExpiresAt == nil || out.Expired {
		t.Errorf("expected unexpired token with expiry, got %+v", out)
	}
}

func TestWhoami_OpaqueToken(t *testing.T) {
	setupBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	loginAs(t, "opaque-token", "a@x.com")

	var buf bytes.Buffer
	exitCode := runWhoami(&buf)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "a@x.com") {
		t.Errorf("expected email in output, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "Expires") {
		t.Errorf("expected no claims for opaque token, got %q", buf.String())
	}
}
