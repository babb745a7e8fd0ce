// ABOUTME: Account commands: login, register, logout and whoami
// ABOUTME: Login stores the session file that every other command reads

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/markalston/slotbook/internal/client"
	"github.com/markalston/slotbook/internal/session"
	"github.com/spf13/cobra"
)

var (
	authName     string
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runLogin(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runRegister(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the token and remove the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runLogout(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	Long: `Show the email of the stored session and, when the token is a JWT, its claims.

Claims are decoded without verification and are informational only.`,
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runWhoami(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password")

	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password")
}

func runLogin(ctx context.Context, w io.Writer) int {
	cfg := loadConfig()
	store := newSessionStore(cfg)
	c := newClient(cfg, store)

	email := strings.TrimSpace(authEmail)
	token, err := c.Login(ctx, email, authPassword)
	if err != nil {
		if client.IsValidation(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitValidation
		}
		slog.Info("Login failed", "email", email, "error", err)
		fmt.Fprintln(w, "Error: invalid credentials")
		return exitRequestFailed
	}

	if err := store.SetSession(token, email); err != nil {
		fmt.Fprintf(w, "Error: failed to store session: %v\n", err)
		return exitRequestFailed
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{"email": email, "status": "logged_in"}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", email)
	}
	return exitOK
}

func runRegister(ctx context.Context, w io.Writer) int {
	if err := client.ValidateRegistration(authName, authEmail, authPassword, authPassword); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitValidation
	}

	cfg := loadConfig()
	c := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout))

	email := strings.TrimSpace(authEmail)
	if err := c.Register(ctx, strings.TrimSpace(authName), email, authPassword); err != nil {
		slog.Info("Registration failed", "email", email, "error", err)
		fmt.Fprintf(w, "Error: registration failed: %v\n", err)
		return exitRequestFailed
	}

	fmt.Fprintln(w, "Registration successful! You can now log in.")
	return exitOK
}

func runLogout(ctx context.Context, w io.Writer) int {
	cfg := loadConfig()
	store := newSessionStore(cfg)

	if _, ok := store.Token(); !ok {
		fmt.Fprintln(w, "Not logged in")
		return exitOK
	}

	// Revocation is best effort; the local session is removed either way
	if err := newClient(cfg, store).Logout(ctx); err != nil {
		slog.Warn("Logout request failed", "error", err)
	}
	if err := store.ClearSession(); err != nil {
		fmt.Fprintf(w, "Error: failed to remove session: %v\n", err)
		return exitRequestFailed
	}

	fmt.Fprintln(w, "Logged out")
	return exitOK
}

type whoamiOutput struct {
	Email     string     `json:"email"`
	Subject   string     `json:"subject,omitempty"`
	Name      string     `json:"name,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func runWhoami(w io.Writer) int {
	store := newSessionStore(loadConfig())

	current, ok := store.Current()
	if !ok {
		fmt.Fprintln(w, "Not logged in, run slotbook login")
		return exitSessionExpired
	}

	out := whoamiOutput{Email: current.Email}
	if claims, err := session.ParseClaims(current.Token); err == nil {
		out.Subject = claims.Subject
		out.Name = claims.Name
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			out.ExpiresAt = &exp
			out.Expired = time.Now().After(exp)
		}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	fmt.Fprintf(w, "Email:   %s\n", out.Email)
	if out.Name != "" {
		fmt.Fprintf(w, "Name:    %s\n", out.Name)
	}
	if out.Subject != "" {
		fmt.Fprintf(w, "Subject: %s\n", out.Subject)
	}
	if out.ExpiresAt != nil {
		status := "valid"
		if out.Expired {
			status = "expired"
		}
		fmt.Fprintf(w, "Expires: %s (%s)\n", out.ExpiresAt.Local().Format(time.RFC1123), status)
	}
	return exitOK
}
