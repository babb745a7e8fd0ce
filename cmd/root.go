// ABOUTME: Root command for the slotbook CLI
// ABOUTME: Handles global flags, configuration, logging, and launching the TUI

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/markalston/slotbook/internal/client"
	"github.com/markalston/slotbook/internal/config"
	"github.com/markalston/slotbook/internal/logger"
	"github.com/markalston/slotbook/internal/session"
	"github.com/markalston/slotbook/internal/tui"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// Exit codes
const (
	exitOK             = 0
	exitValidation     = 1
	exitRequestFailed  = 2
	exitSessionExpired = 3
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "slotbook",
	Short: "Terminal client for the meeting scheduling service",
	Long: `slotbook publishes your availability, finds colleagues' free slots, and books meetings.

Run without a subcommand to start the interactive interface.

Environment Variables:
  SLOTBOOK_API_URL     Backend API URL (default: http://localhost:8000)
  SLOTBOOK_CONFIG_DIR  Session and log directory (default: ~/.config/slotbook)
  SLOTBOOK_TIMEOUT     Request timeout in seconds (default: 30)
  LOG_LEVEL            debug, info, warn, error (default: info)
  LOG_FORMAT           text or json (default: text)

Exit codes:
  0 - Success
  1 - Invalid input
  2 - Request failed
  3 - Session missing or expired`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if err := logger.Init(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := newSessionStore(cfg)
		return tui.Run(newClient(cfg, store), store)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SLOTBOOK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for the session file and debug log (overrides SLOTBOOK_CONFIG_DIR)")
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() *config.Config {
	cfg := config.Load()
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	return cfg
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	return loadConfig().APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

func newSessionStore(cfg *config.Config) *session.Store {
	if cfg.ConfigDir == "" {
		slog.Warn("No config directory, session will not persist")
		return session.NewStore(session.NewMemoryProvider())
	}
	return session.NewStore(session.NewFileProvider(cfg.ConfigDir))
}

func newClient(cfg *config.Config, store *session.Store) *client.Client {
	return client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithTokenSource(store.TokenSource()),
	)
}

// failure reports err and returns the matching exit code. A rejected or
// missing session is cleared so the next run starts from login.
func failure(w io.Writer, store *session.Store, err error) int {
	switch {
	case client.IsValidation(err):
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitValidation
	case client.IsUnauthorized(err):
		if clearErr := store.ClearSession(); clearErr != nil {
			slog.Error("Failed to clear session", "error", clearErr)
		}
		fmt.Fprintln(w, "Error: session missing or expired, run slotbook login")
		return exitSessionExpired
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRequestFailed
	}
}
