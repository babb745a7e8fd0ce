// ABOUTME: Configuration loader for the slotbook client
// ABOUTME: Loads settings from environment variables (and an optional .env) with defaults

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIURL is the backend used when nothing else is configured
	DefaultAPIURL = "http://localhost:8000"

	appDirName = "slotbook"
)

type Config struct {
	APIURL    string
	ConfigDir string        // session file and debug log live here
	Timeout   time.Duration // per-request HTTP timeout
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the process win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIURL:    strings.TrimRight(getEnv("SLOTBOOK_API_URL", DefaultAPIURL), "/"),
		ConfigDir: getEnv("SLOTBOOK_CONFIG_DIR", DefaultConfigDir()),
		Timeout:   time.Duration(getEnvInt("SLOTBOOK_TIMEOUT", 30)) * time.Second,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}
