// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath resolves the database file location: the configured
// database.path if set, otherwise the per-user data directory.
func DatabasePath() string {
	if configured := viper.GetString("database.path"); configured != "" {
		return ExpandPath(configured)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "receiptguard.db"
	}
	return filepath.Join(home, ".local", "share", "receiptguard", "receiptguard.db")
}

// CountryHint returns the configured deployment market, defaulting to SG.
func CountryHint() string {
	if hint := viper.GetString("country"); hint != "" {
		return strings.ToUpper(hint)
	}
	return "SG"
}
