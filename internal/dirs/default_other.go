//go:build !android

package dirs

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName    = "activitywatch"
	serverName = "aw-server-rust"
)

// DefaultDataDir returns the per-user data directory for the host OS.
// It honours XDG_DATA_HOME and falls back to ./data when no home is known.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, serverName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName, serverName)
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName, serverName)
		}
		return filepath.Join(homeDir, "AppData", "Local", appName, serverName)
	default:
		return filepath.Join(homeDir, ".local", "share", appName, serverName)
	}
}
