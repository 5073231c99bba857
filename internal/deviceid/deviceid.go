// Package deviceid provides a stable per-installation device identifier.
//
// The id is a random UUID persisted as plain text in <dir>/device_id, so it
// survives restarts and moves with the data directory.
package deviceid

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileName is the name of the id file inside the data directory.
const FileName = "device_id"

// Get returns the device id stored in dir, creating it on first use.
// A corrupt id file is replaced with a fresh id.
func Get(dir string) (string, error) {
	path := filepath.Join(dir, FileName)

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(raw))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		slog.Warn("device id file is corrupt, regenerating", "path", path)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id), 0o644); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	slog.Info("generated device id", "device_id", id)
	return id, nil
}
