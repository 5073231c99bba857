//go:build !android || !cgo

package main

import (
	"log/slog"
	"os"
)

func platformLogHandler() slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
}
