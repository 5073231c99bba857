//go:build android && cgo

package main

/*
#cgo LDFLAGS: -llog
#include <android/log.h>
#include <stdlib.h>

static void aw_log(int prio, const char *tag, const char *msg) {
	__android_log_write(prio, tag, msg);
}
*/
import "C"

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"unsafe"
)

var logTag = C.CString("aw-server-go")

// logcatHandler formats records as logfmt and writes them to logcat with a
// priority matching the record level. Logcat adds its own timestamp.
type logcatHandler struct {
	mu   *sync.Mutex
	buf  *bytes.Buffer
	text slog.Handler
}

func platformLogHandler() slog.Handler {
	buf := &bytes.Buffer{}
	return &logcatHandler{
		mu:  &sync.Mutex{},
		buf: buf,
		text: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
					return slog.Attr{}
				}
				return a
			},
		}),
	}
}

func (h *logcatHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.text.Enabled(ctx, l)
}

func (h *logcatHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	msg := C.CString(strings.TrimSuffix(h.buf.String(), "\n"))
	defer C.free(unsafe.Pointer(msg))
	C.aw_log(priority(r.Level), logTag, msg)
	return nil
}

func (h *logcatHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logcatHandler{mu: h.mu, buf: h.buf, text: h.text.WithAttrs(attrs)}
}

func (h *logcatHandler) WithGroup(name string) slog.Handler {
	return &logcatHandler{mu: h.mu, buf: h.buf, text: h.text.WithGroup(name)}
}

func priority(l slog.Level) C.int {
	switch {
	case l >= slog.LevelError:
		return C.ANDROID_LOG_ERROR
	case l >= slog.LevelWarn:
		return C.ANDROID_LOG_WARN
	case l >= slog.LevelInfo:
		return C.ANDROID_LOG_INFO
	default:
		return C.ANDROID_LOG_DEBUG
	}
}
