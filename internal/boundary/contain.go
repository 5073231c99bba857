package boundary

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Contain runs fn and returns its result. If fn panics, the panic is
// recovered, logged with op and the stack, and fallback is returned.
func Contain[T any](op string, fallback T, fn func() T) (result T) {
	defer func() {
		if r := recover(); r != nil {
			metrics.panics.WithLabelValues(op).Inc()
			slog.Error("contained panic",
				"op", op,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			result = fallback
		}
	}()
	return fn()
}

// ContainVoid is Contain for operations without a result. It reports
// whether fn completed without panicking.
func ContainVoid(op string, fn func()) bool {
	return Contain(op, false, func() bool {
		fn()
		return true
	})
}
