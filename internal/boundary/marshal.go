package boundary

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Handle is an opaque host reference to text. Its meaning belongs to the
// Host that issued it.
type Handle uintptr

// NullHandle is the sentinel failure result.
const NullHandle Handle = 0

// Host converts between host text references and Go strings.
//
// GetString borrows: the handle stays owned by the host. NewString transfers
// ownership of a fresh allocation to the host, which must release it exactly
// once through its own release path.
type Host interface {
	GetString(h Handle) (string, error)
	NewString(s string) (Handle, error)
}

var (
	// ErrNullHandle is returned for the null reference.
	ErrNullHandle = errors.New("null text handle")

	// ErrInvalidUTF8 is returned when host text is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

	// ErrHostFault is returned when a host call panicked.
	ErrHostFault = errors.New("host call faulted")
)

type hostResult[T any] struct {
	val T
	err error
}

// ToNative copies the text behind h into a Go string. It never panics.
func ToNative(host Host, h Handle) (string, error) {
	if h == NullHandle {
		metrics.marshalFailures.WithLabelValues("to_native").Inc()
		return "", ErrNullHandle
	}

	res := Contain("GetString", hostResult[string]{err: ErrHostFault}, func() hostResult[string] {
		s, err := host.GetString(h)
		return hostResult[string]{val: s, err: err}
	})
	if res.err != nil {
		metrics.marshalFailures.WithLabelValues("to_native").Inc()
		return "", fmt.Errorf("read host string: %w", res.err)
	}
	if !utf8.ValidString(res.val) {
		metrics.marshalFailures.WithLabelValues("to_native").Inc()
		return "", ErrInvalidUTF8
	}
	return res.val, nil
}

// ToHost allocates host text holding s. The empty string is a valid input.
// On failure it returns NullHandle and an error; it never panics.
func ToHost(host Host, s string) (Handle, error) {
	res := Contain("NewString", hostResult[Handle]{err: ErrHostFault}, func() hostResult[Handle] {
		h, err := host.NewString(s)
		return hostResult[Handle]{val: h, err: err}
	})
	if res.err == nil && res.val == NullHandle {
		res.err = errors.New("host returned null")
	}
	if res.err != nil {
		metrics.marshalFailures.WithLabelValues("to_host").Inc()
		return NullHandle, fmt.Errorf("allocate host string: %w", res.err)
	}
	return res.val, nil
}
