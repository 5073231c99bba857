package datastore

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes datastore failures.
type ErrorCode string

const (
	// CodeNoSuchBucket indicates the referenced bucket does not exist.
	CodeNoSuchBucket ErrorCode = "NO_SUCH_BUCKET"

	// CodeBucketExists indicates a bucket with the same id already exists.
	CodeBucketExists ErrorCode = "BUCKET_ALREADY_EXISTS"

	// CodeOutOfRange indicates an event whose start or end cannot be stored
	// as Unix nanoseconds.
	CodeOutOfRange ErrorCode = "EVENT_OUT_OF_RANGE"

	// CodeInternal wraps driver and encoding failures.
	CodeInternal ErrorCode = "INTERNAL"
)

// Error is a coded datastore error.
type Error struct {
	Code     ErrorCode
	BucketID string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.BucketID != "" {
		msg = fmt.Sprintf("%s (bucket=%s)", msg, e.BucketID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a datastore error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var dsErr *Error
	if errors.As(err, &dsErr) {
		return dsErr.Code == code
	}
	return false
}

func noSuchBucket(id string) *Error {
	return &Error{Code: CodeNoSuchBucket, BucketID: id}
}

func outOfRange(id string, err error) *Error {
	return &Error{Code: CodeOutOfRange, BucketID: id, Err: err}
}

func internal(op string, err error) *Error {
	return &Error{Code: CodeInternal, Err: fmt.Errorf("%s: %w", op, err)}
}
