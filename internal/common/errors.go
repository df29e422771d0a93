// Package common defines shared constants and sentinel errors used across
// the msgrelay server and client. Callers should use errors.Is to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrTargetNotFound is returned when an operation references a user
	// that is not in the directory. It matches ErrorNotFound as well.
	ErrTargetNotFound = fmt.Errorf("target user %w", ErrorNotFound)

	// Wire protocol errors.
	ErrMalformedHeader    = errors.New("malformed header")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrUnknownRequestCode = errors.New("unknown request code")
	ErrEncodingOverflow   = errors.New("encoding overflow")
)

// ErrorKind returns a short, stable name for the taxonomy entry err belongs
// to. It is meant for log lines; it never reaches the wire.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrUnknownRequestCode):
		return "unknown_request_code"
	case errors.Is(err, ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrTargetNotFound):
		return "target_not_found"
	case errors.Is(err, ErrorNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrEncodingOverflow):
		return "encoding_overflow"
	default:
		return "internal"
	}
}
