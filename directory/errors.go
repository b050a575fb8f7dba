package directory

import (
	"errors"
	"fmt"

	"github.com/bluesky-social/profiledir/syntax"
)

// Handle could not be embedded in a resource path. No network request was made.
var ErrInvalidHandle = syntax.ErrInvalidHandle

// Remote directory answered 404: the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Classification of a directory failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidHandle
	KindNotFound
	KindHTTPStatus
	KindTransport
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidHandle:
		return "invalid-handle"
	case KindNotFound:
		return "not-found"
	case KindHTTPStatus:
		return "http-status"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Remote directory answered with a non-2xx status other than 404.
type StatusError struct {
	StatusCode int
	// "message" field of the error response body, if there was one
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("directory request failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("directory request failed (HTTP %d)", e.StatusCode)
}

// Network-level failure: DNS, connection reset, timeout, cancelled context.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request error: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// 2xx response whose body did not have the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding error: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Maps any error returned by this package to its kind. Errors from other sources are treated as transport failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var statusErr *StatusError
	var decodeErr *DecodeError
	switch {
	case errors.Is(err, ErrInvalidHandle):
		return KindInvalidHandle
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	default:
		return KindTransport
	}
}

// Human-readable cause, suitable for showing next to a retry prompt.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
