package syntax

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Upper bound on the raw byte length of a handle. Remote logins are much shorter; this only guards request construction.
const MaxHandleLength = 256

// Handle was empty, or could not be embedded in a resource path.
var ErrInvalidHandle = errors.New("invalid handle")

// String type which represents a handle that can safely be embedded in a directory resource path.
//
// Always use [ParseHandle] instead of wrapping strings directly, especially when working with input.
type Handle string

// Trims surrounding whitespace and validates the remainder.
//
// Characters which are unsafe in a URL are allowed; they get percent-encoded by [Handle.PathSegment]. Empty handles, the dot segments "." and "..", invalid UTF-8 and control characters are rejected, since no path built from them would address the intended resource.
func ParseHandle(raw string) (Handle, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: expected handle, got empty string", ErrInvalidHandle)
	}
	if len(s) > MaxHandleLength {
		return "", fmt.Errorf("%w: handle is too long (%d chars max)", ErrInvalidHandle, MaxHandleLength)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: handle is not valid UTF-8", ErrInvalidHandle)
	}
	if s == "." || s == ".." {
		return "", fmt.Errorf("%w: handle can not be a dot segment: %q", ErrInvalidHandle, s)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: handle contains control character %U", ErrInvalidHandle, r)
		}
	}
	return Handle(s), nil
}

// Returns true if the raw string is empty or whitespace-only.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// Lower-cased form, for comparing handles the way the remote directory does.
func (h Handle) Normalize() Handle {
	return Handle(strings.ToLower(string(h)))
}

// Case-insensitive comparison.
func (h Handle) Equal(other Handle) bool {
	return strings.EqualFold(string(h), string(other))
}

// Percent-encoded form of the handle, suitable as exactly one URL path segment.
func (h Handle) PathSegment() string {
	return url.PathEscape(string(h))
}

func (h Handle) String() string {
	return string(h)
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Handle) UnmarshalText(text []byte) error {
	handle, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = handle
	return nil
}
