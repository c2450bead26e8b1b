package window

import "github.com/pkg/errors"

var (
	// ErrEnumerationUnavailable means the OS window-list API failed outright.
	// The poll is skipped and retried on the next interval.
	ErrEnumerationUnavailable = errors.New("window enumeration unavailable")

	// ErrMalformedEntry marks a single enumerated window lacking required fields.
	ErrMalformedEntry = errors.New("malformed window entry")

	// ErrUnsupportedPlatform means no provider matches the host OS.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Unavailable wraps cause as ErrEnumerationUnavailable, keeping the cause text
func Unavailable(cause error, context string) error {
	if cause == nil {
		return errors.Wrap(ErrEnumerationUnavailable, context)
	}
	return errors.Wrapf(ErrEnumerationUnavailable, "%s: %v", context, cause)
}
