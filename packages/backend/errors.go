package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrAssertionFailed is wrapped by every BackendError.
	ErrAssertionFailed = errors.New("assertion failed")

	// ErrUnsupportedActualType is returned when an actual value lacks the
	// capability a check needs (e.g. text retrieval on a number).
	ErrUnsupportedActualType = errors.New("unsupported actual type")
)

// BackendError is returned when a check rejects its operands.
type BackendError struct {
	Check  string
	Reason string
}

func (e *BackendError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed", e.Check)
	}
	return e.Reason
}

// Unwrap lets errors.Is match ErrAssertionFailed.
func (e *BackendError) Unwrap() error {
	return ErrAssertionFailed
}

func unsupported(check string, actual any, need string) error {
	return fmt.Errorf("%w: %s needs %s, got %T", ErrUnsupportedActualType, check, need, actual)
}
