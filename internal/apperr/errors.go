// Package apperr defines the errors shared by the scheduling engines and their callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuality is returned for a recall quality outside [0, 5].
	ErrInvalidQuality = errors.New("invalid quality")
	// ErrInvalidTransition is returned when a session operation is not allowed in its current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrItemNotFound is returned when a referenced entity cannot be resolved.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidInput is returned for malformed entity fields.
	ErrInvalidInput = errors.New("invalid input")
)

// TransitionError describes a rejected lifecycle operation.
type TransitionError struct {
	Op   string
	From string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %q", ErrInvalidTransition, e.Op, e.From)
}

// Is lets errors.Is match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// QualityError reports the rejected quality value.
type QualityError struct {
	Quality int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("%s: %d is outside [0, 5]", ErrInvalidQuality, e.Quality)
}

// Is lets errors.Is match ErrInvalidQuality.
func (e *QualityError) Is(target error) bool {
	return target == ErrInvalidQuality
}

// NotFound wraps ErrItemNotFound with the kind and id of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrItemNotFound, kind, id)
}

// Invalid wraps ErrInvalidInput with a description.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
