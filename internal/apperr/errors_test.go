package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionErrorMatchesSentinel(t *testing.T) {
	err := error(&TransitionError{Op: "pause", From: "scheduled"})

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, errors.Is(err, ErrInvalidQuality))
	assert.Contains(t, err.Error(), "cannot pause")
}

func TestQualityErrorMatchesSentinel(t *testing.T) {
	err := error(&QualityError{Quality: 7})

	assert.True(t, errors.Is(err, ErrInvalidQuality))
	assert.Contains(t, err.Error(), "7")
}

func TestNotFoundAndInvalidWrap(t *testing.T) {
	assert.True(t, errors.Is(NotFound("review item", "abc"), ErrItemNotFound))
	assert.True(t, errors.Is(Invalid("planned duration %d", 5), ErrInvalidInput))
}
