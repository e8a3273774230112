package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAdvance(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestOrSystem(t *testing.T) {
	assert.IsType(t, System{}, OrSystem(nil))

	m := NewManual(time.Now())
	assert.Same(t, m, OrSystem(m))
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := StartOfDay(time.Date(2024, 3, 1, 23, 59, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), got)
}
