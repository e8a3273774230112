package session

import (
	"errors"
	"testing"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, planned int) (*Machine, *clock.Manual, models.StudySession) {
	t.Helper()
	c := clock.NewManual(t0)
	m := NewMachine(c)
	s, err := m.New("u1", "g1", "Linear algebra", models.SessionTypeStudy, t0, planned)
	require.NoError(t, err)
	return m, c, s
}

func TestNew_ValidatesPlannedDuration(t *testing.T) {
	m := NewMachine(clock.NewManual(t0))

	for _, d := range []int{0, 14, 481} {
		_, err := m.New("u1", "g1", "x", models.SessionTypeStudy, t0, d)
		assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "duration %d", d)
	}

	s, err := m.New("u1", "g1", "x", "", t0, 15)
	require.NoError(t, err)
	assert.Equal(t, models.SessionScheduled, s.Status)
	assert.Equal(t, models.SessionTypeStudy, s.Type)
}

func TestLifecycle_PauseResumeComplete(t *testing.T) {
	m, c, s := newTestSession(t, 60)

	s, err := m.Start(s)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, s.Status)
	require.NotNil(t, s.ActualStartTime)

	c.Advance(20 * time.Minute)
	s, err = m.Pause(s)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPaused, s.Status)
	assert.Equal(t, 1, s.PauseCount)
	assert.Empty(t, s.Breaks, "break is recorded only once it closes")
	assert.Equal(t, 0, s.TotalPauseTime)

	c.Advance(10 * time.Minute)
	s, err = m.Resume(s)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, s.Status)
	require.Len(t, s.Breaks, 1)
	assert.Equal(t, 10, s.Breaks[0].Duration)
	assert.Equal(t, 10, s.TotalPauseTime)
	assert.Nil(t, s.PausedAt)

	c.Advance(40 * time.Minute)
	s, err = m.Complete(s)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, s.Status)
	require.NotNil(t, s.ActualDuration)
	assert.Equal(t, 60, *s.ActualDuration)
	assert.Equal(t, 90, s.FocusScore)
	assert.Equal(t, t0.Add(70*time.Minute), *s.ActualEndTime)
}

func TestComplete_ClosesOpenBreak(t *testing.T) {
	m, c, s := newTestSession(t, 30)

	s, _ = m.Start(s)
	c.Advance(25 * time.Minute)
	s, _ = m.Pause(s)
	c.Advance(5 * time.Minute)

	s, err := m.Complete(s)
	require.NoError(t, err)
	require.Len(t, s.Breaks, 1)
	assert.Equal(t, 5, s.TotalPauseTime)
	assert.Equal(t, 25, *s.ActualDuration)
	// 25/30 * 0.9 * 100 = 75
	assert.Equal(t, 75, s.FocusScore)
}

func TestComplete_DurationNeverNegative(t *testing.T) {
	m, c, s := newTestSession(t, 60)

	s, _ = m.Start(s)
	c.Advance(5 * time.Minute)
	s, err := m.AddBreak(s, t0, t0.Add(30*time.Minute))
	require.NoError(t, err)

	s, err = m.Complete(s)
	require.NoError(t, err)
	assert.Equal(t, 0, *s.ActualDuration)
	assert.Equal(t, 0, s.FocusScore)
}

func TestComplete_FocusScoreCapped(t *testing.T) {
	m, c, s := newTestSession(t, 30)

	s, _ = m.Start(s)
	c.Advance(90 * time.Minute)
	s, err := m.Complete(s)
	require.NoError(t, err)
	assert.Equal(t, 90, *s.ActualDuration)
	assert.Equal(t, 100, s.FocusScore)
}

func TestFocusScore_PausePenaltyFloor(t *testing.T) {
	assert.Equal(t, 0, FocusScore(60, 60, 10))
	assert.Equal(t, 0, FocusScore(60, 60, 14))
	assert.Equal(t, 50, FocusScore(60, 60, 5))
	assert.Equal(t, 0, FocusScore(60, 0, 0))
}

func TestInvalidTransitions(t *testing.T) {
	m, _, s := newTestSession(t, 60)

	_, err := m.Pause(s)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	_, err = m.Resume(s)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	_, err = m.Complete(s)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	active, err := m.Start(s)
	require.NoError(t, err)
	_, err = m.Start(active)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	_, err = m.Resume(active)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	done, err := m.Complete(active)
	require.NoError(t, err)
	for name, op := range map[string]func(models.StudySession) (models.StudySession, error){
		"start":    m.Start,
		"pause":    m.Pause,
		"resume":   m.Resume,
		"complete": m.Complete,
		"cancel":   m.Cancel,
	} {
		got, err := op(done)
		assert.True(t, errors.Is(err, apperr.ErrInvalidTransition), name)
		assert.Equal(t, done, got, name)
	}
	_, err = m.AddBreak(done, t0, t0.Add(time.Minute))
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestCancel_FromEveryNonTerminalState(t *testing.T) {
	m, _, s := newTestSession(t, 60)

	got, err := m.Cancel(s)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.Status)
	assert.Nil(t, got.ActualDuration)

	active, _ := m.Start(s)
	got, err = m.Cancel(active)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.Status)

	paused, _ := m.Pause(active)
	got, err = m.Cancel(paused)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, got.Status)
	assert.Nil(t, got.PausedAt)
	assert.Equal(t, 0, got.FocusScore)

	_, err = m.Cancel(got)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestAddBreak(t *testing.T) {
	m, _, s := newTestSession(t, 60)

	s, err := m.AddBreak(s, t0, t0.Add(7*time.Minute+40*time.Second))
	require.NoError(t, err)
	require.Len(t, s.Breaks, 1)
	assert.Equal(t, 8, s.Breaks[0].Duration)
	assert.Equal(t, 8, s.TotalPauseTime)

	_, err = m.AddBreak(s, t0.Add(time.Minute), t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestBreaksAreNotShared(t *testing.T) {
	m, _, s := newTestSession(t, 60)
	s.Breaks = make(models.BreakList, 0, 4)

	a, err := m.AddBreak(s, t0, t0.Add(time.Minute))
	require.NoError(t, err)
	b, err := m.AddBreak(s, t0, t0.Add(2*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, a.Breaks[0].Duration)
	assert.Equal(t, 2, b.Breaks[0].Duration)
	assert.Empty(t, s.Breaks)
}

func TestElapsed(t *testing.T) {
	m, c, s := newTestSession(t, 60)
	assert.Equal(t, time.Duration(0), Elapsed(s, c.Now()))

	s, _ = m.Start(s)
	c.Advance(20 * time.Minute)
	s, _ = m.Pause(s)
	c.Advance(5 * time.Minute)
	assert.Equal(t, 20*time.Minute, Elapsed(s, c.Now()))

	s, _ = m.Resume(s)
	c.Advance(10 * time.Minute)
	assert.Equal(t, 30*time.Minute, Elapsed(s, c.Now()))
}

func TestBreaksRoundedIndividually(t *testing.T) {
	m, c, s := newTestSession(t, 60)
	s, err := m.Start(s)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c.Advance(5 * time.Minute)
		s, err = m.Pause(s)
		require.NoError(t, err)
		c.Advance(31 * time.Second)
		s, err = m.Resume(s)
		require.NoError(t, err)
	}

	// 93 seconds of pausing count as three whole minutes
	require.Len(t, s.Breaks, 3)
	for _, b := range s.Breaks {
		assert.Equal(t, 1, b.Duration)
	}
	assert.Equal(t, 3, s.TotalPauseTime)

	c.Advance(30 * time.Minute)
	s, err = m.Complete(s)
	require.NoError(t, err)
	assert.Equal(t, 44, *s.ActualDuration)
}
