// Package session drives the study session lifecycle:
//
//	scheduled -> active <-> paused -> completed
//	any non-terminal state -> cancelled
//
// Every operation takes a session value and returns the updated copy. On error
// the input is returned unchanged, so callers can keep the old state.
package session

import (
	"math"
	"slices"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
)

const (
	MinPlannedDuration = 15
	MaxPlannedDuration = 480
)

// Machine applies lifecycle transitions using an injectable clock
type Machine struct {
	clock clock.Clock
}

// NewMachine creates a lifecycle machine (system clock when c is nil)
func NewMachine(c clock.Clock) *Machine {
	return &Machine{clock: clock.OrSystem(c)}
}

// New builds a scheduled session after validating the planned duration.
func (m *Machine) New(userID, goalID, title string, typ models.SessionType, plannedStart time.Time, plannedDuration int) (models.StudySession, error) {
	if userID == "" {
		return models.StudySession{}, apperr.Invalid("user id is required")
	}
	if plannedDuration < MinPlannedDuration || plannedDuration > MaxPlannedDuration {
		return models.StudySession{}, apperr.Invalid("planned duration %d is outside [%d, %d] minutes",
			plannedDuration, MinPlannedDuration, MaxPlannedDuration)
	}
	if typ == "" {
		typ = models.SessionTypeStudy
	}
	now := m.clock.Now()
	return models.StudySession{
		ID:               uuid.NewString(),
		UserID:           userID,
		GoalID:           goalID,
		Title:            title,
		Type:             typ,
		PlannedStartTime: plannedStart,
		PlannedDuration:  plannedDuration,
		Status:           models.SessionScheduled,
		Breaks:           models.BreakList{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Start moves a scheduled session to active.
func (m *Machine) Start(s models.StudySession) (models.StudySession, error) {
	if s.Status != models.SessionScheduled {
		return s, transitionErr("start", s)
	}
	now := m.clock.Now()
	out := s
	out.Status = models.SessionActive
	out.ActualStartTime = &now
	out.UpdatedAt = now
	return out, nil
}

// Pause opens a break on an active session. The break is recorded once it closes.
func (m *Machine) Pause(s models.StudySession) (models.StudySession, error) {
	if s.Status != models.SessionActive {
		return s, transitionErr("pause", s)
	}
	now := m.clock.Now()
	out := s
	out.Status = models.SessionPaused
	out.PauseCount++
	out.PausedAt = &now
	out.UpdatedAt = now
	return out, nil
}

// Resume closes the open break and reactivates the session.
func (m *Machine) Resume(s models.StudySession) (models.StudySession, error) {
	if s.Status != models.SessionPaused {
		return s, transitionErr("resume", s)
	}
	now := m.clock.Now()
	out := closeOpenBreak(s, now)
	out.Status = models.SessionActive
	out.UpdatedAt = now
	return out, nil
}

// Complete ends an active or paused session and derives duration and focus score.
func (m *Machine) Complete(s models.StudySession) (models.StudySession, error) {
	if s.Status != models.SessionActive && s.Status != models.SessionPaused {
		return s, transitionErr("complete", s)
	}
	if s.ActualStartTime == nil {
		return s, apperr.Invalid("session %s has no start time", s.ID)
	}
	now := m.clock.Now()
	out := closeOpenBreak(s, now)
	out.Status = models.SessionCompleted
	out.ActualEndTime = &now

	actual := ActualDuration(*out.ActualStartTime, now, out.TotalPauseTime)
	out.ActualDuration = &actual
	out.FocusScore = FocusScore(actual, out.PlannedDuration, out.PauseCount)
	out.UpdatedAt = now
	return out, nil
}

// Cancel ends a non-terminal session without computing duration or focus.
func (m *Machine) Cancel(s models.StudySession) (models.StudySession, error) {
	if s.Status.Terminal() {
		return s, transitionErr("cancel", s)
	}
	now := m.clock.Now()
	out := s
	out.Status = models.SessionCancelled
	out.PausedAt = nil
	out.UpdatedAt = now
	return out, nil
}

// AddBreak records a manual break outside the pause/resume flow.
func (m *Machine) AddBreak(s models.StudySession, start, end time.Time) (models.StudySession, error) {
	if s.Status.Terminal() {
		return s, transitionErr("add break", s)
	}
	if end.Before(start) {
		return s, apperr.Invalid("break ends before it starts")
	}
	out := appendBreak(s, start, end)
	out.UpdatedAt = m.clock.Now()
	return out, nil
}

// Elapsed is the focused time so far: wall time since start minus closed and open breaks.
func Elapsed(s models.StudySession, now time.Time) time.Duration {
	if s.ActualStartTime == nil {
		return 0
	}
	end := now
	if s.ActualEndTime != nil {
		end = *s.ActualEndTime
	}
	d := end.Sub(*s.ActualStartTime) - time.Duration(s.TotalPauseTime)*time.Minute
	if s.Status == models.SessionPaused && s.PausedAt != nil {
		d -= end.Sub(*s.PausedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// ActualDuration is the wall-clock minutes minus pause minutes, rounded and floored at 0.
func ActualDuration(start, end time.Time, pauseMinutes int) int {
	minutes := end.Sub(start).Minutes() - float64(pauseMinutes)
	d := int(math.Round(minutes))
	if d < 0 {
		return 0
	}
	return d
}

// FocusScore rewards finishing the planned time and penalises each pause by 10%.
func FocusScore(actualMinutes, plannedMinutes, pauseCount int) int {
	if plannedMinutes <= 0 {
		return 0
	}
	efficiency := float64(actualMinutes) / float64(plannedMinutes)
	penalty := math.Max(0, 1-float64(pauseCount)*0.1)
	return int(math.Round(math.Min(100, efficiency*penalty*100)))
}

func closeOpenBreak(s models.StudySession, now time.Time) models.StudySession {
	if s.PausedAt == nil {
		return s
	}
	out := appendBreak(s, *s.PausedAt, now)
	out.PausedAt = nil
	return out
}

// appendBreak clones the break list so the caller's slice is never shared.
func appendBreak(s models.StudySession, start, end time.Time) models.StudySession {
	d := breakMinutes(start, end)
	out := s
	out.Breaks = append(slices.Clone(s.Breaks), models.BreakRecord{
		StartTime: start,
		EndTime:   end,
		Duration:  d,
	})
	out.TotalPauseTime += d
	return out
}

func breakMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

func transitionErr(op string, s models.StudySession) error {
	return &apperr.TransitionError{Op: op, From: string(s.Status)}
}
