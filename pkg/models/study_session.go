package models

import "time"

// SessionStatus is the lifecycle state of a study session
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// SessionType classifies what a session is used for
type SessionType string

const (
	SessionTypeStudy    SessionType = "study"
	SessionTypeReview   SessionType = "review"
	SessionTypePractice SessionType = "practice"
	SessionTypeProject  SessionType = "project"
)

// BreakRecord is a closed pause inside a session
type BreakRecord struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  int       `json:"duration"` // Minutes
}

// StudySession is a planned block of study time and its actual execution
type StudySession struct {
	ID     string      `json:"id" db:"id"`
	UserID string      `json:"user_id" db:"user_id"`
	GoalID string      `json:"goal_id" db:"goal_id"`
	PlanID string      `json:"plan_id" db:"plan_id"`
	Title  string      `json:"title" db:"title"`
	Type   SessionType `json:"type" db:"type"`

	PlannedStartTime time.Time `json:"planned_start_time" db:"planned_start_time"`
	PlannedDuration  int       `json:"planned_duration" db:"planned_duration"` // Minutes, 15-480

	ActualStartTime *time.Time `json:"actual_start_time" db:"actual_start_time"`
	ActualEndTime   *time.Time `json:"actual_end_time" db:"actual_end_time"`
	ActualDuration  *int       `json:"actual_duration" db:"actual_duration"` // Minutes, set on completion

	Status         SessionStatus `json:"status" db:"status"`
	PauseCount     int           `json:"pause_count" db:"pause_count"`
	TotalPauseTime int           `json:"total_pause_time" db:"total_pause_time"` // Minutes
	PausedAt       *time.Time    `json:"paused_at" db:"paused_at"`               // Start of the open break
	Breaks         BreakList     `json:"breaks" db:"breaks"`
	FocusScore     int           `json:"focus_score" db:"focus_score"` // 0-100, derived on completion
	Notes          string        `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
