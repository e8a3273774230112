package models

import "time"

// ProgressStatus compares a day's work against the plan
type ProgressStatus string

const (
	StatusBehind  ProgressStatus = "behind"
	StatusOnTrack ProgressStatus = "on-track"
	StatusAhead   ProgressStatus = "ahead"
)

// ProgressRecord is the per-user daily rollup of planned versus actual study
type ProgressRecord struct {
	ID     string    `json:"id" db:"id"`
	UserID string    `json:"user_id" db:"user_id"`
	GoalID string    `json:"goal_id" db:"goal_id"`
	Date   time.Time `json:"date" db:"date"` // Start of the day
	Week   int       `json:"week" db:"week"` // ISO week
	Month  int       `json:"month" db:"month"`
	Year   int       `json:"year" db:"year"`

	PlannedTime    int `json:"planned_time" db:"planned_time"` // Minutes
	ActualTime     int `json:"actual_time" db:"actual_time"`   // Minutes
	TimeStudied    int `json:"time_studied" db:"time_studied"` // Minutes
	TasksPlanned   int `json:"tasks_planned" db:"tasks_planned"`
	TasksCompleted int `json:"tasks_completed" db:"tasks_completed"`
	TasksSkipped   int `json:"tasks_skipped" db:"tasks_skipped"`

	CompletionRate int            `json:"completion_rate" db:"completion_rate"`
	CurrentStreak  int            `json:"current_streak" db:"current_streak"`
	BurnoutScore   int            `json:"burnout_score" db:"burnout_score"`
	Status         ProgressStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
