package models

import "time"

// MilestoneStatus tracks whether a milestone was reached
type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "pending"
	MilestoneAchieved MilestoneStatus = "achieved"
)

// Milestone is a dated checkpoint within a plan
type Milestone struct {
	ID         string          `json:"id" db:"id"`
	PlanID     string          `json:"plan_id" db:"plan_id"`
	Title      string          `json:"title" db:"title"`
	Type       string          `json:"type" db:"type"` // module, midterm, mock-exam, project, review
	TargetDate time.Time       `json:"target_date" db:"target_date"`
	Status     MilestoneStatus `json:"status" db:"status"`
	AchievedAt *time.Time      `json:"achieved_at" db:"achieved_at"`
}

// Plan is the goal-scoped collection of sessions and milestones
type Plan struct {
	ID          string `json:"id" db:"id"`
	GoalID      string `json:"goal_id" db:"goal_id"`
	UserID      string `json:"user_id" db:"user_id"`
	PlanVersion int    `json:"plan_version" db:"plan_version"`

	// Days after a task is completed at which review tasks are spawned
	ReviewIntervals      IntList `json:"review_intervals" db:"review_intervals"`
	BufferTimePercentage int     `json:"buffer_time_percentage" db:"buffer_time_percentage"`

	Sessions   []StudySession `json:"sessions" db:"-"`
	Milestones []Milestone    `json:"milestones" db:"-"`

	TotalPlannedHours   float64 `json:"total_planned_hours" db:"total_planned_hours"`
	TotalCompletedHours float64 `json:"total_completed_hours" db:"total_completed_hours"`
	CompletionRate      int     `json:"completion_rate" db:"completion_rate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
