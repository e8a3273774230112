package models

import "time"

// TaskStatus is the progress state of a task
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not-started"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
	TaskSkipped    TaskStatus = "skipped"
)

// Task is a unit of study work, optionally a spaced review of an earlier task
type Task struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"user_id" db:"user_id"`
	GoalID            string     `json:"goal_id" db:"goal_id"`
	SessionID         string     `json:"session_id" db:"session_id"`
	Title             string     `json:"title" db:"title"`
	Type              string     `json:"type" db:"type"` // read, watch, practice, assignment, quiz, project, review
	EstimatedDuration int        `json:"estimated_duration" db:"estimated_duration"` // Minutes
	Difficulty        int        `json:"difficulty" db:"difficulty"`                 // 1-5
	Status            TaskStatus `json:"status" db:"status"`
	ScheduledDate     *time.Time `json:"scheduled_date" db:"scheduled_date"`
	Completed         bool       `json:"completed" db:"completed"`
	CompletedAt       *time.Time `json:"completed_at" db:"completed_at"`
	TimeSpent         int        `json:"time_spent" db:"time_spent"` // Minutes

	IsReview       bool       `json:"is_review" db:"is_review"`
	OriginalTaskID string     `json:"original_task_id" db:"original_task_id"`
	NextReviewDate *time.Time `json:"next_review_date" db:"next_review_date"`
	ReviewCount    int        `json:"review_count" db:"review_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
