package models

import "time"

// Difficulty is the author-assigned difficulty of a flashcard
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ReviewItem is a flashcard scheduled with the SM-2 algorithm
type ReviewItem struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	GoalID     string     `json:"goal_id" db:"goal_id"`
	Front      string     `json:"front" db:"front"`
	Back       string     `json:"back" db:"back"`
	Difficulty Difficulty `json:"difficulty" db:"difficulty"`
	Tags       StringList `json:"tags" db:"tags"`

	EaseFactor   float64    `json:"ease_factor" db:"ease_factor"`     // SM-2 EF, kept in [1.3, 3.0]
	Interval     int        `json:"interval" db:"interval_days"`      // Current interval in days
	Repetitions  int        `json:"repetitions" db:"repetitions"`     // Consecutive successful recalls
	LastReviewed *time.Time `json:"last_reviewed" db:"last_reviewed"` // Unset until the first review
	NextReview   time.Time  `json:"next_review" db:"next_review"`

	ReviewCount         int      `json:"review_count" db:"review_count"`
	CorrectCount        int      `json:"correct_count" db:"correct_count"`
	IncorrectCount      int      `json:"incorrect_count" db:"incorrect_count"`
	AverageResponseTime *float64 `json:"average_response_time" db:"average_response_time"` // Milliseconds

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
