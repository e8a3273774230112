// Package review schedules flashcard reviews with the SM-2 interval model.
package review

import (
	"math"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/internal/spaced_repetition"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
)

const day = 24 * time.Hour

// Scheduler applies reviews to items. It keeps no per-item state.
type Scheduler struct {
	sm2   *spaced_repetition.SM2
	clock clock.Clock
}

// NewScheduler creates a scheduler reading time from c (system clock when nil).
func NewScheduler(c clock.Clock) *Scheduler {
	return &Scheduler{
		sm2:   spaced_repetition.NewSM2(),
		clock: clock.OrSystem(c),
	}
}

// WithMaxInterval caps review intervals at days. 0 keeps growth unbounded.
func (s *Scheduler) WithMaxInterval(days int) *Scheduler {
	s.sm2.MaxInterval = days
	return s
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// NewItem builds a flashcard with default scheduling state, due immediately.
func (s *Scheduler) NewItem(userID, goalID, front, back string) (models.ReviewItem, error) {
	if userID == "" {
		return models.ReviewItem{}, apperr.Invalid("user id is required")
	}
	if front == "" || back == "" {
		return models.ReviewItem{}, apperr.Invalid("card needs both a front and a back")
	}
	now := s.clock.Now()
	init := spaced_repetition.InitialState()
	return models.ReviewItem{
		ID:          uuid.NewString(),
		UserID:      userID,
		GoalID:      goalID,
		Front:       front,
		Back:        back,
		Difficulty:  models.DifficultyMedium,
		Tags:        models.StringList{},
		EaseFactor:  init.EaseFactor,
		Interval:    init.Interval,
		Repetitions: init.Repetitions,
		NextReview:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Option tunes a single review.
type Option func(*reviewOptions)

type reviewOptions struct {
	responseTime *float64
}

// WithResponseTime records how long the answer took, in milliseconds.
func WithResponseTime(ms float64) Option {
	return func(o *reviewOptions) {
		if ms > 0 {
			o.responseTime = &ms
		}
	}
}

// Review grades item with quality and returns the rescheduled copy.
// On error the item is returned unchanged.
func (s *Scheduler) Review(item models.ReviewItem, quality int, opts ...Option) (models.ReviewItem, error) {
	var o reviewOptions
	for _, opt := range opts {
		opt(&o)
	}

	next, err := s.sm2.NextState(spaced_repetition.State{
		EaseFactor:  item.EaseFactor,
		Interval:    item.Interval,
		Repetitions: item.Repetitions,
	}, quality)
	if err != nil {
		return item, err
	}

	now := s.clock.Now()
	out := item
	out.ReviewCount++
	if s.sm2.Passed(quality) {
		out.CorrectCount++
	} else {
		out.IncorrectCount++
	}

	if o.responseTime != nil {
		rt := *o.responseTime
		if item.AverageResponseTime != nil {
			n := float64(out.ReviewCount)
			rt = (*item.AverageResponseTime*(n-1) + rt) / n
		}
		out.AverageResponseTime = &rt
	}

	out.EaseFactor = next.EaseFactor
	out.Interval = next.Interval
	out.Repetitions = next.Repetitions
	out.LastReviewed = &now
	out.NextReview = now.Add(time.Duration(next.Interval) * day)
	out.UpdatedAt = now

	return out, nil
}

// IsMastered reports whether an item has settled into long intervals.
func IsMastered(item models.ReviewItem) bool {
	return item.Repetitions >= 5 && item.Interval >= 21
}

// Accuracy is the share of correct reviews as a rounded percentage.
func Accuracy(item models.ReviewItem) int {
	if item.ReviewCount == 0 {
		return 0
	}
	return int(math.Round(100 * float64(item.CorrectCount) / float64(item.ReviewCount)))
}

// FilterByDifficulty keeps items of the given difficulty in their original order.
func FilterByDifficulty(items []models.ReviewItem, d models.Difficulty) []models.ReviewItem {
	var out []models.ReviewItem
	for _, it := range items {
		if it.Difficulty == d {
			out = append(out, it)
		}
	}
	return out
}
