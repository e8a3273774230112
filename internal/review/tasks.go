package review

import (
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
)

// MarkComplete finishes a task, adding timeSpent minutes to the time already logged.
func MarkComplete(t models.Task, timeSpent int, now time.Time) (models.Task, error) {
	if t.Completed {
		return t, apperr.Invalid("task %s is already completed", t.ID)
	}
	if timeSpent < 0 {
		return t, apperr.Invalid("time spent must not be negative")
	}
	t.Status = models.TaskDone
	t.Completed = true
	t.CompletedAt = &now
	t.TimeSpent += timeSpent
	t.UpdatedAt = now
	return t, nil
}

// SpawnReviewTasks creates one follow-up review task per interval, scheduled
// that many days after the original was completed. Non-positive intervals are skipped.
func SpawnReviewTasks(original models.Task, intervals []int, now time.Time) ([]models.Task, error) {
	if !original.Completed || original.CompletedAt == nil {
		return nil, apperr.Invalid("task %s has not been completed", original.ID)
	}
	if original.IsReview {
		return nil, apperr.Invalid("task %s is itself a review", original.ID)
	}

	base := *original.CompletedAt
	out := make([]models.Task, 0, len(intervals))
	for _, days := range intervals {
		if days <= 0 {
			continue
		}
		due := base.AddDate(0, 0, days)
		out = append(out, models.Task{
			ID:                uuid.NewString(),
			UserID:            original.UserID,
			GoalID:            original.GoalID,
			Title:             "Review: " + original.Title,
			Type:              "review",
			EstimatedDuration: reviewDuration(original.EstimatedDuration),
			Difficulty:        original.Difficulty,
			Status:            models.TaskNotStarted,
			ScheduledDate:     &due,
			IsReview:          true,
			OriginalTaskID:    original.ID,
			NextReviewDate:    &due,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return out, nil
}

// CompleteReviewTask records one pass over a review task and closes it.
func CompleteReviewTask(t models.Task, timeSpent int, now time.Time) (models.Task, error) {
	if !t.IsReview {
		return t, apperr.Invalid("task %s is not a review task", t.ID)
	}
	done, err := MarkComplete(t, timeSpent, now)
	if err != nil {
		return t, err
	}
	done.ReviewCount++
	done.LastReviewedAt = &now
	done.NextReviewDate = nil
	return done, nil
}

// Reviews are shorter than the first pass, at least 10 minutes.
func reviewDuration(estimated int) int {
	d := estimated / 3
	if d < 10 {
		d = 10
	}
	return d
}
