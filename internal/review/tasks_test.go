package review

import (
	"errors"
	"testing"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkComplete(t *testing.T) {
	task := models.Task{ID: "t1", Title: "Read chapter 3", TimeSpent: 5, Status: models.TaskInProgress}

	done, err := MarkComplete(task, 40, t0)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, models.TaskDone, done.Status)
	assert.Equal(t, 45, done.TimeSpent)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, t0, *done.CompletedAt)

	again, err := MarkComplete(done, 10, t0.Add(time.Hour))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Equal(t, done, again)

	_, err = MarkComplete(task, -1, t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestSpawnReviewTasks(t *testing.T) {
	task := models.Task{ID: "t1", UserID: "u1", GoalID: "g1", Title: "Eigenvalues", EstimatedDuration: 60, Difficulty: 4}

	_, err := SpawnReviewTasks(task, []int{1, 3}, t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "incomplete task")

	done, err := MarkComplete(task, 60, t0)
	require.NoError(t, err)

	reviews, err := SpawnReviewTasks(done, []int{1, 3, 0, 7, 14}, t0)
	require.NoError(t, err)
	require.Len(t, reviews, 4)

	for i, days := range []int{1, 3, 7, 14} {
		r := reviews[i]
		assert.True(t, r.IsReview)
		assert.Equal(t, "t1", r.OriginalTaskID)
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, "Review: Eigenvalues", r.Title)
		assert.Equal(t, 20, r.EstimatedDuration)
		require.NotNil(t, r.ScheduledDate)
		assert.Equal(t, t0.AddDate(0, 0, days), *r.ScheduledDate)
		assert.NotEmpty(t, r.ID)
	}

	_, err = SpawnReviewTasks(reviews[0], []int{1}, t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "reviews of reviews")
}

func TestCompleteReviewTask(t *testing.T) {
	_, err := CompleteReviewTask(models.Task{ID: "t1"}, 10, t0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	due := t0.AddDate(0, 0, 3)
	r := models.Task{ID: "r1", IsReview: true, NextReviewDate: &due, ReviewCount: 0}
	got, err := CompleteReviewTask(r, 12, due)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewCount)
	require.NotNil(t, got.LastReviewedAt)
	assert.Equal(t, due, *got.LastReviewedAt)
	assert.Nil(t, got.NextReviewDate)
	assert.Equal(t, 12, got.TimeSpent)
	assert.True(t, got.Completed)
}
