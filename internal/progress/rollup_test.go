package progress

import (
	"testing"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	records := []models.ProgressRecord{
		{Date: base.AddDate(0, 0, 2), PlannedTime: 60, ActualTime: 60, TimeStudied: 60, TasksPlanned: 4, TasksCompleted: 4},
		{Date: base, PlannedTime: 120, ActualTime: 200, TimeStudied: 200, TasksPlanned: 10, TasksCompleted: 4},
		{Date: base.AddDate(0, 0, 1), PlannedTime: 60, TasksPlanned: 2, TasksSkipped: 2},
	}

	s := Summarize(records)
	assert.Equal(t, base, s.From)
	assert.Equal(t, base.AddDate(0, 0, 2), s.To)
	assert.Equal(t, 3, s.Days)
	assert.Equal(t, 2, s.StudyDays)
	assert.Equal(t, 240, s.PlannedTime)
	assert.Equal(t, 260, s.ActualTime)
	assert.Equal(t, 16, s.TasksPlanned)
	assert.Equal(t, 8, s.TasksCompleted)
	assert.Equal(t, 2, s.TasksSkipped)
	assert.Equal(t, 50, s.CompletionRate)
	assert.Equal(t, models.StatusBehind, s.Status)
	assert.Equal(t, 100, s.PeakBurnout)
	// day burnouts: 30, 100, 50
	assert.Equal(t, 60, s.AverageBurnout)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Days)
	assert.Equal(t, models.StatusOnTrack, s.Status)
}

func TestInWeekAndMonth(t *testing.T) {
	records := []models.ProgressRecord{
		{Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}, // week 24
		{Date: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)}, // week 24 (Sunday)
		{Date: time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)}, // week 25
		{Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	assert.Len(t, InWeek(records, 2024, 24), 2)
	assert.Len(t, InWeek(records, 2024, 25), 1)
	assert.Len(t, InMonth(records, 2024, time.June), 3)
	assert.Len(t, InMonth(records, 2024, time.July), 1)
}
