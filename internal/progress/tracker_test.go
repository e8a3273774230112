package progress

import (
	"testing"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 6, 12, 20, 30, 0, 0, time.UTC)

func TestHeavyDayIsBehindWithMaxBurnout(t *testing.T) {
	r := models.ProgressRecord{
		TasksPlanned:   10,
		TasksCompleted: 4,
		PlannedTime:    120,
		ActualTime:     200,
	}

	assert.Equal(t, 40, CompletionRateForDay(r))
	assert.Equal(t, 100, BurnoutScore(r))
	assert.Equal(t, models.StatusBehind, Status(r))
}

func TestCompletionRateForDay(t *testing.T) {
	assert.Equal(t, 0, CompletionRateForDay(models.ProgressRecord{}))
	assert.Equal(t, 33, CompletionRateForDay(models.ProgressRecord{TasksPlanned: 3, TasksCompleted: 1}))
	assert.Equal(t, 100, CompletionRateForDay(models.ProgressRecord{TasksPlanned: 2, TasksCompleted: 2}))
}

func TestBurnoutScore(t *testing.T) {
	cases := []struct {
		name string
		r    models.ProgressRecord
		want int
	}{
		// (1-1)*50 + 1*30*1 = 30
		{"all done on time", models.ProgressRecord{TasksPlanned: 4, TasksCompleted: 4, PlannedTime: 60, ActualTime: 60}, 30},
		// (1-0.5)*50 + 0.5*30*1 = 40
		{"half done in half the time", models.ProgressRecord{TasksPlanned: 4, TasksCompleted: 2, PlannedTime: 60, ActualTime: 30}, 40},
		// (1-0.25)*50 + 0 = 37.5
		{"nothing planned for time", models.ProgressRecord{TasksPlanned: 4, TasksCompleted: 1, ActualTime: 90}, 38},
		// nothing planned at all: 50
		{"empty day", models.ProgressRecord{}, 50},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BurnoutScore(c.r), c.name)
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		r    models.ProgressRecord
		want models.ProgressStatus
	}{
		{"ahead", models.ProgressRecord{TasksPlanned: 10, TasksCompleted: 9, PlannedTime: 100, ActualTime: 110}, models.StatusAhead},
		{"high completion but slow", models.ProgressRecord{TasksPlanned: 10, TasksCompleted: 9, PlannedTime: 100, ActualTime: 120}, models.StatusOnTrack},
		{"way over time", models.ProgressRecord{TasksPlanned: 10, TasksCompleted: 9, PlannedTime: 100, ActualTime: 131}, models.StatusBehind},
		{"mid completion", models.ProgressRecord{TasksPlanned: 10, TasksCompleted: 7, PlannedTime: 100, ActualTime: 100}, models.StatusOnTrack},
		{"low completion", models.ProgressRecord{TasksPlanned: 10, TasksCompleted: 5, PlannedTime: 100, ActualTime: 50}, models.StatusBehind},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.r), c.name)
	}
}

func TestDerive(t *testing.T) {
	r := Derive(models.ProgressRecord{
		Date:           time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		TasksPlanned:   5,
		TasksCompleted: 5,
		PlannedTime:    60,
		ActualTime:     60,
	})
	assert.Equal(t, 100, r.CompletionRate)
	assert.Equal(t, 30, r.BurnoutScore)
	assert.Equal(t, models.StatusAhead, r.Status)
	assert.Equal(t, 2024, r.Year)
	assert.Equal(t, 24, r.Week)
	assert.Equal(t, 6, r.Month)
}

func day(offset int, studied int) models.ProgressRecord {
	d := clock.StartOfDay(today).AddDate(0, 0, -offset)
	return models.ProgressRecord{Date: d, TimeStudied: studied}
}

func TestStreak(t *testing.T) {
	cases := []struct {
		name    string
		records []models.ProgressRecord
		want    int
	}{
		{"no records", nil, 0},
		{"today without study", []models.ProgressRecord{day(0, 0), day(1, 30)}, 0},
		{"today missing", []models.ProgressRecord{day(1, 30), day(2, 30)}, 0},
		{"three days", []models.ProgressRecord{day(0, 10), day(1, 20), day(2, 5)}, 3},
		{"gap stops the streak", []models.ProgressRecord{day(0, 10), day(1, 20), day(3, 5)}, 2},
		{"zero day stops the streak", []models.ProgressRecord{day(0, 10), day(1, 0), day(2, 5)}, 1},
		{"order does not matter", []models.ProgressRecord{day(2, 5), day(0, 10), day(1, 20)}, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Streak(c.records, today), c.name)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(clock.NewManual(today))

	assert.Equal(t, 2, tr.CurrentStreak([]models.ProgressRecord{day(0, 10), day(1, 20)}))
	assert.Equal(t, clock.StartOfDay(today), tr.Today())
}

func TestBuildDaily(t *testing.T) {
	start := clock.StartOfDay(today)
	at := func(h int) *time.Time { v := start.Add(time.Duration(h) * time.Hour); return &v }
	mins := func(v int) *int { return &v }

	sessions := []models.StudySession{
		{UserID: "u1", PlannedStartTime: *at(9), PlannedDuration: 60, Status: models.SessionCompleted, ActualEndTime: at(10), ActualDuration: mins(55)},
		{UserID: "u1", PlannedStartTime: *at(14), PlannedDuration: 90, Status: models.SessionCompleted, ActualEndTime: at(16), ActualDuration: mins(100)},
		{UserID: "u1", PlannedStartTime: *at(18), PlannedDuration: 30, Status: models.SessionCancelled},
		{UserID: "u1", PlannedStartTime: *at(20), PlannedDuration: 45, Status: models.SessionScheduled},
		{UserID: "u1", PlannedStartTime: *at(-20), PlannedDuration: 60, Status: models.SessionCompleted, ActualEndTime: at(-19), ActualDuration: mins(60)},
		{UserID: "u2", PlannedStartTime: *at(9), PlannedDuration: 60, Status: models.SessionCompleted, ActualEndTime: at(10), ActualDuration: mins(60)},
	}
	tasks := []models.Task{
		{UserID: "u1", ScheduledDate: at(9), Status: models.TaskDone},
		{UserID: "u1", ScheduledDate: at(10), Status: models.TaskDone},
		{UserID: "u1", ScheduledDate: at(11), Status: models.TaskSkipped},
		{UserID: "u1", ScheduledDate: at(12), Status: models.TaskNotStarted},
		{UserID: "u1", ScheduledDate: at(30), Status: models.TaskDone},
		{UserID: "u1", Status: models.TaskDone},
	}

	r := BuildDaily("u1", today, sessions, tasks)
	require.Equal(t, start, r.Date)
	assert.Equal(t, 195, r.PlannedTime)
	assert.Equal(t, 155, r.ActualTime)
	assert.Equal(t, 155, r.TimeStudied)
	assert.Equal(t, 4, r.TasksPlanned)
	assert.Equal(t, 2, r.TasksCompleted)
	assert.Equal(t, 1, r.TasksSkipped)
	assert.Equal(t, 50, r.CompletionRate)
	assert.Equal(t, models.StatusBehind, r.Status)
}
