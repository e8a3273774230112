// Package progress turns daily study records into completion, burnout and
// on-track signals, and rolls days up into weeks and months.
package progress

import (
	"math"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
)

// CompletionRateForDay is the rounded share of planned tasks completed, 0 with nothing planned.
func CompletionRateForDay(r models.ProgressRecord) int {
	if r.TasksPlanned <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.TasksCompleted) / float64(r.TasksPlanned)))
}

// BurnoutScore weighs the completion shortfall against time pressure. The time
// term is amplified by 1.5 when fewer than half the tasks were completed.
func BurnoutScore(r models.ProgressRecord) int {
	rate := float64(CompletionRateForDay(r))
	timeRatio := 0.0
	if r.PlannedTime > 0 {
		timeRatio = float64(r.ActualTime) / float64(r.PlannedTime)
	}
	pressure := 1.0
	if rate < 50 {
		pressure = 1.5
	}
	burnout := (1-rate/100)*50 + timeRatio*30*pressure
	return int(math.Round(math.Min(100, burnout)))
}

// Status is ahead for high completion within 110% of planned time, behind for
// low completion or more than 130% of planned time, on-track otherwise.
func Status(r models.ProgressRecord) models.ProgressStatus {
	rate := CompletionRateForDay(r)
	planned := float64(r.PlannedTime)
	actual := float64(r.ActualTime)
	switch {
	case rate >= 80 && actual <= planned*1.1:
		return models.StatusAhead
	case rate < 60 || actual > planned*1.3:
		return models.StatusBehind
	default:
		return models.StatusOnTrack
	}
}

// Derive recomputes every derived field of a record. Streaks are set separately
// because they depend on earlier days.
func Derive(r models.ProgressRecord) models.ProgressRecord {
	r.CompletionRate = CompletionRateForDay(r)
	r.BurnoutScore = BurnoutScore(r)
	r.Status = Status(r)
	r.Year, r.Week = r.Date.ISOWeek()
	r.Month = int(r.Date.Month())
	return r
}

// Streak counts consecutive study days ending today. It stops at the first
// day without a record or with no time studied, and is 0 if today has none.
func Streak(records []models.ProgressRecord, today time.Time) int {
	const layout = "2006-01-02"
	studied := make(map[string]bool, len(records))
	loc := today.Location()
	for _, r := range records {
		key := r.Date.In(loc).Format(layout)
		studied[key] = studied[key] || r.TimeStudied > 0
	}

	streak := 0
	for d := clock.StartOfDay(today); studied[d.Format(layout)]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// Tracker binds the streak calculation to a clock
type Tracker struct {
	clock clock.Clock
}

// NewTracker creates a tracker (system clock when c is nil)
func NewTracker(c clock.Clock) *Tracker {
	return &Tracker{clock: clock.OrSystem(c)}
}

// CurrentStreak counts the streak ending today.
func (t *Tracker) CurrentStreak(records []models.ProgressRecord) int {
	return Streak(records, t.clock.Now())
}

// Today returns the start of the current day.
func (t *Tracker) Today() time.Time {
	return clock.StartOfDay(t.clock.Now())
}
