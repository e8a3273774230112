package progress

import (
	"math"
	"sort"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
)

// BuildDaily assembles the record for one day from the user's sessions and tasks.
// Planned time counts sessions planned that day unless cancelled; actual time
// counts sessions completed that day.
func BuildDaily(userID string, day time.Time, sessions []models.StudySession, tasks []models.Task) models.ProgressRecord {
	start := clock.StartOfDay(day)
	end := start.AddDate(0, 0, 1)
	within := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	r := models.ProgressRecord{
		ID:     uuid.NewString(),
		UserID: userID,
		Date:   start,
	}
	for _, s := range sessions {
		if s.UserID != "" && s.UserID != userID {
			continue
		}
		if within(s.PlannedStartTime) && s.Status != models.SessionCancelled {
			r.PlannedTime += s.PlannedDuration
		}
		if s.Status == models.SessionCompleted && s.ActualEndTime != nil && within(*s.ActualEndTime) && s.ActualDuration != nil {
			r.ActualTime += *s.ActualDuration
		}
	}
	r.TimeStudied = r.ActualTime

	for _, t := range tasks {
		if t.UserID != "" && t.UserID != userID {
			continue
		}
		if t.ScheduledDate == nil || !within(*t.ScheduledDate) {
			continue
		}
		r.TasksPlanned++
		switch t.Status {
		case models.TaskDone:
			r.TasksCompleted++
		case models.TaskSkipped:
			r.TasksSkipped++
		}
	}
	return Derive(r)
}

// Summary aggregates a span of daily records
type Summary struct {
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	Days           int                   `json:"days"`
	StudyDays      int                   `json:"study_days"`
	PlannedTime    int                   `json:"planned_time"`
	ActualTime     int                   `json:"actual_time"`
	TasksPlanned   int                   `json:"tasks_planned"`
	TasksCompleted int                   `json:"tasks_completed"`
	TasksSkipped   int                   `json:"tasks_skipped"`
	CompletionRate int                   `json:"completion_rate"`
	AverageBurnout int                   `json:"average_burnout"`
	PeakBurnout    int                   `json:"peak_burnout"`
	Status         models.ProgressStatus `json:"status"`
}

// Summarize totals the records and derives the period's completion rate and
// status the same way a single day is derived.
func Summarize(records []models.ProgressRecord) Summary {
	var s Summary
	if len(records) == 0 {
		s.Status = models.StatusOnTrack
		return s
	}
	sorted := append([]models.ProgressRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	s.From = sorted[0].Date
	s.To = sorted[len(sorted)-1].Date
	s.Days = len(sorted)

	burnoutSum := 0
	for _, r := range sorted {
		s.PlannedTime += r.PlannedTime
		s.ActualTime += r.ActualTime
		s.TasksPlanned += r.TasksPlanned
		s.TasksCompleted += r.TasksCompleted
		s.TasksSkipped += r.TasksSkipped
		if r.TimeStudied > 0 {
			s.StudyDays++
		}
		b := BurnoutScore(r)
		burnoutSum += b
		if b > s.PeakBurnout {
			s.PeakBurnout = b
		}
	}
	s.AverageBurnout = int(math.Round(float64(burnoutSum) / float64(len(sorted))))

	agg := models.ProgressRecord{
		PlannedTime:    s.PlannedTime,
		ActualTime:     s.ActualTime,
		TasksPlanned:   s.TasksPlanned,
		TasksCompleted: s.TasksCompleted,
	}
	s.CompletionRate = CompletionRateForDay(agg)
	s.Status = Status(agg)
	return s
}

// InWeek keeps records from the given ISO week.
func InWeek(records []models.ProgressRecord, year, week int) []models.ProgressRecord {
	var out []models.ProgressRecord
	for _, r := range records {
		y, w := r.Date.ISOWeek()
		if y == year && w == week {
			out = append(out, r)
		}
	}
	return out
}

// InMonth keeps records from the given calendar month.
func InMonth(records []models.ProgressRecord, year int, month time.Month) []models.ProgressRecord {
	var out []models.ProgressRecord
	for _, r := range records {
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out
}
