// Package plan derives goal-level totals from a plan's sessions and manages milestones.
package plan

import (
	"math"
	"sort"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
)

// DefaultReviewIntervals are the days after completion at which review tasks are spawned
var DefaultReviewIntervals = []int{1, 3, 7, 14}

// New creates an empty plan for a goal with the default configuration.
func New(userID, goalID string, now time.Time) models.Plan {
	return models.Plan{
		ID:                   uuid.NewString(),
		GoalID:               goalID,
		UserID:               userID,
		PlanVersion:          1,
		ReviewIntervals:      append(models.IntList(nil), DefaultReviewIntervals...),
		BufferTimePercentage: 20,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// CompletionRate is the rounded share of completed sessions, 0 for an empty plan.
func CompletionRate(sessions []models.StudySession) int {
	if len(sessions) == 0 {
		return 0
	}
	completed := 0
	for _, s := range sessions {
		if s.Status == models.SessionCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(sessions))))
}

// TotalPlannedHours sums planned durations over every session regardless of status.
func TotalPlannedHours(sessions []models.StudySession) float64 {
	total := 0
	for _, s := range sessions {
		total += s.PlannedDuration
	}
	return float64(total) / 60
}

// TotalCompletedHours sums actual durations over completed sessions.
func TotalCompletedHours(sessions []models.StudySession) float64 {
	total := 0
	for _, s := range sessions {
		if s.Status == models.SessionCompleted && s.ActualDuration != nil {
			total += *s.ActualDuration
		}
	}
	return float64(total) / 60
}

// Recompute refreshes the derived totals. Call it after any session changes status.
func Recompute(p models.Plan, now time.Time) models.Plan {
	p.TotalPlannedHours = TotalPlannedHours(p.Sessions)
	p.TotalCompletedHours = TotalCompletedHours(p.Sessions)
	p.CompletionRate = CompletionRate(p.Sessions)
	p.UpdatedAt = now
	return p
}

// ReplaceSession swaps in an updated session by id and recomputes the totals.
func ReplaceSession(p models.Plan, s models.StudySession, now time.Time) (models.Plan, error) {
	idx := -1
	for i := range p.Sessions {
		if p.Sessions[i].ID == s.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p, apperr.NotFound("session", s.ID)
	}
	out := p
	out.Sessions = append([]models.StudySession(nil), p.Sessions...)
	out.Sessions[idx] = s
	return Recompute(out, now), nil
}

// AddMilestone appends a pending milestone.
func AddMilestone(p models.Plan, title, typ string, target time.Time) (models.Plan, models.Milestone) {
	m := models.Milestone{
		ID:         uuid.NewString(),
		PlanID:     p.ID,
		Title:      title,
		Type:       typ,
		TargetDate: target,
		Status:     models.MilestonePending,
	}
	out := p
	out.Milestones = append(append([]models.Milestone(nil), p.Milestones...), m)
	return out, m
}

// AchieveMilestone marks a milestone achieved at now. Milestones may be reached
// before their target date. An already achieved milestone is returned as is,
// keeping its original AchievedAt; changed reports whether anything moved.
func AchieveMilestone(m models.Milestone, now time.Time) (out models.Milestone, changed bool) {
	if m.Status == models.MilestoneAchieved {
		return m, false
	}
	m.Status = models.MilestoneAchieved
	m.AchievedAt = &now
	return m, true
}

// AchieveMilestoneByID achieves the plan milestone with the given id.
func AchieveMilestoneByID(p models.Plan, milestoneID string, now time.Time) (models.Plan, models.Milestone, error) {
	for i, m := range p.Milestones {
		if m.ID != milestoneID {
			continue
		}
		updated, changed := AchieveMilestone(m, now)
		if !changed {
			return p, m, nil
		}
		out := p
		out.Milestones = append([]models.Milestone(nil), p.Milestones...)
		out.Milestones[i] = updated
		out.UpdatedAt = now
		return out, updated, nil
	}
	return p, models.Milestone{}, apperr.NotFound("milestone", milestoneID)
}

// NextMilestone returns the pending milestone with the earliest target date.
func NextMilestone(p models.Plan) (models.Milestone, bool) {
	var pending []models.Milestone
	for _, m := range p.Milestones {
		if m.Status == models.MilestonePending {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return models.Milestone{}, false
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].TargetDate.Before(pending[j].TargetDate)
	})
	return pending[0], true
}

// OverdueMilestones lists pending milestones whose target date has passed.
func OverdueMilestones(p models.Plan, now time.Time) []models.Milestone {
	var out []models.Milestone
	for _, m := range p.Milestones {
		if m.Status == models.MilestonePending && m.TargetDate.Before(now) {
			out = append(out, m)
		}
	}
	return out
}

// GoalProgress is the mean of per-topic progress percentages, rounded.
func GoalProgress(topicProgress []int) int {
	if len(topicProgress) == 0 {
		return 0
	}
	sum := 0
	for _, p := range topicProgress {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(topicProgress))))
}

// EstimatedTotalHours sums per-topic estimates.
func EstimatedTotalHours(topicHours []float64) float64 {
	total := 0.0
	for _, h := range topicHours {
		total += h
	}
	return total
}
