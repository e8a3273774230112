package review

import (
	"iter"
	"slices"
	"time"

	"github.com/example/studyplan/pkg/models"
)

// DueStatus classifies an item's next review relative to now
type DueStatus string

const (
	StatusOverdue  DueStatus = "overdue"
	StatusDue      DueStatus = "due"
	StatusUpcoming DueStatus = "upcoming"
)

// GetDueStatus is overdue when the review time has passed, due when it falls
// within the next 24 hours, otherwise upcoming.
func GetDueStatus(item models.ReviewItem, now time.Time) DueStatus {
	diff := item.NextReview.Sub(now)
	switch {
	case diff < 0:
		return StatusOverdue
	case diff < day:
		return StatusDue
	default:
		return StatusUpcoming
	}
}

// DueItems yields items whose next review is not after the current time,
// oldest first. goalID filters by goal when non-empty. Each range over the
// returned sequence re-reads the clock and recomputes the selection.
func (s *Scheduler) DueItems(items []models.ReviewItem, goalID string) iter.Seq[models.ReviewItem] {
	return func(yield func(models.ReviewItem) bool) {
		now := s.clock.Now()
		due := make([]models.ReviewItem, 0, len(items))
		for _, it := range items {
			if goalID != "" && it.GoalID != goalID {
				continue
			}
			if it.NextReview.After(now) {
				continue
			}
			due = append(due, it)
		}
		slices.SortStableFunc(due, func(a, b models.ReviewItem) int {
			return a.NextReview.Compare(b.NextReview)
		})
		for _, it := range due {
			if !yield(it) {
				return
			}
		}
	}
}

// Take collects at most n items from seq. n <= 0 collects everything.
func Take(seq iter.Seq[models.ReviewItem], n int) []models.ReviewItem {
	var out []models.ReviewItem
	for it := range seq {
		if n > 0 && len(out) >= n {
			break
		}
		out = append(out, it)
	}
	return out
}

// CountDue counts the items that are due now.
func (s *Scheduler) CountDue(items []models.ReviewItem) int {
	n := 0
	for range s.DueItems(items, "") {
		n++
	}
	return n
}
