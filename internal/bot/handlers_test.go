package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFlowThroughCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, "No plan yet. Use /plan_new first.", h.command(7, "/milestone_add 2024-05-17 Midterm"))
	assert.Contains(t, h.command(7, "/plan_new algebra"), "created")
	userID := h.user(t, 7).ID

	assert.Equal(t, "Date must look like 2024-06-30", h.command(7, "/milestone_add friday Midterm"))
	assert.Contains(t, h.command(7, "/milestone_add 2024-05-17 Midterm"), `Milestone "Midterm" due 2024-05-17`)

	h.command(7, "/session_new 60 Chapter 1")
	reply := h.command(7, "/plan")
	assert.Contains(t, reply, "1 session(s), 0% complete")
	assert.Contains(t, reply, "Next milestone: Midterm")

	h.command(7, "/session_start")
	h.clock.Advance(60 * time.Minute)
	assert.Equal(t, "✅ Done: 60 of 60 min, 0 pause(s), focus score 100.", h.command(7, "/complete"))

	reply = h.command(7, "/plan")
	assert.Contains(t, reply, "1 session(s), 100% complete")
	assert.Contains(t, reply, "1.0 of 1.0 planned hours done")

	p, err := h.store.Plans.GetByUser(ctx, userID, "algebra")
	require.NoError(t, err)
	assert.Equal(t, 100, p.CompletionRate)
	require.Len(t, p.Sessions, 1)
	assert.Equal(t, "algebra", p.Sessions[0].GoalID)
	require.Len(t, p.Milestones, 1)

	assert.Contains(t, h.command(7, "/milestone "+p.Milestones[0].ID), `Milestone "Midterm" achieved`)
	assert.NotContains(t, h.command(7, "/plan"), "Next milestone")

	assert.Contains(t, h.command(7, "/task_new 40 Read notes"), `Task "Read notes" added`)
	tasks, err := h.store.Tasks.ListByUser(ctx, userID, "algebra")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].ScheduledDate)
	assert.Equal(t, 40, tasks[0].EstimatedDuration)

	assert.Contains(t, h.command(7, "/task_done "+tasks[0].ID+" 45"), "4 review(s) planned")

	reply = h.command(7, "/progress")
	assert.Contains(t, reply, "Studied 60 of 60 planned min on 1 day(s)")
	assert.Contains(t, reply, "Tasks 1/1 done")
}

func TestStreakIncludesToday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.command(7, "/start")
	userID := h.user(t, 7).ID

	day := clock.StartOfDay(t0)
	for i := 1; i <= 5; i++ {
		rec := models.ProgressRecord{UserID: userID, Date: day.AddDate(0, 0, -i), TimeStudied: 50, ActualTime: 50}
		require.NoError(t, h.store.Progress.Upsert(ctx, &rec))
	}
	assert.Contains(t, h.command(7, "/streak"), "No streak yet")

	h.command(7, "/session_new 60 Chapter")
	h.command(7, "/session_start")
	h.clock.Advance(60 * time.Minute)
	h.command(7, "/complete")

	assert.Equal(t, "🔥 6 day streak", h.command(7, "/streak"))
}

func TestReviewWithAccuracy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.command(7, "/add eigenvalue | scalar with Av = λv")
	items, err := h.store.ReviewItems.ListByUser(ctx, h.user(t, 7).ID, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID

	assert.Equal(t, "accuracy must be a percentage from 0% to 100%", h.command(7, "/review "+id+" 120%"))
	assert.Contains(t, h.command(7, "/review "+id+" 60%"), "Next review in 1 day(s)")

	got, err := h.store.GetReviewItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.InDelta(t, 2.36, got.EaseFactor, 1e-9)
}

func TestLockUserSerialisesAndReleases(t *testing.T) {
	h := newHarness(t)

	var active, overlaps atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := h.bot.lockUser(7)
			if active.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load())
	h.bot.locksMu.Lock()
	defer h.bot.locksMu.Unlock()
	assert.Empty(t, h.bot.locks)
}
