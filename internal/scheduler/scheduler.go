package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/studyplan/internal/clock"
	"github.com/example/studyplan/internal/config"
	"github.com/example/studyplan/internal/progress"
	"github.com/example/studyplan/pkg/models"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Number of users rolled up concurrently
const rollupConcurrency = 4

// How far back the rollup looks when counting streaks
const streakLookbackDays = 366

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	cron     *gocron.Scheduler
	store    Store
	notifier Notifier
	cfg      *config.Config
	clock    clock.Clock
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(ctx context.Context, user models.User, count int) error
}

// Store is the persistence the jobs read and write
type Store interface {
	ListForNotification(ctx context.Context, hour int) ([]models.User, error)
	ListAllUsers(ctx context.Context) ([]models.User, error)
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
	SessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.StudySession, error)
	TasksBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Task, error)
	ProgressRange(ctx context.Context, userID string, from, to time.Time) ([]models.ProgressRecord, error)
	UpsertProgress(ctx context.Context, rec *models.ProgressRecord) error
}

// New creates a new scheduler instance
func New(store Store, notifier Notifier, cfg *config.Config, c clock.Clock) *Scheduler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(cfg.Location),
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		clock:    clock.OrSystem(c),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start(ctx context.Context) error {
	// Hourly check for users who need notifications
	if _, err := s.cron.Every(1).Hour().Do(s.CheckAndSendReminders, ctx); err != nil {
		return errors.Wrap(err, "failed to schedule reminders")
	}

	// Nightly rollup of the day's sessions and tasks
	if _, err := s.cron.Every(1).Day().At(s.cfg.RollupTime).Do(s.rollupToday, ctx); err != nil {
		return errors.Wrap(err, "failed to schedule progress rollup")
	}

	// Start the scheduler in a non-blocking manner
	s.cron.StartAsync()
	slog.Info("scheduler started", "rollup_time", s.cfg.RollupTime, "timezone", s.cfg.Location.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) now() time.Time {
	return s.clock.Now().In(s.cfg.Location)
}

// CheckAndSendReminders notifies users whose reminder hour is now and who have reviews due
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) {
	now := s.now()
	hour := now.Hour()

	if !s.cfg.InNotificationWindow(hour) {
		slog.Debug("outside notification hours, skipping reminders",
			"hour", hour, "start", s.cfg.NotificationStartHour, "end", s.cfg.NotificationEndHour)
		return
	}

	users, err := s.store.ListForNotification(ctx, hour)
	if err != nil {
		slog.Error("failed to get users for notification", "error", err)
		return
	}

	for _, user := range users {
		if err := s.remind(ctx, user, now, true); err != nil {
			slog.Error("failed to send reminder", "user_id", user.ID, "error", err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user, ignoring the notification window
func (s *Scheduler) RunManualCheck(ctx context.Context, user models.User) error {
	return s.remind(ctx, user, s.now(), false)
}

func (s *Scheduler) remind(ctx context.Context, user models.User, now time.Time, capped bool) error {
	count, err := s.store.CountDue(ctx, user.ID, now)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if capped {
		// Don't send more than the user's daily preference
		limit := s.cfg.MaxDailyReviews
		if user.ReviewsPerDay > 0 && user.ReviewsPerDay < limit {
			limit = user.ReviewsPerDay
		}
		if count > limit {
			count = limit
		}
	}
	return s.notifier.SendReminders(ctx, user, count)
}

func (s *Scheduler) rollupToday(ctx context.Context) {
	if err := s.Rollup(ctx, s.now()); err != nil {
		slog.Error("progress rollup failed", "error", err)
	}
}

// Rollup builds and stores the progress record of day for every user
func (s *Scheduler) Rollup(ctx context.Context, day time.Time) error {
	users, err := s.store.ListAllUsers(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rollupConcurrency)
	for _, user := range users {
		g.Go(func() error {
			if _, err := s.RollupUser(gctx, user.ID, day); err != nil {
				return errors.Wrapf(err, "rollup for user %s", user.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("progress rollup finished", "users", len(users), "day", clock.StartOfDay(day).Format("2006-01-02"))
	return nil
}

// RollupUser builds one user's record for day, including the streak, and stores it
func (s *Scheduler) RollupUser(ctx context.Context, userID string, day time.Time) (models.ProgressRecord, error) {
	start := clock.StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	sessions, err := s.store.SessionsBetween(ctx, userID, start, end)
	if err != nil {
		return models.ProgressRecord{}, err
	}
	tasks, err := s.store.TasksBetween(ctx, userID, start, end)
	if err != nil {
		return models.ProgressRecord{}, err
	}
	rec := progress.BuildDaily(userID, start, sessions, tasks)

	history, err := s.store.ProgressRange(ctx, userID, start.AddDate(0, 0, -streakLookbackDays), start)
	if err != nil {
		return models.ProgressRecord{}, err
	}
	rec.CurrentStreak = progress.Streak(append(history, rec), start)

	if err := s.store.UpsertProgress(ctx, &rec); err != nil {
		return models.ProgressRecord{}, err
	}
	return rec, nil
}
