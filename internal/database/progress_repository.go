package database

import (
	"context"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ProgressRepository handles database operations for daily progress records
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert stores the record for its (user, goal, day), replacing an earlier rollup of the same day
func (r *ProgressRepository) Upsert(ctx context.Context, rec *models.ProgressRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	row := *rec
	row.Date = utc(row.Date)
	row.CreatedAt = utc(row.CreatedAt)

	query := `
		INSERT INTO progress_records (
			id, user_id, goal_id, date, week, month, year,
			planned_time, actual_time, time_studied,
			tasks_planned, tasks_completed, tasks_skipped,
			completion_rate, current_streak, burnout_score, status,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :goal_id, :date, :week, :month, :year,
			:planned_time, :actual_time, :time_studied,
			:tasks_planned, :tasks_completed, :tasks_skipped,
			:completion_rate, :current_streak, :burnout_score, :status,
			:created_at, :updated_at
		)
		ON CONFLICT (user_id, goal_id, date) DO UPDATE SET
			planned_time = excluded.planned_time,
			actual_time = excluded.actual_time,
			time_studied = excluded.time_studied,
			tasks_planned = excluded.tasks_planned,
			tasks_completed = excluded.tasks_completed,
			tasks_skipped = excluded.tasks_skipped,
			completion_rate = excluded.completion_rate,
			current_streak = excluded.current_streak,
			burnout_score = excluded.burnout_score,
			status = excluded.status,
			updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrap(err, "failed to save progress record")
	}
	return nil
}

// ListRange returns the user's records with from <= date < to, oldest first
func (r *ProgressRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	query := r.db.Rebind(`
		SELECT * FROM progress_records
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date, goal_id`)
	if err := r.db.SelectContext(ctx, &records, query, userID, utc(from), utc(to)); err != nil {
		return nil, errors.Wrap(err, "failed to list progress records")
	}
	return records, nil
}

// ListRecent returns the user's records for the last days days up to and including today
func (r *ProgressRepository) ListRecent(ctx context.Context, userID string, today time.Time, days int) ([]models.ProgressRecord, error) {
	return r.ListRange(ctx, userID, today.AddDate(0, 0, -days+1), today.AddDate(0, 0, 1))
}
