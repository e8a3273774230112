package database

import (
	"context"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SessionRepository handles database operations for study sessions
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func sessionRow(s *models.StudySession) models.StudySession {
	row := *s
	row.PlannedStartTime = utc(row.PlannedStartTime)
	row.ActualStartTime = utcPtr(row.ActualStartTime)
	row.ActualEndTime = utcPtr(row.ActualEndTime)
	row.PausedAt = utcPtr(row.PausedAt)
	row.CreatedAt = utc(row.CreatedAt)
	row.UpdatedAt = utc(row.UpdatedAt)
	return row
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO study_sessions (
			id, user_id, goal_id, plan_id, title, type,
			planned_start_time, planned_duration,
			actual_start_time, actual_end_time, actual_duration,
			status, pause_count, total_pause_time, paused_at, breaks,
			focus_score, notes, created_at, updated_at
		) VALUES (
			:id, :user_id, :goal_id, :plan_id, :title, :type,
			:planned_start_time, :planned_duration,
			:actual_start_time, :actual_end_time, :actual_duration,
			:status, :pause_count, :total_pause_time, :paused_at, :breaks,
			:focus_score, :notes, :created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, sessionRow(s)); err != nil {
		return errors.Wrap(err, "failed to create study session")
	}
	return nil
}

// Get returns a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (models.StudySession, error) {
	var s models.StudySession
	err := r.db.GetContext(ctx, &s, r.db.Rebind("SELECT * FROM study_sessions WHERE id = ?"), id)
	if err != nil {
		return models.StudySession{}, notFoundOr(err, "study session", id, "failed to get study session")
	}
	return s, nil
}

// Update stores the lifecycle fields of a session
func (r *SessionRepository) Update(ctx context.Context, s *models.StudySession) error {
	query := `
		UPDATE study_sessions SET
			plan_id = :plan_id,
			title = :title,
			planned_start_time = :planned_start_time,
			planned_duration = :planned_duration,
			actual_start_time = :actual_start_time,
			actual_end_time = :actual_end_time,
			actual_duration = :actual_duration,
			status = :status,
			pause_count = :pause_count,
			total_pause_time = :total_pause_time,
			paused_at = :paused_at,
			breaks = :breaks,
			focus_score = :focus_score,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, sessionRow(s))
	if err != nil {
		return errors.Wrap(err, "failed to update study session")
	}
	return requireRow(res, "study session", s.ID)
}

// GetOpen returns the user's active or paused session, if any
func (r *SessionRepository) GetOpen(ctx context.Context, userID string) (models.StudySession, error) {
	var s models.StudySession
	query := r.db.Rebind(`
		SELECT * FROM study_sessions
		WHERE user_id = ? AND status IN (?, ?)
		ORDER BY updated_at DESC
		LIMIT 1`)
	err := r.db.GetContext(ctx, &s, query, userID, models.SessionActive, models.SessionPaused)
	if err != nil {
		return models.StudySession{}, notFoundOr(err, "open study session for user", userID, "failed to get open session")
	}
	return s, nil
}

// ListScheduled returns the user's sessions that have not started yet, earliest first
func (r *SessionRepository) ListScheduled(ctx context.Context, userID string) ([]models.StudySession, error) {
	var sessions []models.StudySession
	query := r.db.Rebind(`
		SELECT * FROM study_sessions
		WHERE user_id = ? AND status = ?
		ORDER BY planned_start_time, id`)
	if err := r.db.SelectContext(ctx, &sessions, query, userID, models.SessionScheduled); err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled sessions")
	}
	return sessions, nil
}

// ListByPlan returns the sessions linked to a plan in planned order
func (r *SessionRepository) ListByPlan(ctx context.Context, planID string) ([]models.StudySession, error) {
	var sessions []models.StudySession
	query := r.db.Rebind("SELECT * FROM study_sessions WHERE plan_id = ? ORDER BY planned_start_time, id")
	if err := r.db.SelectContext(ctx, &sessions, query, planID); err != nil {
		return nil, errors.Wrap(err, "failed to list plan sessions")
	}
	return sessions, nil
}

// ListBetween returns sessions planned or ended within [from, to)
func (r *SessionRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]models.StudySession, error) {
	var sessions []models.StudySession
	query := r.db.Rebind(`
		SELECT * FROM study_sessions
		WHERE user_id = ?
		  AND ((planned_start_time >= ? AND planned_start_time < ?)
		    OR (actual_end_time >= ? AND actual_end_time < ?))
		ORDER BY planned_start_time, id`)
	f, t := utc(from), utc(to)
	if err := r.db.SelectContext(ctx, &sessions, query, userID, f, t, f, t); err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}
