package database

import (
	"context"

	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PlanRepository handles database operations for plans and their milestones
type PlanRepository struct {
	db       *sqlx.DB
	sessions *SessionRepository
}

// NewPlanRepository creates a new repository instance
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db, sessions: NewSessionRepository(db)}
}

// Save inserts or updates the plan row and its milestones.
// Sessions are stored through SessionRepository and linked by plan_id.
func (r *PlanRepository) Save(ctx context.Context, p *models.Plan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	row := *p
	row.CreatedAt, row.UpdatedAt = utc(row.CreatedAt), utc(row.UpdatedAt)

	res, err := tx.NamedExecContext(ctx, `
		UPDATE plans SET
			plan_version = :plan_version,
			review_intervals = :review_intervals,
			buffer_time_percentage = :buffer_time_percentage,
			total_planned_hours = :total_planned_hours,
			total_completed_hours = :total_completed_hours,
			completion_rate = :completion_rate,
			updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return errors.Wrap(err, "failed to update plan")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO plans (
				id, goal_id, user_id, plan_version, review_intervals, buffer_time_percentage,
				total_planned_hours, total_completed_hours, completion_rate, created_at, updated_at
			) VALUES (
				:id, :goal_id, :user_id, :plan_version, :review_intervals, :buffer_time_percentage,
				:total_planned_hours, :total_completed_hours, :completion_rate, :created_at, :updated_at
			)`, row)
		if err != nil {
			return errors.Wrap(err, "failed to create plan")
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM milestones WHERE plan_id = ?"), p.ID); err != nil {
		return errors.Wrap(err, "failed to clear milestones")
	}
	for _, m := range p.Milestones {
		m.PlanID = p.ID
		m.TargetDate = utc(m.TargetDate)
		m.AchievedAt = utcPtr(m.AchievedAt)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO milestones (id, plan_id, title, type, target_date, status, achieved_at)
			VALUES (:id, :plan_id, :title, :type, :target_date, :status, :achieved_at)`, m)
		if err != nil {
			return errors.Wrapf(err, "failed to save milestone %q", m.Title)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit plan")
}

// Get loads a plan with its milestones and sessions
func (r *PlanRepository) Get(ctx context.Context, id string) (models.Plan, error) {
	var p models.Plan
	err := r.db.GetContext(ctx, &p, r.db.Rebind("SELECT * FROM plans WHERE id = ?"), id)
	if err != nil {
		return models.Plan{}, notFoundOr(err, "plan", id, "failed to get plan")
	}
	return r.load(ctx, p)
}

// GetByUser returns the latest plan of a user, optionally scoped to a goal
func (r *PlanRepository) GetByUser(ctx context.Context, userID, goalID string) (models.Plan, error) {
	var p models.Plan
	query := "SELECT * FROM plans WHERE user_id = ?"
	args := []interface{}{userID}
	if goalID != "" {
		query += " AND goal_id = ?"
		args = append(args, goalID)
	}
	query += " ORDER BY updated_at DESC LIMIT 1"
	if err := r.db.GetContext(ctx, &p, r.db.Rebind(query), args...); err != nil {
		return models.Plan{}, notFoundOr(err, "plan for user", userID, "failed to get plan")
	}
	return r.load(ctx, p)
}

func (r *PlanRepository) load(ctx context.Context, p models.Plan) (models.Plan, error) {
	query := r.db.Rebind("SELECT * FROM milestones WHERE plan_id = ? ORDER BY target_date, id")
	if err := r.db.SelectContext(ctx, &p.Milestones, query, p.ID); err != nil {
		return models.Plan{}, errors.Wrap(err, "failed to load milestones")
	}
	sessions, err := r.sessions.ListByPlan(ctx, p.ID)
	if err != nil {
		return models.Plan{}, err
	}
	p.Sessions = sessions
	return p, nil
}
