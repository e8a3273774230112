package database

import (
	"context"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new repository instance
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func taskRow(t *models.Task) models.Task {
	row := *t
	row.ScheduledDate = utcPtr(row.ScheduledDate)
	row.CompletedAt = utcPtr(row.CompletedAt)
	row.NextReviewDate = utcPtr(row.NextReviewDate)
	row.LastReviewedAt = utcPtr(row.LastReviewedAt)
	row.CreatedAt = utc(row.CreatedAt)
	row.UpdatedAt = utc(row.UpdatedAt)
	return row
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskNotStarted
	}
	query := `
		INSERT INTO tasks (
			id, user_id, goal_id, session_id, title, type, estimated_duration, difficulty,
			status, scheduled_date, completed, completed_at, time_spent,
			is_review, original_task_id, next_review_date, review_count, last_reviewed_at,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :goal_id, :session_id, :title, :type, :estimated_duration, :difficulty,
			:status, :scheduled_date, :completed, :completed_at, :time_spent,
			:is_review, :original_task_id, :next_review_date, :review_count, :last_reviewed_at,
			:created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, taskRow(t)); err != nil {
		return errors.Wrap(err, "failed to create task")
	}
	return nil
}

// Get returns a task by ID
func (r *TaskRepository) Get(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, r.db.Rebind("SELECT * FROM tasks WHERE id = ?"), id)
	if err != nil {
		return models.Task{}, notFoundOr(err, "task", id, "failed to get task")
	}
	return t, nil
}

// Update stores the progress and review fields of a task
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks SET
			session_id = :session_id,
			title = :title,
			status = :status,
			scheduled_date = :scheduled_date,
			completed = :completed,
			completed_at = :completed_at,
			time_spent = :time_spent,
			next_review_date = :next_review_date,
			review_count = :review_count,
			last_reviewed_at = :last_reviewed_at,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, taskRow(t))
	if err != nil {
		return errors.Wrap(err, "failed to update task")
	}
	return requireRow(res, "task", t.ID)
}

// ListByUser returns all tasks of a user, optionally scoped to a goal
func (r *TaskRepository) ListByUser(ctx context.Context, userID, goalID string) ([]models.Task, error) {
	var tasks []models.Task
	query := "SELECT * FROM tasks WHERE user_id = ?"
	args := []interface{}{userID}
	if goalID != "" {
		query += " AND goal_id = ?"
		args = append(args, goalID)
	}
	query += " ORDER BY created_at, id"
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// ListScheduledBetween returns tasks scheduled within [from, to)
func (r *TaskRepository) ListScheduledBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	query := r.db.Rebind(`
		SELECT * FROM tasks
		WHERE user_id = ? AND scheduled_date >= ? AND scheduled_date < ?
		ORDER BY scheduled_date, id`)
	if err := r.db.SelectContext(ctx, &tasks, query, userID, utc(from), utc(to)); err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled tasks")
	}
	return tasks, nil
}
