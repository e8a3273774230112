package database

import (
	"context"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ReviewItemRepository handles database operations for flashcards
type ReviewItemRepository struct {
	db *sqlx.DB
}

// NewReviewItemRepository creates a new repository instance
func NewReviewItemRepository(db *sqlx.DB) *ReviewItemRepository {
	return &ReviewItemRepository{db: db}
}

func reviewItemRow(item *models.ReviewItem) models.ReviewItem {
	row := *item
	row.LastReviewed = utcPtr(row.LastReviewed)
	row.NextReview = utc(row.NextReview)
	row.CreatedAt = utc(row.CreatedAt)
	row.UpdatedAt = utc(row.UpdatedAt)
	return row
}

// Create inserts a new review item
func (r *ReviewItemRepository) Create(ctx context.Context, item *models.ReviewItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
		item.UpdatedAt = item.CreatedAt
	}
	if item.Difficulty == "" {
		item.Difficulty = models.DifficultyMedium
	}
	query := `
		INSERT INTO review_items (
			id, user_id, goal_id, front, back, difficulty, tags,
			ease_factor, interval_days, repetitions, last_reviewed, next_review,
			review_count, correct_count, incorrect_count, average_response_time,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :goal_id, :front, :back, :difficulty, :tags,
			:ease_factor, :interval_days, :repetitions, :last_reviewed, :next_review,
			:review_count, :correct_count, :incorrect_count, :average_response_time,
			:created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, reviewItemRow(item)); err != nil {
		return errors.Wrap(err, "failed to create review item")
	}
	return nil
}

// CreateBatch inserts several items in one transaction
func (r *ReviewItemRepository) CreateBatch(ctx context.Context, items []models.ReviewItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO review_items (
			id, user_id, goal_id, front, back, difficulty, tags,
			ease_factor, interval_days, repetitions, last_reviewed, next_review,
			review_count, correct_count, incorrect_count, average_response_time,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :goal_id, :front, :back, :difficulty, :tags,
			:ease_factor, :interval_days, :repetitions, :last_reviewed, :next_review,
			:review_count, :correct_count, :incorrect_count, :average_response_time,
			:created_at, :updated_at
		)`
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, reviewItemRow(&items[i])); err != nil {
			return errors.Wrapf(err, "failed to insert review item %q", items[i].Front)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit review items")
}

// GetReviewItem returns a review item by ID
func (r *ReviewItemRepository) GetReviewItem(ctx context.Context, id string) (models.ReviewItem, error) {
	var item models.ReviewItem
	err := r.db.GetContext(ctx, &item, r.db.Rebind("SELECT * FROM review_items WHERE id = ?"), id)
	if err != nil {
		return models.ReviewItem{}, notFoundOr(err, "review item", id, "failed to get review item")
	}
	return item, nil
}

// UpdateReviewItem stores the scheduling state and counters of an item
func (r *ReviewItemRepository) UpdateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	query := `
		UPDATE review_items SET
			front = :front,
			back = :back,
			difficulty = :difficulty,
			tags = :tags,
			ease_factor = :ease_factor,
			interval_days = :interval_days,
			repetitions = :repetitions,
			last_reviewed = :last_reviewed,
			next_review = :next_review,
			review_count = :review_count,
			correct_count = :correct_count,
			incorrect_count = :incorrect_count,
			average_response_time = :average_response_time,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, reviewItemRow(item))
	if err != nil {
		return errors.Wrap(err, "failed to update review item")
	}
	return requireRow(res, "review item", item.ID)
}

// ListByUser returns all items of a user, optionally scoped to a goal
func (r *ReviewItemRepository) ListByUser(ctx context.Context, userID, goalID string) ([]models.ReviewItem, error) {
	var items []models.ReviewItem
	query := "SELECT * FROM review_items WHERE user_id = ?"
	args := []interface{}{userID}
	if goalID != "" {
		query += " AND goal_id = ?"
		args = append(args, goalID)
	}
	query += " ORDER BY next_review, id"
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to list review items")
	}
	return items, nil
}

// ListDue returns up to limit items whose next review is at or before now, oldest first
func (r *ReviewItemRepository) ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error) {
	var items []models.ReviewItem
	query := `
		SELECT * FROM review_items
		WHERE user_id = ? AND next_review <= ?
		ORDER BY next_review, id`
	args := []interface{}{userID, utc(now)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to get due review items")
	}
	return items, nil
}

// CountDue returns the number of items due at now
func (r *ReviewItemRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(*) FROM review_items WHERE user_id = ? AND next_review <= ?")
	if err := r.db.GetContext(ctx, &n, query, userID, utc(now)); err != nil {
		return 0, errors.Wrap(err, "failed to count due review items")
	}
	return n, nil
}

// Delete removes a review item
func (r *ReviewItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM review_items WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete review item")
	}
	return requireRow(res, "review item", id)
}
