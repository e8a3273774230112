package database

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/example/studyplan/internal/apperr"
	"github.com/example/studyplan/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	DefaultNotificationHour = 9
	DefaultReviewsPerDay    = 20
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by internal ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT * FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, notFoundOr(err, "user", id, "failed to get user")
	}
	return &user, nil
}

// GetByTelegramID returns a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT * FROM users WHERE telegram_id = ?"), telegramID)
	if err != nil {
		return nil, notFoundOr(err, "user", strconv.FormatInt(telegramID, 10), "failed to get user by telegram id")
	}
	return &user, nil
}

// GetOrCreateByTelegramID returns the user for a Telegram account, registering it on first contact
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	user, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperr.ErrItemNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user = &models.User{
		ID:                  uuid.NewString(),
		TelegramID:          telegramID,
		Username:            username,
		FirstName:           firstName,
		NotificationEnabled: true,
		NotificationHour:    DefaultNotificationHour,
		ReviewsPerDay:       DefaultReviewsPerDay,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (
			id, telegram_id, username, first_name, notification_enabled,
			notification_hour, reviews_per_day, created_at, updated_at
		) VALUES (
			:id, :telegram_id, :username, :first_name, :notification_enabled,
			:notification_hour, :reviews_per_day, :created_at, :updated_at
		)`
	row := *user
	row.CreatedAt, row.UpdatedAt = utc(row.CreatedAt), utc(row.UpdatedAt)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update updates user settings
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE users SET
			username = :username,
			first_name = :first_name,
			notification_enabled = :notification_enabled,
			notification_hour = :notification_hour,
			reviews_per_day = :reviews_per_day,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	return requireRow(res, "user", user.ID)
}

// ListForNotification returns users who want a reminder at the given hour
func (r *UserRepository) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT * FROM users
		WHERE notification_enabled = ? AND notification_hour = ?
		ORDER BY telegram_id`)
	if err := r.db.SelectContext(ctx, &users, query, true, hour); err != nil {
		return nil, errors.Wrap(err, "failed to list users for notification")
	}
	return users, nil
}

// ListAll returns every registered user
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

func notFoundOr(err error, kind, id, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(kind, id)
	}
	return errors.Wrap(err, msg)
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return apperr.NotFound(kind, id)
	}
	return nil
}
