package database

import (
	"context"
	"time"

	"github.com/example/studyplan/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store groups the repositories over one connection
type Store struct {
	DB          *sqlx.DB
	Users       *UserRepository
	ReviewItems *ReviewItemRepository
	Sessions    *SessionRepository
	Plans       *PlanRepository
	Progress    *ProgressRepository
	Tasks       *TaskRepository
}

// NewStore creates repositories bound to db, or to the global DB when db is nil
func NewStore(db *sqlx.DB) *Store {
	if db == nil {
		db = DB
	}
	return &Store{
		DB:          db,
		Users:       NewUserRepository(db),
		ReviewItems: NewReviewItemRepository(db),
		Sessions:    NewSessionRepository(db),
		Plans:       NewPlanRepository(db),
		Progress:    NewProgressRepository(db),
		Tasks:       NewTaskRepository(db),
	}
}

// GetReviewItem loads a review item for the review service
func (s *Store) GetReviewItem(ctx context.Context, id string) (models.ReviewItem, error) {
	return s.ReviewItems.GetReviewItem(ctx, id)
}

// UpdateReviewItem saves a reviewed item for the review service
func (s *Store) UpdateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	return s.ReviewItems.UpdateReviewItem(ctx, item)
}

// ListForNotification returns users to remind at hour
func (s *Store) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	return s.Users.ListForNotification(ctx, hour)
}

// ListAllUsers returns every user
func (s *Store) ListAllUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.ListAll(ctx)
}

// CountDue counts the user's review items due at now
func (s *Store) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	return s.ReviewItems.CountDue(ctx, userID, now)
}

// SessionsBetween lists sessions planned or ended within [from, to)
func (s *Store) SessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.StudySession, error) {
	return s.Sessions.ListBetween(ctx, userID, from, to)
}

// TasksBetween lists tasks scheduled within [from, to)
func (s *Store) TasksBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Task, error) {
	return s.Tasks.ListScheduledBetween(ctx, userID, from, to)
}

// ProgressRange lists daily records within [from, to)
func (s *Store) ProgressRange(ctx context.Context, userID string, from, to time.Time) ([]models.ProgressRecord, error) {
	return s.Progress.ListRange(ctx, userID, from, to)
}

// UpsertProgress stores a daily record
func (s *Store) UpsertProgress(ctx context.Context, rec *models.ProgressRecord) error {
	return s.Progress.Upsert(ctx, rec)
}

// GetOrCreateUser registers a Telegram account on first contact
func (s *Store) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	return s.Users.GetOrCreateByTelegramID(ctx, telegramID, username, firstName)
}

// UpdateUser saves user settings
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return s.Users.Update(ctx, user)
}

// CreateReviewItem inserts a card
func (s *Store) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	return s.ReviewItems.Create(ctx, item)
}

// ListDueItems returns up to limit cards due at now
func (s *Store) ListDueItems(ctx context.Context, userID string, now time.Time, limit int) ([]models.ReviewItem, error) {
	return s.ReviewItems.ListDue(ctx, userID, now, limit)
}

// CreateSession inserts a session
func (s *Store) CreateSession(ctx context.Context, sess *models.StudySession) error {
	return s.Sessions.Create(ctx, sess)
}

// UpdateSession saves a session
func (s *Store) UpdateSession(ctx context.Context, sess *models.StudySession) error {
	return s.Sessions.Update(ctx, sess)
}

// GetSession loads a session
func (s *Store) GetSession(ctx context.Context, id string) (models.StudySession, error) {
	return s.Sessions.Get(ctx, id)
}

// GetOpenSession loads the user's active or paused session
func (s *Store) GetOpenSession(ctx context.Context, userID string) (models.StudySession, error) {
	return s.Sessions.GetOpen(ctx, userID)
}

// ListScheduledSessions lists sessions not yet started
func (s *Store) ListScheduledSessions(ctx context.Context, userID string) ([]models.StudySession, error) {
	return s.Sessions.ListScheduled(ctx, userID)
}

// GetPlan loads a plan with its sessions and milestones
func (s *Store) GetPlan(ctx context.Context, id string) (models.Plan, error) {
	return s.Plans.Get(ctx, id)
}

// GetLatestPlan loads the user's most recently updated plan
func (s *Store) GetLatestPlan(ctx context.Context, userID string) (models.Plan, error) {
	return s.Plans.GetByUser(ctx, userID, "")
}

// SavePlan stores a plan and its milestones
func (s *Store) SavePlan(ctx context.Context, p *models.Plan) error {
	return s.Plans.Save(ctx, p)
}

// CreateTask inserts a task
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return s.Tasks.Create(ctx, t)
}

// GetTask loads a task
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	return s.Tasks.Get(ctx, id)
}

// UpdateTask saves a task
func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	return s.Tasks.Update(ctx, t)
}

// ListReviewItems returns the user's cards for the spreadsheet importer
func (s *Store) ListReviewItems(ctx context.Context, userID, goalID string) ([]models.ReviewItem, error) {
	return s.ReviewItems.ListByUser(ctx, userID, goalID)
}

// CreateReviewItems inserts imported cards in one transaction
func (s *Store) CreateReviewItems(ctx context.Context, items []models.ReviewItem) error {
	return s.ReviewItems.CreateBatch(ctx, items)
}
