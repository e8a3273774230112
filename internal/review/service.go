package review

import (
	"context"

	"github.com/example/studyplan/pkg/models"
)

// Store loads and saves review items. Implementations return an error matching
// apperr.ErrItemNotFound for unknown ids.
type Store interface {
	GetReviewItem(ctx context.Context, id string) (models.ReviewItem, error)
	UpdateReviewItem(ctx context.Context, item *models.ReviewItem) error
}

// Service runs the load-review-save cycle against a store
type Service struct {
	store     Store
	scheduler *Scheduler
}

// NewService wires a scheduler to a store
func NewService(store Store, scheduler *Scheduler) *Service {
	return &Service{store: store, scheduler: scheduler}
}

// ReviewByID loads the item, applies the review and persists the result.
// Nothing is saved when the quality is rejected.
func (s *Service) ReviewByID(ctx context.Context, id string, quality int, opts ...Option) (models.ReviewItem, error) {
	item, err := s.store.GetReviewItem(ctx, id)
	if err != nil {
		return models.ReviewItem{}, err
	}
	updated, err := s.scheduler.Review(item, quality, opts...)
	if err != nil {
		return item, err
	}
	if err := s.store.UpdateReviewItem(ctx, &updated); err != nil {
		return item, err
	}
	return updated, nil
}
