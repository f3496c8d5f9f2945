package repository

import (
	"context"
	"time"

	"edu-games-subscription/internal/domain/model"
)

// SubscriptionRepository is the port for subscription persistence.
//
// Writes are durable upon return. Single-row updates are atomic;
// BulkUpdateStatus is atomic per row, not across the batch — callers must be
// re-runnable against partial completion.
type SubscriptionRepository interface {
	// Create persists a new record. Fails with domain.ErrInvalidPlanType or
	// domain.ErrInvalidDateRange on malformed input.
	Create(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	// FindActiveByUser returns rows with status=ACTIVE and EndDate after now.
	FindActiveByUser(ctx context.Context, tx Tx, userID string, now time.Time) ([]*model.Subscription, error)
	FindActiveByUserAndPlan(ctx context.Context, tx Tx, userID string, plan model.PlanType, now time.Time) ([]*model.Subscription, error)
	// FindExpiredCandidates returns rows still marked ACTIVE whose EndDate has
	// passed — the set the reconciler must flip.
	FindExpiredCandidates(ctx context.Context, tx Tx, now time.Time) ([]*model.Subscription, error)
	// UpdateStatus sets the persisted status; domain.ErrNotFound on unknown id.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus) error
	// ExtendEndDate pushes the window forward and resets status to ACTIVE;
	// domain.ErrNotFound on unknown id.
	ExtendEndDate(ctx context.Context, tx Tx, id string, newEnd time.Time) error
	// BulkUpdateStatus flips every listed row not already in the target status
	// and returns the number actually updated.
	BulkUpdateStatus(ctx context.Context, tx Tx, ids []string, status model.SubscriptionStatus) (int, error)
}
