package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionAdminUseCase = (*subscriptionAdminUC)(nil)

// SubscriptionAdminUseCase covers the explicit, operator-driven transitions
// of the subscription state machine.
type SubscriptionAdminUseCase interface {
	// SetStatus applies a direct status transition. Setting the current
	// status again is an idempotent no-op; anything the state machine does
	// not permit fails with domain.ErrInvalidTransition.
	SetStatus(ctx context.Context, id string, status model.SubscriptionStatus) (*model.Subscription, error)
	// Extend pushes the end date forward by days (from the current end, or
	// from now if already past) and resurrects the row to ACTIVE.
	Extend(ctx context.Context, id string, days int) (*model.Subscription, error)
}

type subscriptionAdminUC struct {
	subs  repository.SubscriptionRepository
	clock Clock
	log   *zerolog.Logger
}

func NewSubscriptionAdminUseCase(subs repository.SubscriptionRepository, clock Clock, logger *zerolog.Logger) *subscriptionAdminUC {
	if clock == nil {
		clock = time.Now
	}
	l := logger.With().Str("component", "SubscriptionAdminUC").Logger()
	return &subscriptionAdminUC{subs: subs, clock: clock, log: &l}
}

func validStatus(s model.SubscriptionStatus) bool {
	switch s {
	case model.SubscriptionStatusActive, model.SubscriptionStatusExpired, model.SubscriptionStatusCancelled:
		return true
	}
	return false
}

func (a *subscriptionAdminUC) SetStatus(ctx context.Context, id string, status model.SubscriptionStatus) (*model.Subscription, error) {
	if !validStatus(status) {
		return nil, domain.ErrInvalidArgument
	}
	sub, err := a.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == status {
		return sub, nil
	}
	if !model.CanTransition(sub.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	if err := a.subs.UpdateStatus(ctx, repository.NoTX, id, status); err != nil {
		return nil, err
	}
	a.log.Info().
		Str("subscription_id", id).
		Str("from", string(sub.Status)).
		Str("to", string(status)).
		Msg("status transition applied")
	sub.Status = status
	return sub, nil
}

func (a *subscriptionAdminUC) Extend(ctx context.Context, id string, days int) (*model.Subscription, error) {
	if days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	sub, err := a.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	now := a.clock()
	base := sub.EndDate
	if base.Before(now) {
		base = now
	}
	newEnd := base.Add(time.Duration(days) * 24 * time.Hour)
	if err := a.subs.ExtendEndDate(ctx, repository.NoTX, id, newEnd); err != nil {
		return nil, err
	}
	a.log.Info().
		Str("subscription_id", id).
		Int("days", days).
		Time("new_end", newEnd).
		Msg("subscription extended")
	sub.EndDate = newEnd
	sub.Status = model.SubscriptionStatusActive
	return sub, nil
}
