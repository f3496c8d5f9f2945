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
var _ EntitlementUseCase = (*entitlementUC)(nil)

// AccessCheck answers "does this user have access to this plan right now".
type AccessCheck struct {
	HasAccess     bool                  `json:"hasAccess"`
	Subscription  *EnrichedSubscription `json:"subscription,omitempty"`
	RemainingDays int                   `json:"remainingDays"`
	IsExpired     bool                  `json:"isExpired"`
}

type ListingMetadata struct {
	Total       int       `json:"total"`
	Active      int       `json:"active"`
	Expired     int       `json:"expired"`
	LastChecked time.Time `json:"lastChecked"`
}

type SubscriptionListing struct {
	Subscriptions []*EnrichedSubscription `json:"subscriptions"`
	Metadata      ListingMetadata         `json:"metadata"`
}

// EntitlementUseCase is the request-path façade. Expiry is re-derived at read
// time so answers stay accurate between scheduled reconciliation runs; a
// cheap per-user reconcile touch-up keeps the persisted status from drifting
// too far, but its failure never fails the read.
type EntitlementUseCase interface {
	HasAccess(ctx context.Context, userID string, plan model.PlanType) (*AccessCheck, error)
	ListSubscriptions(ctx context.Context, userID string) (*SubscriptionListing, error)
	ListActiveSubscriptions(ctx context.Context, userID string) ([]*EnrichedSubscription, error)
}

type entitlementUC struct {
	subs       repository.SubscriptionRepository
	reconciler ReconcileUseCase
	clock      Clock
	log        *zerolog.Logger
}

func NewEntitlementUseCase(subs repository.SubscriptionRepository, reconciler ReconcileUseCase, clock Clock, logger *zerolog.Logger) *entitlementUC {
	if clock == nil {
		clock = time.Now
	}
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{subs: subs, reconciler: reconciler, clock: clock, log: &l}
}

func (e *entitlementUC) touchUp(ctx context.Context, userID string, now time.Time) {
	if e.reconciler == nil {
		return
	}
	if _, err := e.reconciler.ReconcileUser(ctx, userID, now); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("read-path reconcile skipped")
	}
}

func (e *entitlementUC) HasAccess(ctx context.Context, userID string, plan model.PlanType) (*AccessCheck, error) {
	if !plan.Valid() {
		return nil, domain.ErrInvalidPlanType
	}
	now := e.clock()
	e.touchUp(ctx, userID, now)

	check := &AccessCheck{}
	if plan == model.PlanStarter {
		// The free tier is always accessible.
		check.HasAccess = true
	}

	subs, err := e.subs.FindActiveByUserAndPlan(ctx, repository.NoTX, userID, plan, now)
	if err != nil {
		return nil, err
	}

	// Derived expiry wins over a stale persisted ACTIVE.
	var best *model.Subscription
	for _, s := range subs {
		if !s.ActiveAt(now) {
			continue
		}
		if best == nil || s.EndDate.After(best.EndDate) {
			best = s
		}
	}
	if best == nil {
		check.IsExpired = true
		return check, nil
	}

	check.HasAccess = true
	check.Subscription = Enrich(now, best)
	check.RemainingDays = check.Subscription.RemainingDays
	return check, nil
}

func (e *entitlementUC) ListSubscriptions(ctx context.Context, userID string) (*SubscriptionListing, error) {
	now := e.clock()
	e.touchUp(ctx, userID, now)

	subs, err := e.subs.FindByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	listing := &SubscriptionListing{
		Subscriptions: make([]*EnrichedSubscription, 0, len(subs)),
		Metadata:      ListingMetadata{Total: len(subs), LastChecked: now},
	}
	for _, s := range subs {
		es := Enrich(now, s)
		listing.Subscriptions = append(listing.Subscriptions, es)
		switch es.DisplayStatus {
		case model.SubscriptionStatusActive:
			listing.Metadata.Active++
		case model.SubscriptionStatusExpired:
			listing.Metadata.Expired++
		}
	}
	return listing, nil
}

func (e *entitlementUC) ListActiveSubscriptions(ctx context.Context, userID string) ([]*EnrichedSubscription, error) {
	now := e.clock()
	e.touchUp(ctx, userID, now)

	subs, err := e.subs.FindActiveByUser(ctx, repository.NoTX, userID, now)
	if err != nil {
		return nil, err
	}
	out := make([]*EnrichedSubscription, 0, len(subs))
	for _, s := range subs {
		if !s.ActiveAt(now) {
			continue
		}
		out = append(out, Enrich(now, s))
	}
	return out, nil
}
