package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
	"edu-games-subscription/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileDetail is the per-subscription audit record a reconciliation run
// emits for downstream logging or notification.
type ReconcileDetail struct {
	SubscriptionID string         `json:"subscriptionId"`
	UserID         string         `json:"userId"`
	PlanType       model.PlanType `json:"planType"`
	EndDate        time.Time      `json:"endDate"`
	SelectedModule *string        `json:"selectedModule,omitempty"`
}

type ReconcileResult struct {
	ExpiredCount int               `json:"expiredCount"`
	UpdatedCount int               `json:"updatedCount"`
	Details      []ReconcileDetail `json:"details"`
	CheckedAt    time.Time         `json:"checkedAt"`
}

// ReconcileUseCase aligns persisted subscription status with time-based
// expiry. It only ever flips status — progress/performance data tied to an
// expired subscription stays untouched, since expiry is reversible by an
// admin extension. Re-running with the same or a later now reconverges
// without double-counting.
type ReconcileUseCase interface {
	Reconcile(ctx context.Context, now time.Time) (*ReconcileResult, error)
	// ReconcileUser flips only one user's stale rows; used on the read path
	// to bridge the gap between scheduled runs and real time.
	ReconcileUser(ctx context.Context, userID string, now time.Time) (int, error)
}

type reconcileUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewReconcileUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *reconcileUC {
	l := logger.With().Str("component", "ReconcileUC").Logger()
	return &reconcileUC{subs: subs, log: &l}
}

func (r *reconcileUC) Reconcile(ctx context.Context, now time.Time) (*ReconcileResult, error) {
	res := &ReconcileResult{CheckedAt: now}

	candidates, err := r.subs.FindExpiredCandidates(ctx, repository.NoTX, now)
	if err != nil {
		metrics.IncReconcileRuns("error")
		return nil, err
	}
	if len(candidates) == 0 {
		metrics.IncReconcileRuns("ok")
		return res, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
		res.Details = append(res.Details, ReconcileDetail{
			SubscriptionID: c.ID,
			UserID:         c.UserID,
			PlanType:       c.PlanType,
			EndDate:        c.EndDate,
			SelectedModule: c.Module(),
		})
	}

	updated, err := r.subs.BulkUpdateStatus(ctx, repository.NoTX, ids, model.SubscriptionStatusExpired)
	if err != nil {
		metrics.IncReconcileRuns("error")
		return nil, err
	}

	res.ExpiredCount = len(candidates)
	res.UpdatedCount = updated
	metrics.IncReconcileRuns("ok")
	metrics.IncSubscriptionsExpired(updated)
	for _, d := range res.Details {
		r.log.Info().
			Str("subscription_id", d.SubscriptionID).
			Str("user_id", d.UserID).
			Str("plan", string(d.PlanType)).
			Time("end_date", d.EndDate).
			Msg("subscription expired")
	}
	return res, nil
}

func (r *reconcileUC) ReconcileUser(ctx context.Context, userID string, now time.Time) (int, error) {
	subs, err := r.subs.FindByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, s := range subs {
		if s.Status == model.SubscriptionStatusActive && s.ExpiredAt(now) {
			ids = append(ids, s.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	updated, err := r.subs.BulkUpdateStatus(ctx, repository.NoTX, ids, model.SubscriptionStatusExpired)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		metrics.IncSubscriptionsExpired(updated)
	}
	return updated, nil
}
