package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/adapter"
	"edu-games-subscription/internal/domain/ports/repository"
	"edu-games-subscription/internal/infra/logging"
	"edu-games-subscription/internal/infra/metrics"
)

// Compile-time check
var _ PurchaseUseCase = (*purchaseUC)(nil)

// PurchaseRequest carries the gateway callback payload after the user
// completed checkout on the gateway's side.
type PurchaseRequest struct {
	UserID         string
	PlanType       model.PlanType
	OrderID        string
	PaymentID      string
	Signature      string
	SelectedModule *string
	// EndDate is required for INSTITUTIONAL, whose window is negotiated out
	// of band; ignored for catalog-priced plans.
	EndDate *time.Time
}

type PurchaseResult struct {
	Subscription *EnrichedSubscription `json:"subscription"`
	Pricing      *UpgradeQuote         `json:"pricing"`
	PaymentID    string                `json:"paymentId"`
	Cancelled    int                   `json:"cancelledSubscriptions"`
}

// PurchaseUseCase records a gateway-verified payment: verifies the signature,
// prices the purchase (upgrade discount included), applies the upgrade
// cascade, and writes subscription + payment in one transaction.
type PurchaseUseCase interface {
	RecordVerifiedPayment(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
}

type purchaseUC struct {
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	progress repository.ProgressRepository
	pricing  PricingUseCase
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	clock    Clock
	log      *zerolog.Logger
}

func NewPurchaseUseCase(
	subs repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	progress repository.ProgressRepository,
	pricing PricingUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	clock Clock,
	logger *zerolog.Logger,
) *purchaseUC {
	if clock == nil {
		clock = time.Now
	}
	l := logger.With().Str("component", "PurchaseUC").Logger()
	return &purchaseUC{
		subs:     subs,
		payments: payments,
		progress: progress,
		pricing:  pricing,
		gateway:  gateway,
		tm:       tm,
		clock:    clock,
		log:      &l,
	}
}

func (u *purchaseUC) RecordVerifiedPayment(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	defer logging.TraceDuration(u.log, "PurchaseUC.RecordVerifiedPayment")()

	if req.UserID == "" || req.OrderID == "" || req.PaymentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !req.PlanType.Valid() {
		return nil, domain.ErrInvalidPlanType
	}
	if err := u.gateway.VerifySignature(ctx, req.OrderID, req.PaymentID, req.Signature); err != nil {
		u.log.Warn().Err(err).
			Str("order_id", req.OrderID).
			Str("gateway", u.gateway.Name()).
			Msg("gateway signature rejected")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	// Price against the current snapshot. The active-SOLO set is re-read
	// inside the transaction for the cascade, but the quoted discount is not
	// re-checked against it: a SOLO expiring in between is an accepted race.
	quote, err := u.pricing.ComputeUpgradePrice(ctx, req.UserID, req.PlanType)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	res := &PurchaseResult{Pricing: quote}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if req.PlanType == model.PlanPro {
			cancelled, err := u.cascade(ctx, tx, req.UserID, now)
			if err != nil {
				return err
			}
			res.Cancelled = cancelled
		}

		sub, err := u.upsertSubscription(ctx, tx, req, quote.Amount, now)
		if err != nil {
			return err
		}
		res.Subscription = Enrich(now, sub)

		p := &model.Payment{
			ID:         uuid.NewString(),
			UserID:     req.UserID,
			PlanType:   req.PlanType,
			Amount:     quote.Amount,
			Currency:   "INR",
			OrderID:    req.OrderID,
			PaymentRef: req.PaymentID,
			CreatedAt:  now,
		}
		if err := u.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		if err := u.payments.AttachSubscription(ctx, tx, p.ID, sub.ID); err != nil {
			return err
		}
		res.PaymentID = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPaymentsVerified(string(req.PlanType))
	if res.Cancelled > 0 {
		metrics.IncUpgradeCascadeCancelled(res.Cancelled)
	}
	u.log.Info().
		Str("user_id", req.UserID).
		Str("plan", string(req.PlanType)).
		Int64("amount", quote.Amount).
		Int64("discount", quote.Discount).
		Int("cancelled", res.Cancelled).
		Msg("payment recorded")
	return res, nil
}

// cascade cancels the user's active SOLO subscriptions superseded by a PRO
// purchase and wipes their module-scoped progress. CANCELLED, not EXPIRED:
// the plan was traded in, time did not run out. This is the one path allowed
// to delete progress data.
func (u *purchaseUC) cascade(ctx context.Context, tx repository.Tx, userID string, now time.Time) (int, error) {
	solos, err := u.subs.FindActiveByUserAndPlan(ctx, tx, userID, model.PlanSolo, now)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, s := range solos {
		if !s.ActiveAt(now) {
			continue
		}
		if err := u.subs.UpdateStatus(ctx, tx, s.ID, model.SubscriptionStatusCancelled); err != nil {
			return cancelled, err
		}
		cancelled++
		if mod := s.Module(); mod != nil {
			n, err := u.progress.DeleteModuleProgress(ctx, tx, userID, *mod)
			if err != nil {
				return cancelled, err
			}
			u.log.Info().
				Str("user_id", userID).
				Str("module", *mod).
				Int("progress_rows", n).
				Msg("module progress folded into upgrade")
		}
	}
	return cancelled, nil
}

// upsertSubscription applies the per-plan creation rule: SOLO always gets a
// fresh row (one per module), PRO and INSTITUTIONAL extend an existing active
// row of the same plan when present.
func (u *purchaseUC) upsertSubscription(ctx context.Context, tx repository.Tx, req PurchaseRequest, amount int64, now time.Time) (*model.Subscription, error) {
	if req.PlanType != model.PlanSolo {
		existing, err := u.subs.FindActiveByUserAndPlan(ctx, tx, req.UserID, req.PlanType, now)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			cur := existing[0]
			newEnd, err := u.extendedEnd(cur, req, now)
			if err != nil {
				return nil, err
			}
			if err := u.subs.ExtendEndDate(ctx, tx, cur.ID, newEnd); err != nil {
				return nil, err
			}
			cur.EndDate = newEnd
			cur.Status = model.SubscriptionStatusActive
			return cur, nil
		}
	}

	if req.PlanType == model.PlanInstitutional {
		if req.EndDate == nil {
			return nil, domain.ErrInvalidArgument
		}
		sub, err := model.NewSubscriptionWithWindow(ulid.Make().String(), req.UserID, req.PlanType, amount, req.SelectedModule, now, *req.EndDate)
		if err != nil {
			return nil, err
		}
		return sub, u.subs.Create(ctx, tx, sub)
	}

	sub, err := model.NewSubscription(ulid.Make().String(), req.UserID, req.PlanType, amount, req.SelectedModule, now)
	if err != nil {
		return nil, err
	}
	return sub, u.subs.Create(ctx, tx, sub)
}

func (u *purchaseUC) extendedEnd(cur *model.Subscription, req PurchaseRequest, now time.Time) (time.Time, error) {
	if req.PlanType == model.PlanInstitutional {
		if req.EndDate == nil {
			return time.Time{}, domain.ErrInvalidArgument
		}
		return *req.EndDate, nil
	}
	spec, _ := req.PlanType.Spec()
	base := cur.EndDate
	if base.Before(now) {
		base = now
	}
	return base.Add(time.Duration(spec.DurationDays) * 24 * time.Hour), nil
}
