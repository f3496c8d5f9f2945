package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// UpgradeQuote is the pricing breakdown for a plan purchase.
type UpgradeQuote struct {
	PlanType       model.PlanType `json:"planType"`
	Amount         int64          `json:"amount"`
	OriginalAmount int64          `json:"originalAmount"`
	Discount       int64          `json:"discount"`
	SourceCount    int            `json:"sourceCount"`
	SavingsMessage string         `json:"savingsMessage,omitempty"`
}

type PricingUseCase interface {
	// ComputeUpgradePrice quotes the price for buying target. Only SOLO->PRO
	// carries a discount: each currently active SOLO credits its full price
	// against the PRO bundle, flooring at zero. The quote reads a snapshot,
	// not a lock — a SOLO expiring between quote and purchase is an accepted
	// race.
	ComputeUpgradePrice(ctx context.Context, userID string, target model.PlanType) (*UpgradeQuote, error)
}

type pricingUC struct {
	subs  repository.SubscriptionRepository
	clock Clock
	log   *zerolog.Logger
}

func NewPricingUseCase(subs repository.SubscriptionRepository, clock Clock, logger *zerolog.Logger) *pricingUC {
	if clock == nil {
		clock = time.Now
	}
	l := logger.With().Str("component", "PricingUC").Logger()
	return &pricingUC{subs: subs, clock: clock, log: &l}
}

func (p *pricingUC) ComputeUpgradePrice(ctx context.Context, userID string, target model.PlanType) (*UpgradeQuote, error) {
	spec, ok := target.Spec()
	if !ok {
		return nil, domain.ErrInvalidPlanType
	}

	quote := &UpgradeQuote{
		PlanType:       target,
		Amount:         spec.Amount,
		OriginalAmount: spec.Amount,
	}
	if target != model.PlanPro {
		return quote, nil
	}

	now := p.clock()
	solos, err := p.subs.FindActiveByUserAndPlan(ctx, repository.NoTX, userID, model.PlanSolo, now)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, s := range solos {
		if s.ActiveAt(now) {
			n++
		}
	}
	if n == 0 {
		return quote, nil
	}

	soloSpec, _ := model.PlanSolo.Spec()
	discount := int64(n) * soloSpec.Amount
	amount := spec.Amount - discount
	if amount < 0 {
		amount = 0
	}
	quote.Amount = amount
	quote.Discount = discount
	quote.SourceCount = n
	quote.SavingsMessage = fmt.Sprintf("Credited %d for %d active SOLO plan(s) toward PRO", discount, n)

	p.log.Debug().
		Str("user_id", userID).
		Int("solo_count", n).
		Int64("discount", discount).
		Int64("amount", amount).
		Msg("upgrade price computed")
	return quote, nil
}
