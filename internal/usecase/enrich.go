package usecase

import (
	"math"
	"time"

	"edu-games-subscription/internal/domain/model"
)

// Clock supplies the current time to use cases so tests can pin it.
type Clock func() time.Time

// EnrichedSubscription is a subscription record decorated with the derived
// fields the dashboard renders. DisplayStatus favors derived expiry over the
// persisted status, which may lag behind reconciliation.
type EnrichedSubscription struct {
	ID                string                   `json:"id"`
	UserID            string                   `json:"userId"`
	PlanType          model.PlanType           `json:"planType"`
	Status            model.SubscriptionStatus `json:"status"`
	DisplayStatus     model.SubscriptionStatus `json:"displayStatus"`
	StartDate         time.Time                `json:"startDate"`
	EndDate           time.Time                `json:"endDate"`
	Amount            int64                    `json:"amount"`
	SelectedModule    *string                  `json:"selectedModule,omitempty"`
	RemainingDays     int                      `json:"remainingDays"`
	DaysSincePurchase int                      `json:"daysSincePurchase"`
	IsExpired         bool                     `json:"isExpired"`
	TotalDays         int                      `json:"totalDays"`
	UsagePercentage   int                      `json:"usagePercentage"`
}

// Enrich never fails: a damaged record degrades to fallback values because
// showing it on a dashboard beats a hard error.
func Enrich(now time.Time, s *model.Subscription) *EnrichedSubscription {
	expired := s.ExpiredAt(now)
	display := s.Status
	if expired {
		display = model.SubscriptionStatusExpired
	}

	totalDays := model.DefaultTotalDays
	if spec, ok := s.PlanType.Spec(); ok && spec.DurationDays > 0 {
		totalDays = spec.DurationDays
	}

	elapsed := model.DaysSince(now, s.StartDate)
	usage := int(math.Round(float64(elapsed) / float64(totalDays) * 100))
	if usage > 100 {
		usage = 100
	}

	return &EnrichedSubscription{
		ID:                s.ID,
		UserID:            s.UserID,
		PlanType:          s.PlanType,
		Status:            s.Status,
		DisplayStatus:     display,
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		Amount:            s.Amount,
		SelectedModule:    s.Module(),
		RemainingDays:     model.RemainingDays(now, s.EndDate),
		DaysSincePurchase: elapsed,
		IsExpired:         expired,
		TotalDays:         totalDays,
		UsagePercentage:   usage,
	}
}
