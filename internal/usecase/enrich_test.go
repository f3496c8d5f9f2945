package usecase_test

import (
	"testing"
	"time"

	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/usecase"
)

func TestEnrich(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("derived expiry overrides a stale ACTIVE status", func(t *testing.T) {
		sub := &model.Subscription{
			ID:        "sub-1",
			UserID:    "user-1",
			PlanType:  model.PlanSolo,
			Status:    model.SubscriptionStatusActive,
			StartDate: now.Add(-40 * 24 * time.Hour),
			EndDate:   now.Add(-10 * 24 * time.Hour),
		}
		es := usecase.Enrich(now, sub)
		if !es.IsExpired {
			t.Error("expected IsExpired = true")
		}
		if es.DisplayStatus != model.SubscriptionStatusExpired {
			t.Errorf("DisplayStatus = %s, want EXPIRED", es.DisplayStatus)
		}
		if es.Status != model.SubscriptionStatusActive {
			t.Errorf("persisted Status = %s, want ACTIVE preserved", es.Status)
		}
		if es.RemainingDays != 0 {
			t.Errorf("RemainingDays = %d, want 0", es.RemainingDays)
		}
	})

	t.Run("bare string notes become the selected module", func(t *testing.T) {
		sub := &model.Subscription{
			ID:        "sub-2",
			PlanType:  model.PlanSolo,
			Status:    model.SubscriptionStatusActive,
			StartDate: now.Add(-24 * time.Hour),
			EndDate:   now.Add(29 * 24 * time.Hour),
			Notes:     "finance",
		}
		es := usecase.Enrich(now, sub)
		if es.SelectedModule == nil || *es.SelectedModule != "finance" {
			t.Errorf("SelectedModule = %v, want finance", es.SelectedModule)
		}
	})

	t.Run("unrecognized plan defaults to a 30 day window", func(t *testing.T) {
		sub := &model.Subscription{
			ID:        "sub-3",
			PlanType:  model.PlanType("LEGACY"),
			Status:    model.SubscriptionStatusActive,
			StartDate: now.Add(-15 * 24 * time.Hour),
			EndDate:   now.Add(15 * 24 * time.Hour),
		}
		es := usecase.Enrich(now, sub)
		if es.TotalDays != 30 {
			t.Errorf("TotalDays = %d, want 30", es.TotalDays)
		}
		if es.UsagePercentage != 50 {
			t.Errorf("UsagePercentage = %d, want 50", es.UsagePercentage)
		}
	})

	t.Run("usage percentage caps at 100", func(t *testing.T) {
		sub := &model.Subscription{
			ID:        "sub-4",
			PlanType:  model.PlanStarter,
			Status:    model.SubscriptionStatusExpired,
			StartDate: now.Add(-100 * 24 * time.Hour),
			EndDate:   now.Add(-93 * 24 * time.Hour),
		}
		es := usecase.Enrich(now, sub)
		if es.UsagePercentage != 100 {
			t.Errorf("UsagePercentage = %d, want 100", es.UsagePercentage)
		}
	})

	t.Run("fresh PRO subscription", func(t *testing.T) {
		sub := &model.Subscription{
			ID:        "sub-5",
			PlanType:  model.PlanPro,
			Status:    model.SubscriptionStatusActive,
			StartDate: now,
			EndDate:   now.Add(90 * 24 * time.Hour),
		}
		es := usecase.Enrich(now, sub)
		if es.RemainingDays != 90 {
			t.Errorf("RemainingDays = %d, want 90", es.RemainingDays)
		}
		if es.TotalDays != 90 {
			t.Errorf("TotalDays = %d, want 90", es.TotalDays)
		}
		if es.UsagePercentage != 0 {
			t.Errorf("UsagePercentage = %d, want 0", es.UsagePercentage)
		}
	})
}
