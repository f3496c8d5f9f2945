package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
	"edu-games-subscription/internal/usecase"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)

	staleActive := func(id, userID string) *model.Subscription {
		return &model.Subscription{
			ID:             id,
			UserID:         userID,
			PlanType:       model.PlanSolo,
			Status:         model.SubscriptionStatusActive,
			StartDate:      now.Add(-31 * 24 * time.Hour),
			EndDate:        now.Add(-24 * time.Hour),
			SelectedModule: strPtr("math-blaster"),
		}
	}

	t.Run("flips stale ACTIVE rows to EXPIRED", func(t *testing.T) {
		repo := newMemSubRepo()
		repo.put(staleActive("s1", "user-1"))
		repo.put(staleActive("s2", "user-2"))
		repo.put(&model.Subscription{ // still inside its window, must be untouched
			ID: "s3", UserID: "user-3", PlanType: model.PlanPro,
			Status:    model.SubscriptionStatusActive,
			StartDate: now.Add(-24 * time.Hour),
			EndDate:   now.Add(80 * 24 * time.Hour),
		})
		uc := usecase.NewReconcileUseCase(repo, newTestLogger())

		res, err := uc.Reconcile(ctx, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ExpiredCount != 2 || res.UpdatedCount != 2 {
			t.Errorf("result = %d/%d, want 2/2", res.ExpiredCount, res.UpdatedCount)
		}
		if len(res.Details) != 2 {
			t.Fatalf("len(Details) = %d, want 2", len(res.Details))
		}
		for _, d := range res.Details {
			if d.SelectedModule == nil || *d.SelectedModule != "math-blaster" {
				t.Errorf("detail %s missing selected module", d.SubscriptionID)
			}
		}
		if got := repo.get("s1").Status; got != model.SubscriptionStatusExpired {
			t.Errorf("s1 status = %s, want EXPIRED", got)
		}
		if got := repo.get("s3").Status; got != model.SubscriptionStatusActive {
			t.Errorf("s3 status = %s, want ACTIVE", got)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		repo := newMemSubRepo()
		repo.put(staleActive("s1", "user-1"))
		uc := usecase.NewReconcileUseCase(repo, newTestLogger())

		if _, err := uc.Reconcile(ctx, now); err != nil {
			t.Fatalf("first run: %v", err)
		}
		res, err := uc.Reconcile(ctx, now.Add(time.Hour))
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if res.ExpiredCount != 0 || res.UpdatedCount != 0 {
			t.Errorf("second run = %d/%d, want 0/0", res.ExpiredCount, res.UpdatedCount)
		}
	})

	t.Run("empty candidate set yields zero result", func(t *testing.T) {
		uc := usecase.NewReconcileUseCase(newMemSubRepo(), newTestLogger())
		res, err := uc.Reconcile(ctx, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.UpdatedCount != 0 || len(res.Details) != 0 {
			t.Errorf("result = %+v, want empty", res)
		}
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		repo := newMemSubRepo()
		repo.FindExpiredCandidatesFunc = func(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
			return nil, domain.ErrStoreUnavailable
		}
		uc := usecase.NewReconcileUseCase(repo, newTestLogger())
		if _, err := uc.Reconcile(ctx, now); !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Errorf("err = %v, want ErrStoreUnavailable", err)
		}
	})
}

func TestReconcileUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := newMemSubRepo()
	repo.put(&model.Subscription{
		ID: "stale", UserID: "user-1", PlanType: model.PlanSolo,
		Status:    model.SubscriptionStatusActive,
		StartDate: now.Add(-40 * 24 * time.Hour),
		EndDate:   now.Add(-10 * 24 * time.Hour),
	})
	repo.put(&model.Subscription{
		ID: "fresh", UserID: "user-1", PlanType: model.PlanPro,
		Status:    model.SubscriptionStatusActive,
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(89 * 24 * time.Hour),
	})
	repo.put(&model.Subscription{ // other user, also stale, must not be touched
		ID: "other", UserID: "user-2", PlanType: model.PlanSolo,
		Status:    model.SubscriptionStatusActive,
		StartDate: now.Add(-40 * 24 * time.Hour),
		EndDate:   now.Add(-10 * 24 * time.Hour),
	})
	uc := usecase.NewReconcileUseCase(repo, newTestLogger())

	updated, err := uc.ReconcileUser(ctx, "user-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}
	if got := repo.get("stale").Status; got != model.SubscriptionStatusExpired {
		t.Errorf("stale status = %s, want EXPIRED", got)
	}
	if got := repo.get("fresh").Status; got != model.SubscriptionStatusActive {
		t.Errorf("fresh status = %s, want ACTIVE", got)
	}
	if got := repo.get("other").Status; got != model.SubscriptionStatusActive {
		t.Errorf("other user's row touched, status = %s", got)
	}
}
