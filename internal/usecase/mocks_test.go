package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"edu-games-subscription/internal/domain"
	"edu-games-subscription/internal/domain/model"
	"edu-games-subscription/internal/domain/ports/repository"
	"edu-games-subscription/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedClock(t time.Time) usecase.Clock {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

// memSubRepo is a small in-memory SubscriptionRepository for unit tests.
// Individual methods can be overridden through the Func fields to simulate
// store failures.
type memSubRepo struct {
	mu   sync.RWMutex
	subs map[string]*model.Subscription

	CreateFunc                func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindExpiredCandidatesFunc func(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error)
	BulkUpdateStatusFunc      func(ctx context.Context, tx repository.Tx, ids []string, status model.SubscriptionStatus) (int, error)
	UpdateStatusFunc          func(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus) error
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{subs: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) put(s *model.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.ID] = &cp
}

func (m *memSubRepo) get(id string) *model.Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[id]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (m *memSubRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, s)
	}
	if !s.PlanType.Valid() {
		return domain.ErrInvalidPlanType
	}
	if !s.EndDate.After(s.StartDate) {
		return domain.ErrInvalidDateRange
	}
	m.put(s)
	return nil
}

func (m *memSubRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if s := m.get(id); s != nil {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memSubRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive && s.EndDate.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) FindActiveByUserAndPlan(ctx context.Context, tx repository.Tx, userID string, plan model.PlanType, now time.Time) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && s.PlanType == plan && s.Status == model.SubscriptionStatusActive && s.EndDate.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) FindExpiredCandidates(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Subscription, error) {
	if m.FindExpiredCandidatesFunc != nil {
		return m.FindExpiredCandidatesFunc(ctx, tx, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && s.EndDate.Before(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *memSubRepo) ExtendEndDate(ctx context.Context, tx repository.Tx, id string, newEnd time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.EndDate = newEnd
	s.Status = model.SubscriptionStatusActive
	return nil
}

func (m *memSubRepo) BulkUpdateStatus(ctx context.Context, tx repository.Tx, ids []string, status model.SubscriptionStatus) (int, error) {
	if m.BulkUpdateStatusFunc != nil {
		return m.BulkUpdateStatusFunc(ctx, tx, ids, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	updated := 0
	for _, id := range ids {
		s, ok := m.subs[id]
		if !ok || s.Status == status {
			continue
		}
		s.Status = status
		updated++
	}
	return updated, nil
}

// memPaymentRepo is an in-memory PaymentRepository.
type memPaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) AttachSubscription(ctx context.Context, tx repository.Tx, paymentID, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	p.SubscriptionID = &subscriptionID
	return nil
}

// memProgressRepo records deletions so tests can assert on the cascade.
type memProgressRepo struct {
	mu      sync.Mutex
	deleted [][2]string // (userID, module)
}

func newMemProgressRepo() *memProgressRepo { return &memProgressRepo{} }

func (m *memProgressRepo) DeleteModuleProgress(ctx context.Context, tx repository.Tx, userID, module string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, [2]string{userID, module})
	return 1, nil
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct{}

func newMockTxManager() *mockTxManager { return &mockTxManager{} }

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// mockGateway accepts everything unless VerifyFunc is set.
type mockGateway struct {
	VerifyFunc func(ctx context.Context, orderID, paymentID, signature string) error
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) VerifySignature(ctx context.Context, orderID, paymentID, signature string) error {
	if g.VerifyFunc != nil {
		return g.VerifyFunc(ctx, orderID, paymentID, signature)
	}
	return nil
}
