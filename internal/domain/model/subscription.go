package model

import (
	"encoding/json"
	"strings"
	"time"

	"edu-games-subscription/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription represents one purchased entitlement window.
//
// The persisted Status is a cache: reconciliation runs on a cadence and may
// lag real time, so consumers must derive "actually expired" from EndDate
// rather than trusting Status alone.
type Subscription struct {
	ID             string // ULID
	UserID         string
	PlanType       PlanType
	Status         SubscriptionStatus
	StartDate      time.Time
	EndDate        time.Time
	Amount         int64 // amount actually paid, post-discount
	SelectedModule *string
	Notes          string // legacy side channel; may hold {"selectedModule":...}
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSubscription creates an active subscription starting now, with the
// window taken from the plan catalog. Plans without a fixed catalog duration
// (INSTITUTIONAL) need NewSubscriptionWithWindow instead.
func NewSubscription(id, userID string, plan PlanType, amount int64, selectedModule *string, now time.Time) (*Subscription, error) {
	spec, ok := plan.Spec()
	if !ok {
		return nil, domain.ErrInvalidPlanType
	}
	if spec.DurationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	end := now.Add(time.Duration(spec.DurationDays) * 24 * time.Hour)
	return NewSubscriptionWithWindow(id, userID, plan, amount, selectedModule, now, end)
}

// NewSubscriptionWithWindow creates an active subscription with an explicit
// entitlement window.
func NewSubscriptionWithWindow(id, userID string, plan PlanType, amount int64, selectedModule *string, start, end time.Time) (*Subscription, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !plan.Valid() {
		return nil, domain.ErrInvalidPlanType
	}
	if !end.After(start) {
		return nil, domain.ErrInvalidDateRange
	}
	return &Subscription{
		ID:             id,
		UserID:         userID,
		PlanType:       plan,
		Status:         SubscriptionStatusActive,
		StartDate:      start,
		EndDate:        end,
		Amount:         amount,
		SelectedModule: selectedModule,
		CreatedAt:      start,
		UpdatedAt:      start,
	}, nil
}

// Module returns the subject module this subscription is scoped to.
// The structured field wins; rows written by the old system carry the module
// in Notes, either as JSON {"selectedModule": "..."} or as a bare string.
// A bare string is taken as the module name directly rather than erroring.
func (s *Subscription) Module() *string {
	if s.SelectedModule != nil && *s.SelectedModule != "" {
		return s.SelectedModule
	}
	notes := strings.TrimSpace(s.Notes)
	if notes == "" {
		return nil
	}
	var payload struct {
		SelectedModule string `json:"selectedModule"`
	}
	if err := json.Unmarshal([]byte(notes), &payload); err == nil && payload.SelectedModule != "" {
		return &payload.SelectedModule
	}
	return &notes
}

// ExpiredAt derives expiry from the window, independent of Status.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return IsExpired(now, s.EndDate)
}

// ActiveAt reports a usable entitlement: persisted ACTIVE and not past EndDate.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && !s.ExpiredAt(now)
}

// CanTransition validates the status state machine:
// ACTIVE -> EXPIRED (reconciler), ACTIVE -> CANCELLED (upgrade cascade),
// EXPIRED/CANCELLED -> ACTIVE (admin extension). Same-status transitions are
// permitted so repeated updates stay idempotent.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case SubscriptionStatusActive:
		return to == SubscriptionStatusExpired || to == SubscriptionStatusCancelled
	case SubscriptionStatusExpired, SubscriptionStatusCancelled:
		return to == SubscriptionStatusActive
	default:
		return false
	}
}
