package model

import (
	"strings"

	"edu-games-subscription/internal/domain"
)

type PlanType string

const (
	PlanStarter       PlanType = "STARTER"
	PlanSolo          PlanType = "SOLO"
	PlanPro           PlanType = "PRO"
	PlanInstitutional PlanType = "INSTITUTIONAL"
)

// PlanSpec describes one catalog entry: the price in currency units and the
// entitlement window in days. INSTITUTIONAL pricing is negotiated out of band,
// so both fields are zero there.
type PlanSpec struct {
	Amount       int64
	DurationDays int
}

// Catalog is fixed product configuration, not persisted state.
var Catalog = map[PlanType]PlanSpec{
	PlanStarter:       {Amount: 0, DurationDays: 7},
	PlanSolo:          {Amount: 199, DurationDays: 30},
	PlanPro:           {Amount: 1433, DurationDays: 90},
	PlanInstitutional: {Amount: 0, DurationDays: 0},
}

// DefaultTotalDays is the fallback window used by enrichment when a stored
// plan type is not in the catalog (or carries no fixed duration).
const DefaultTotalDays = 30

func (p PlanType) Valid() bool {
	_, ok := Catalog[p]
	return ok
}

// Spec returns the catalog entry for the plan.
func (p PlanType) Spec() (PlanSpec, bool) {
	s, ok := Catalog[p]
	return s, ok
}

// ParsePlanType normalizes and validates a plan type string.
func ParsePlanType(s string) (PlanType, error) {
	p := PlanType(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", domain.ErrInvalidPlanType
	}
	return p, nil
}
