package payment

import (
	"context"

	"edu-games-subscription/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway accepts every signature. Dev mode only.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (NoopGateway) Name() string { return "noop" }

func (NoopGateway) VerifySignature(context.Context, string, string, string) error { return nil }
