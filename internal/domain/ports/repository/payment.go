package repository

import (
	"context"

	"edu-games-subscription/internal/domain/model"
)

// PaymentRepository is the port for completed-payment records.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	// AttachSubscription links a payment to the subscription it funded. The
	// only mutation permitted on a payment after creation.
	AttachSubscription(ctx context.Context, tx Tx, paymentID, subscriptionID string) error
}
