package adapter

import "context"

// PaymentGateway is the opaque payment collaborator. Order creation and
// checkout happen entirely on the gateway's side; this service only verifies
// that a reported payment is genuine before recording it.
type PaymentGateway interface {
	Name() string
	// VerifySignature checks the gateway's signature over an (order, payment)
	// pair. A non-nil error means the payment must not be recorded.
	VerifySignature(ctx context.Context, orderID, paymentID, signature string) error
}
