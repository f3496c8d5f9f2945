package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"edu-games-subscription/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

var ErrSignatureMismatch = errors.New("payment signature mismatch")

// RazorpayGateway verifies payment callbacks. The gateway signs
// "<order_id>|<payment_id>" with HMAC-SHA256 under the key secret; a payment
// whose signature does not reproduce is rejected.
type RazorpayGateway struct {
	keyID     string
	keySecret []byte
}

func NewRazorpayGateway(keyID, keySecret string) (*RazorpayGateway, error) {
	if keySecret == "" {
		return nil, errors.New("razorpay key secret empty")
	}
	return &RazorpayGateway{keyID: keyID, keySecret: []byte(keySecret)}, nil
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) VerifySignature(_ context.Context, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureMismatch
	}
	mac := hmac.New(sha256.New, g.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
