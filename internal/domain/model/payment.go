package model

import "time"

// Payment is the immutable record of one completed transaction. Only verified
// payments are persisted; the pending/order phase lives entirely in the
// external gateway. The single permitted mutation after creation is attaching
// the subscription the payment funded.
type Payment struct {
	ID             string // UUID
	UserID         string
	PlanType       PlanType
	Amount         int64  // amount actually charged, post-discount
	Currency       string // e.g. "INR"
	OrderID        string // gateway order id
	PaymentRef     string // gateway payment id
	SubscriptionID *string
	CreatedAt      time.Time
}
