package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRef links a ledger order to the gateway charge that paid for it.
type PaymentRef struct {
	GatewayPaymentID string `json:"gateway_payment_id" bson:"gateway_payment_id"`
	Method           string `json:"method" bson:"method"`
}

// Order is one confirmed purchase. Created exactly once, when verification
// succeeds; never mutated or deleted afterwards.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []LineItem      `json:"items"`
	Subtotal  int64           `json:"subtotal"`
	Currency  string          `json:"currency"`
	Shipping  ShippingDetails `json:"shipping"`
	Payment   PaymentRef      `json:"payment"`
	CreatedAt time.Time       `json:"created_at"`
}
