package domain

import "time"

// OrderReservation is the gateway-issued handle binding an amount to a single
// future payment attempt. Immutable once issued; never reused after a failed
// or abandoned attempt.
type OrderReservation struct {
	GatewayOrderID string    `json:"gateway_order_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentAttempt is the successful outcome of one gateway interaction.
// It stays ephemeral until the signature has been verified server-side.
type PaymentAttempt struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// Customer is the prefill info passed to the gateway with a reservation.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
