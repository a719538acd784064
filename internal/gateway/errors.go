package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount rejects a reservation before any network call is made.
	ErrInvalidAmount = errors.New("amount must be an integer >= 100 minor units")

	// ErrNotConfigured means the gateway key pair is missing. Operator fault,
	// never reported to the customer as a payment problem.
	ErrNotConfigured = errors.New("payment gateway is not configured")

	// ErrReservationFailed covers network errors, timeouts and gateway-side
	// failures during order creation. The wrapped cause travels with it.
	ErrReservationFailed = errors.New("failed to create payment order")

	// ErrMalformedResponse means a 2xx response without the expected handle
	// fields. Success is never inferred from the HTTP status alone.
	ErrMalformedResponse = errors.New("malformed gateway response")

	// ErrCancelled is the user dismissing the checkout UI without paying.
	// Not a payment failure; callers swallow it silently.
	ErrCancelled = errors.New("payment cancelled by user")
)

// DeclinedError is a hard refusal from the gateway (card declined,
// insufficient funds, ...). Reason is the raw human-readable gateway string.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}
