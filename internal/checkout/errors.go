package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrPreconditionNotMet means the shipping form is invalid or the cart is
	// empty. No network call has been made.
	ErrPreconditionNotMet = errors.New("checkout preconditions not met")

	// ErrAlreadyInProgress rejects a second submission while an attempt is in
	// flight, so repeated clicks cannot create duplicate reservations.
	ErrAlreadyInProgress = errors.New("a checkout is already in progress")
)

// FailureReason classifies how a checkout attempt failed.
type FailureReason string

const (
	ReasonReservationFailed  FailureReason = "RESERVATION_FAILED"
	ReasonGatewayDeclined    FailureReason = "GATEWAY_DECLINED"
	ReasonVerificationFailed FailureReason = "VERIFICATION_FAILED"
	ReasonNotConfigured      FailureReason = "NOT_CONFIGURED"
	ReasonNetwork            FailureReason = "NETWORK"
)

// Failure is a classified terminal checkout error. The cart is always left
// intact when one of these surfaces, so the user can retry without
// re-entering shipping details.
type Failure struct {
	Reason FailureReason
	Cause  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("checkout failed (%s): %v", f.Reason, f.Cause)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Message returns the human-readable text shown to the customer. Raw gateway
// strings are never surfaced verbatim.
func (f *Failure) Message() string {
	return friendlyMessage(f.Reason, f.Cause)
}
