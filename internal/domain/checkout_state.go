package domain

type CheckoutState string

const (
	CheckoutStateIdle            CheckoutState = "IDLE"
	CheckoutStateReserving       CheckoutState = "RESERVING"
	CheckoutStateAwaitingGateway CheckoutState = "AWAITING_GATEWAY"
	CheckoutStateVerifying       CheckoutState = "VERIFYING"
	CheckoutStateCommitted       CheckoutState = "COMMITTED"
	CheckoutStateFailed          CheckoutState = "FAILED"
)

// validTransitions holds every legal edge of the checkout state machine.
// Cancellation is the AWAITING_GATEWAY -> IDLE edge; there is no FAILED
// state for a user dismissal.
var validTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:            {CheckoutStateReserving},
	CheckoutStateReserving:       {CheckoutStateAwaitingGateway, CheckoutStateFailed},
	CheckoutStateAwaitingGateway: {CheckoutStateVerifying, CheckoutStateIdle, CheckoutStateFailed},
	CheckoutStateVerifying:       {CheckoutStateCommitted, CheckoutStateFailed},
}

func CanTransitionTo(from, to CheckoutState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCommitted || s == CheckoutStateFailed
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
