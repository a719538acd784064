package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/audit"
	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/dbhayani01/sahumario-app/internal/gateway"
	"github.com/dbhayani01/sahumario-app/internal/verify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const paymentMethod = "razorpay"

type Reserver interface {
	Reserve(ctx context.Context, amount int64, currency string, customer domain.Customer, notes map[string]string) (*domain.OrderReservation, error)
}

type Collector interface {
	Collect(ctx context.Context, reservation domain.OrderReservation, prefill gateway.Prefill) (domain.PaymentAttempt, error)
}

type PaymentVerifier interface {
	Verify(orderID, paymentID, signature string) (bool, error)
}

type CartAccess interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type Ledger interface {
	Append(ctx context.Context, order *domain.Order) error
}

// Result is the outcome of one checkout submission. Exactly one of Order and
// Cancelled is meaningful; a dismissal is not an error and produces no banner.
type Result struct {
	Order     *domain.Order
	Cancelled bool
}

// Orchestrator drives one user's checkout through
// Idle -> Reserving -> AwaitingGateway -> Verifying -> Committed, with
// classified failure exits and a silent return to Idle on dismissal. A second
// submission while any non-terminal work is in flight is rejected, never
// queued.
type Orchestrator struct {
	cart      CartAccess
	reserver  Reserver
	collector Collector
	verifier  PaymentVerifier
	ledger    Ledger
	audit     *audit.Logger
	currency  string

	mu    sync.Mutex
	state domain.CheckoutState
}

func NewOrchestrator(cart CartAccess, reserver Reserver, collector Collector, verifier PaymentVerifier, ledger Ledger, auditLog *audit.Logger) *Orchestrator {
	return &Orchestrator{
		cart:      cart,
		reserver:  reserver,
		collector: collector,
		verifier:  verifier,
		ledger:    ledger,
		audit:     auditLog,
		currency:  "INR",
		state:     domain.CheckoutStateIdle,
	}
}

func (o *Orchestrator) State() domain.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit runs the full checkout flow for the user's current cart. The cart
// amount is snapshotted before the reservation, so mutations made while the
// gateway UI is open cannot desynchronize the authorized amount.
func (o *Orchestrator) Submit(ctx context.Context, userID string, shipping domain.ShippingDetails) (*Result, error) {
	return o.SubmitWithNotify(ctx, userID, shipping, nil)
}

// SubmitWithNotify is Submit with a hook fired once the flow reaches
// AwaitingGateway, carrying the reservation the checkout UI must open with.
func (o *Orchestrator) SubmitWithNotify(ctx context.Context, userID string, shipping domain.ShippingDetails, onAwaiting func(domain.OrderReservation)) (*Result, error) {
	if err := shipping.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPreconditionNotMet, err)
	}

	snapshot, err := o.cart.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", ErrPreconditionNotMet)
	}

	if err := o.begin(); err != nil {
		return nil, err
	}

	amount := snapshot.Subtotal()
	items := append([]domain.LineItem(nil), snapshot.Items...)

	o.audit.Info("INITIATED", logrus.Fields{
		"user_id": userID,
		"amount":  amount,
	})

	customer := domain.Customer{Name: shipping.Name, Phone: shipping.Phone, Email: shipping.Email}
	notes := map[string]string{
		"address":      shipping.AddressLine(),
		"instructions": shipping.Notes,
	}

	reservation, err := o.reserver.Reserve(ctx, amount, o.currency, customer, notes)
	if err != nil {
		return nil, o.fail(classifyReservationError(err))
	}

	o.transition(domain.CheckoutStateAwaitingGateway)
	o.audit.Info("ORDER_CREATED", logrus.Fields{
		"user_id":          userID,
		"gateway_order_id": reservation.GatewayOrderID,
		"amount":           reservation.Amount,
	})
	if onAwaiting != nil {
		onAwaiting(*reservation)
	}

	attempt, err := o.collector.Collect(ctx, *reservation, gateway.Prefill{Customer: customer})
	if err != nil {
		if errors.Is(err, gateway.ErrCancelled) {
			// Not an error: back to Idle, cart and form untouched. The
			// reservation is abandoned; the next submission reserves afresh.
			o.transition(domain.CheckoutStateIdle)
			o.audit.Info("CANCELLED", logrus.Fields{
				"user_id":          userID,
				"gateway_order_id": reservation.GatewayOrderID,
			})
			return &Result{Cancelled: true}, nil
		}

		var declined *gateway.DeclinedError
		if errors.As(err, &declined) {
			return nil, o.fail(&Failure{Reason: ReasonGatewayDeclined, Cause: err})
		}
		return nil, o.fail(&Failure{Reason: ReasonNetwork, Cause: err})
	}

	o.transition(domain.CheckoutStateVerifying)

	verified, err := o.verifier.Verify(attempt.GatewayOrderID, attempt.GatewayPaymentID, attempt.Signature)
	if err != nil {
		if errors.Is(err, verify.ErrNotConfigured) {
			return nil, o.fail(&Failure{Reason: ReasonNotConfigured, Cause: err})
		}
		return nil, o.fail(&Failure{Reason: ReasonVerificationFailed, Cause: err})
	}
	if !verified {
		// Tampering or a client/gateway desync, not routine user error.
		// The cart is deliberately kept: no charge-to-fulfillment binding
		// exists for this attempt.
		o.audit.Warn("VERIFICATION_MISMATCH", logrus.Fields{
			"user_id":            userID,
			"gateway_order_id":   attempt.GatewayOrderID,
			"gateway_payment_id": attempt.GatewayPaymentID,
		})
		return nil, o.fail(&Failure{Reason: ReasonVerificationFailed, Cause: errors.New("signature mismatch")})
	}

	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Items:    items,
		Subtotal: amount,
		Currency: reservation.Currency,
		Shipping: shipping,
		Payment: domain.PaymentRef{
			GatewayPaymentID: attempt.GatewayPaymentID,
			Method:           paymentMethod,
		},
		CreatedAt: time.Now(),
	}

	// Ledger append then cart clear. Neither failure blocks the commit: the
	// charge is verified, so the customer sees success either way and the
	// problem goes to the audit trail for reconciliation.
	if err := o.ledger.Append(ctx, order); err != nil {
		o.audit.Error("LEDGER_APPEND_FAILED", logrus.Fields{
			"user_id":  userID,
			"order_id": order.ID.String(),
			"error":    err.Error(),
		})
	}
	if err := o.cart.Clear(ctx, userID); err != nil {
		o.audit.Error("CART_CLEAR_FAILED", logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	o.transition(domain.CheckoutStateCommitted)
	o.audit.Info("COMMITTED", logrus.Fields{
		"user_id":            userID,
		"order_id":           order.ID.String(),
		"gateway_payment_id": attempt.GatewayPaymentID,
		"subtotal":           amount,
	})

	return &Result{Order: order}, nil
}

// begin moves Idle -> Reserving, resetting a terminal state first. Any other
// in-flight state rejects the submission.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.IsTerminal() {
		o.state = domain.CheckoutStateIdle
	}
	if o.state != domain.CheckoutStateIdle {
		return ErrAlreadyInProgress
	}
	o.state = domain.CheckoutStateReserving
	return nil
}

func (o *Orchestrator) transition(to domain.CheckoutState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !domain.CanTransitionTo(o.state, to) {
		// Transitions are driven by this file only; a bad edge is a bug.
		panic(fmt.Sprintf("illegal checkout transition %s -> %s", o.state, to))
	}
	o.state = to
}

func (o *Orchestrator) fail(f *Failure) error {
	o.mu.Lock()
	o.state = domain.CheckoutStateFailed
	o.mu.Unlock()

	o.audit.Error("FAILED", logrus.Fields{
		"reason": string(f.Reason),
		"error":  f.Cause.Error(),
	})
	return f
}

func classifyReservationError(err error) *Failure {
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return &Failure{Reason: ReasonNotConfigured, Cause: err}
	default:
		return &Failure{Reason: ReasonReservationFailed, Cause: err}
	}
}
