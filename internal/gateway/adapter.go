package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/dbhayani01/sahumario-app/internal/domain"
)

var ErrNoActiveSession = errors.New("no active payment session for this order")

// Prefill carries the customer details and theme the checkout UI opens with.
type Prefill struct {
	Customer domain.Customer
	Theme    string
}

type outcome struct {
	attempt domain.PaymentAttempt
	err     error
}

// Session is one open checkout UI interaction. The three gateway callbacks
// (success handler, dismiss, payment.failed) all funnel into Settle-style
// methods; only the first settled outcome counts, every later firing is
// discarded. The gateway does not promise the callbacks are mutually
// exclusive, so exactly-once is enforced here.
type Session struct {
	reservation domain.OrderReservation
	once        sync.Once
	done        chan outcome
}

func newSession(reservation domain.OrderReservation) *Session {
	return &Session{
		reservation: reservation,
		done:        make(chan outcome, 1),
	}
}

func (s *Session) Reservation() domain.OrderReservation {
	return s.reservation
}

// Succeed resolves the session with a completed payment attempt.
func (s *Session) Succeed(attempt domain.PaymentAttempt) {
	s.settle(outcome{attempt: attempt})
}

// Dismiss resolves the session as cancelled by the user.
func (s *Session) Dismiss() {
	s.settle(outcome{err: ErrCancelled})
}

// Fail resolves the session with a hard gateway refusal.
func (s *Session) Fail(reason string) {
	s.settle(outcome{err: &DeclinedError{Reason: reason}})
}

func (s *Session) settle(o outcome) {
	s.once.Do(func() {
		s.done <- o
	})
}

// Adapter bridges the callback-driven checkout UI into a single awaitable
// result per invocation. Sessions are keyed by gateway order id so the HTTP
// callback endpoints can find the one to resolve.
type Adapter struct {
	loader *ScriptLoader

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewAdapter(loader *ScriptLoader) *Adapter {
	return &Adapter{
		loader:   loader,
		sessions: make(map[string]*Session),
	}
}

// Open ensures the checkout script is loaded and registers a session for the
// reservation. The returned session must be resolved through exactly one of
// Succeed, Dismiss or Fail.
func (a *Adapter) Open(ctx context.Context, reservation domain.OrderReservation, _ Prefill) (*Session, error) {
	if _, err := a.loader.Load(ctx); err != nil {
		return nil, err
	}

	session := newSession(reservation)

	a.mu.Lock()
	a.sessions[reservation.GatewayOrderID] = session
	a.mu.Unlock()

	return session, nil
}

// Session returns the open session for a gateway order id, if any.
func (a *Adapter) Session(gatewayOrderID string) (*Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[gatewayOrderID]
	return s, ok
}

// Collect opens a session and blocks until the UI reports an outcome:
// a PaymentAttempt on success, ErrCancelled on dismissal, or a
// *DeclinedError on a hard payment failure.
func (a *Adapter) Collect(ctx context.Context, reservation domain.OrderReservation, prefill Prefill) (domain.PaymentAttempt, error) {
	session, err := a.Open(ctx, reservation, prefill)
	if err != nil {
		return domain.PaymentAttempt{}, err
	}
	defer a.close(reservation.GatewayOrderID)

	select {
	case o := <-session.done:
		return o.attempt, o.err
	case <-ctx.Done():
		return domain.PaymentAttempt{}, ctx.Err()
	}
}

func (a *Adapter) close(gatewayOrderID string) {
	a.mu.Lock()
	delete(a.sessions, gatewayOrderID)
	a.mu.Unlock()
}
