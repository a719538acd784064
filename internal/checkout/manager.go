package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
)

// attemptTimeout bounds how long a submitted checkout may sit waiting for the
// gateway UI before it is abandoned.
const attemptTimeout = 15 * time.Minute

// BeginOutcome is what a transport needs right after submission: either the
// reservation the gateway UI must be opened with, or the terminal result when
// the attempt never reached the gateway.
type BeginOutcome struct {
	Reservation *domain.OrderReservation
	Result      *Result
}

type attemptResult struct {
	result *Result
	err    error
}

type userFlow struct {
	orchestrator *Orchestrator
	mu           sync.Mutex
	last         *attemptResult
}

// Manager owns one Orchestrator per user so independent sessions never share
// checkout state, while repeated submissions from one user hit the same
// re-entrancy guard.
type Manager struct {
	newOrchestrator func() *Orchestrator

	mu    sync.Mutex
	flows map[string]*userFlow
}

func NewManager(newOrchestrator func() *Orchestrator) *Manager {
	return &Manager{
		newOrchestrator: newOrchestrator,
		flows:           make(map[string]*userFlow),
	}
}

// Begin submits a checkout and returns as soon as the flow either reaches
// AwaitingGateway (reservation ready, UI should open) or terminates earlier.
// The attempt itself keeps running in the background; only the user's
// dismissal or the attempt timeout stops it.
func (m *Manager) Begin(ctx context.Context, userID string, shipping domain.ShippingDetails) (*BeginOutcome, error) {
	flow := m.flow(userID)

	ready := make(chan domain.OrderReservation, 1)
	done := make(chan attemptResult, 1)

	go func() {
		attemptCtx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
		defer cancel()

		res, err := flow.orchestrator.SubmitWithNotify(attemptCtx, userID, shipping, func(r domain.OrderReservation) {
			ready <- r
		})

		outcome := attemptResult{result: res, err: err}
		if !errors.Is(err, ErrAlreadyInProgress) {
			flow.setLast(&outcome)
		}
		done <- outcome
	}()

	select {
	case r := <-ready:
		return &BeginOutcome{Reservation: &r}, nil
	case outcome := <-done:
		if outcome.err != nil {
			return nil, outcome.err
		}
		return &BeginOutcome{Result: outcome.result}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the user's current checkout state.
func (m *Manager) State(userID string) domain.CheckoutState {
	return m.flow(userID).orchestrator.State()
}

// LastResult returns the most recent terminal outcome for the user, if any.
func (m *Manager) LastResult(userID string) (*Result, error, bool) {
	flow := m.flow(userID)
	flow.mu.Lock()
	defer flow.mu.Unlock()
	if flow.last == nil {
		return nil, nil, false
	}
	return flow.last.result, flow.last.err, true
}

// AwaitOutcome blocks until the user's in-flight attempt (if any) reaches a
// terminal state or returns to Idle, then reports the latest outcome.
func (m *Manager) AwaitOutcome(ctx context.Context, userID string) (*Result, error) {
	flow := m.flow(userID)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		switch flow.orchestrator.State() {
		case domain.CheckoutStateReserving, domain.CheckoutStateAwaitingGateway, domain.CheckoutStateVerifying:
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			result, err, ok := m.LastResult(userID)
			if !ok {
				return nil, nil
			}
			return result, err
		}
	}
}

func (m *Manager) flow(userID string) *userFlow {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[userID]
	if !ok {
		f = &userFlow{orchestrator: m.newOrchestrator()}
		m.flows[userID] = f
	}
	return f
}

func (f *userFlow) setLast(outcome *attemptResult) {
	f.mu.Lock()
	f.last = outcome
	f.mu.Unlock()
}
