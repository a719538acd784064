package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/dbhayani01/sahumario-app/internal/gateway"
	"github.com/dbhayani01/sahumario-app/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateOutcome feeds Collect results from the test, mimicking the callback
// endpoints resolving an open gateway session.
type gatedCollector struct {
	mu       sync.Mutex
	pending  chan struct{}
	resolve  func(r domain.OrderReservation) (domain.PaymentAttempt, error)
	lastResv domain.OrderReservation
}

func newGatedCollector() *gatedCollector {
	return &gatedCollector{pending: make(chan struct{})}
}

func (g *gatedCollector) Collect(ctx context.Context, reservation domain.OrderReservation, _ gateway.Prefill) (domain.PaymentAttempt, error) {
	g.mu.Lock()
	g.lastResv = reservation
	g.mu.Unlock()

	select {
	case <-g.pending:
	case <-ctx.Done():
		return domain.PaymentAttempt{}, ctx.Err()
	}

	g.mu.Lock()
	resolve := g.resolve
	reservation = g.lastResv
	g.mu.Unlock()
	return resolve(reservation)
}

func (g *gatedCollector) settle(resolve func(r domain.OrderReservation) (domain.PaymentAttempt, error)) {
	g.mu.Lock()
	g.resolve = resolve
	g.mu.Unlock()
	close(g.pending)
}

func newTestManager(collector Collector) (*Manager, *mockCart, *mockLedger) {
	cart := cartWith(domain.LineItem{ProductID: "p1", UnitPrice: 50000, Quantity: 2})
	ledger := &mockLedger{}
	factory := func() *Orchestrator {
		return NewOrchestrator(cart, &mockReserver{}, collector, verify.NewVerifier(testSecret), ledger, testAudit())
	}
	return NewManager(factory), cart, ledger
}

func TestManager_BeginReturnsReservation(t *testing.T) {
	collector := newGatedCollector()
	m, _, _ := newTestManager(collector)

	outcome, err := m.Begin(context.Background(), "u1", validShipping())
	require.NoError(t, err)
	require.NotNil(t, outcome.Reservation)
	assert.Equal(t, int64(100000), outcome.Reservation.Amount)
	assert.Nil(t, outcome.Result)
	assert.Equal(t, domain.CheckoutStateAwaitingGateway, m.State("u1"))

	// Resolve so the background attempt does not leak past the test.
	collector.settle(func(r domain.OrderReservation) (domain.PaymentAttempt, error) {
		return domain.PaymentAttempt{}, gateway.ErrCancelled
	})
	_, err = m.AwaitOutcome(context.Background(), "u1")
	require.NoError(t, err)
}

func TestManager_BeginReturnsTerminalResultOnEarlyFailure(t *testing.T) {
	collector := newGatedCollector()
	m := NewManager(func() *Orchestrator {
		return NewOrchestrator(&mockCart{}, &mockReserver{}, collector, verify.NewVerifier(testSecret), &mockLedger{}, testAudit())
	})

	_, err := m.Begin(context.Background(), "u1", validShipping())
	assert.ErrorIs(t, err, ErrPreconditionNotMet)
}

func TestManager_AwaitOutcomeAfterSuccess(t *testing.T) {
	collector := newGatedCollector()
	m, cart, ledger := newTestManager(collector)

	_, err := m.Begin(context.Background(), "u1", validShipping())
	require.NoError(t, err)

	collector.settle(func(r domain.OrderReservation) (domain.PaymentAttempt, error) {
		paymentID := "pay_mgr"
		return domain.PaymentAttempt{
			GatewayOrderID:   r.GatewayOrderID,
			GatewayPaymentID: paymentID,
			Signature:        verify.Signature(testSecret, r.GatewayOrderID, paymentID),
		}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := m.AwaitOutcome(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Order)
	assert.Equal(t, "pay_mgr", result.Order.Payment.GatewayPaymentID)

	assert.Equal(t, domain.CheckoutStateCommitted, m.State("u1"))
	assert.Len(t, ledger.appended(), 1)
	assert.Equal(t, 1, cart.clears())
}

func TestManager_AwaitOutcomeAfterDismissal(t *testing.T) {
	collector := newGatedCollector()
	m, cart, _ := newTestManager(collector)

	_, err := m.Begin(context.Background(), "u1", validShipping())
	require.NoError(t, err)

	collector.settle(func(domain.OrderReservation) (domain.PaymentAttempt, error) {
		return domain.PaymentAttempt{}, gateway.ErrCancelled
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := m.AwaitOutcome(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	assert.Equal(t, domain.CheckoutStateIdle, m.State("u1"))
	assert.Equal(t, 0, cart.clears())
}

func TestManager_UsersGetIndependentFlows(t *testing.T) {
	collector := newGatedCollector()
	m, _, _ := newTestManager(collector)

	_, err := m.Begin(context.Background(), "u1", validShipping())
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutStateAwaitingGateway, m.State("u1"))
	assert.Equal(t, domain.CheckoutStateIdle, m.State("u2"))

	collector.settle(func(domain.OrderReservation) (domain.PaymentAttempt, error) {
		return domain.PaymentAttempt{}, gateway.ErrCancelled
	})
	_, err = m.AwaitOutcome(context.Background(), "u1")
	require.NoError(t, err)
}

func TestManager_StateWithNoAttempt(t *testing.T) {
	m, _, _ := newTestManager(newGatedCollector())
	assert.Equal(t, domain.CheckoutStateIdle, m.State("fresh"))

	result, err := m.AwaitOutcome(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Nil(t, result)
}
