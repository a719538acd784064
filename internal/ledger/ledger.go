package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/audit"
	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/sirupsen/logrus"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateOrder is returned by stores when an order id already
	// exists. The service treats it as a successful no-op.
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// LocalStore is the append-only order list the UI reads from.
type LocalStore interface {
	Append(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, userID string) ([]*domain.Order, error)
}

// Mirror is the durable remote copy of the ledger.
type Mirror interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

// Service is the order ledger: append-only, idempotent by order id, local
// store authoritative, remote mirror best-effort. A mirror failure never
// fails the append; it only reaches the audit trail.
type Service struct {
	local  LocalStore
	mirror Mirror // optional
	audit  *audit.Logger
}

func NewService(local LocalStore, mirror Mirror, auditLog *audit.Logger) *Service {
	return &Service{
		local:  local,
		mirror: mirror,
		audit:  auditLog,
	}
}

// Append records a confirmed order. Appending an id that already exists is a
// no-op, which makes retried commits harmless.
func (s *Service) Append(ctx context.Context, order *domain.Order) error {
	if err := s.local.Append(ctx, order); err != nil && !errors.Is(err, ErrDuplicateOrder) {
		return err
	}

	s.mirrorAsync(order)
	return nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.local.List(ctx, userID)
}

func (s *Service) mirrorAsync(order *domain.Order) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.mirror.CreateOrder(ctx, order)
		if err != nil && !errors.Is(err, ErrDuplicateOrder) {
			s.audit.Error("LEDGER_MIRROR_FAILED", logrus.Fields{
				"order_id": order.ID.String(),
				"user_id":  order.UserID,
				"error":    err.Error(),
			})
		}
	}()
}
