package cart

import (
	"context"
	"errors"

	"github.com/dbhayani01/sahumario-app/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidProduct  = errors.New("product must have an id and a non-negative price")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Store is a session-scoped key-value view of one user's cart.
// Two implementations exist: the Redis store (local, authoritative for UI
// reads) and the Mongo mirror (remote, best-effort).
type Store interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
