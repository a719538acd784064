package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the cart aggregate. Every mutation is a single atomic
// read-modify-write over the item collection, so rapid out-of-order UI events
// (double-click on "+") always leave the last applied state, never an
// interleaving artifact.
type Service struct {
	local  Store
	mirror Store // optional, best-effort remote copy
	mu     sync.Mutex
	sfg    singleflight.Group // coalesces concurrent mirror restores
}

func NewService(local Store, mirror Store) *Service {
	return &Service{
		local:  local,
		mirror: mirror,
	}
}

// Get returns the user's cart, restoring it from the remote mirror when the
// local store has no entry. A user with no cart anywhere gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.local.Get(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		log.Printf("local cart read error: %v", err) // log and try the mirror
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		if s.mirror != nil {
			mirrored, errGet := s.mirror.Get(ctx, userID)
			if errGet == nil {
				if errSave := s.local.Save(ctx, mirrored); errSave != nil {
					log.Printf("restore cart to local store error: %v", errSave)
				}
				return mirrored, nil
			}
			if !errors.Is(errGet, ErrCartNotFound) {
				return nil, errGet
			}
		}

		return &domain.Cart{
			UserID:    userID,
			Items:     nil,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Add inserts the product with quantity 1 or increments the existing line.
func (s *Service) Add(ctx context.Context, userID string, p domain.Product) error {
	if p.ID == "" || p.Price < 0 {
		return ErrInvalidProduct
	}

	return s.mutate(ctx, userID, func(c *domain.Cart) {
		for i := range c.Items {
			if c.Items[i].ProductID == p.ID {
				c.Items[i].Quantity++
				return
			}
		}
		c.Items = append(c.Items, domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  1,
		})
	})
}

// SetQuantity overwrites the quantity of a line. Zero removes the line;
// zero for an absent product is a no-op, not an error.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, userID, func(c *domain.Cart) {
		if qty == 0 {
			removeItem(c, productID)
			return
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity = qty
				return
			}
		}
	})
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		removeItem(c, productID)
	})
}

// Clear empties the cart. Idempotent.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		c.Items = nil
	})
}

func (s *Service) mutate(ctx context.Context, userID string, apply func(*domain.Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	apply(c)
	c.UpdatedAt = time.Now()

	if errSave := s.local.Save(ctx, c); errSave != nil {
		return errSave
	}

	s.mirrorAsync(c)
	return nil
}

// mirrorAsync writes the cart to the remote mirror without blocking the
// caller. The local store already holds the authoritative state.
func (s *Service) mirrorAsync(c *domain.Cart) {
	if s.mirror == nil {
		return
	}
	snapshot := *c
	snapshot.Items = append([]domain.LineItem(nil), c.Items...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.mirror.Save(ctx, &snapshot); err != nil {
			log.Printf("cart mirror write error: %v", err)
		}
	}()
}

func removeItem(c *domain.Cart, productID string) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
}
