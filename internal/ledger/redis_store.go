package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore holds each user's order history as a Redis list, newest first.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Append(ctx context.Context, order *domain.Order) error {
	key := ordersKey(order.UserID)

	// Scan existing entries so a retried append of the same id stays a no-op.
	existing, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis lrange failed: %w", err)
	}
	for _, raw := range existing {
		var o domain.Order
		if err2 := json.Unmarshal([]byte(raw), &o); err2 != nil {
			continue
		}
		if o.ID == order.ID {
			return ErrDuplicateOrder
		}
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}

	// LPush keeps the list newest-first.
	if err := r.client.LPush(ctx, key, string(data)).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	raws, err := r.client.LRange(ctx, ordersKey(userID), 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}

	orders := make([]*domain.Order, 0, len(raws))
	for _, raw := range raws {
		var o domain.Order
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("unmarshal order failed: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, nil
}

func ordersKey(userID string) string {
	return fmt.Sprintf("orders:%s", userID)
}
