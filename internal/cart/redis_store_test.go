package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_GetMiss(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "user123")

	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := &domain.Cart{
		UserID: "user123",
		Items: []domain.LineItem{
			{ProductID: "p1", Name: "Amber Oud", UnitPrice: 50000, Quantity: 2},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	require.NoError(t, store.Save(ctx, c))

	got, err := store.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(50000), got.Items[0].UnitPrice)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestRedisStore_GetCorruptPayload(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cartKey("user123"), "not-json"))

	_, err := store.Get(context.Background(), "user123")
	assert.Error(t, err)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := &domain.Cart{UserID: "user123"}
	cartJSON, _ := json.Marshal(c)
	require.NoError(t, mr.Set(cartKey("user123"), string(cartJSON)))

	require.NoError(t, store.Delete(ctx, "user123"))

	_, err := store.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
