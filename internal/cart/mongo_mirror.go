package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMirror keeps a remote copy of each cart keyed by user identity.
// Writes here are best-effort; the Redis store stays authoritative for UI
// reads even when a mirror write fails.
type MongoMirror struct {
	collection *mongo.Collection
}

func NewMongoMirror(collection *mongo.Collection) *MongoMirror {
	return &MongoMirror{collection: collection}
}

func (m MongoMirror) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&c)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get mirrored cart: %w", err)
	}

	return &c, nil
}

func (m MongoMirror) Save(ctx context.Context, c *domain.Cart) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	filter := bson.M{"user_id": c.UserID}
	update := bson.M{"$set": c}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to mirror cart: %w", err)
	}

	return nil
}

func (m MongoMirror) Delete(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete mirrored cart: %w", err)
	}
	return nil
}
