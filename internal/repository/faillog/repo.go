// Package faillog keeps a durable log of media assets that could not be
// processed into thumbnails, so operators can audit and retry them.
package faillog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumakr/luma/internal/domain"
)

const collection = "thumbnail_failures"

// Failure is one recorded processing failure.
type Failure struct {
	Handle     domain.Handle `bson:"handle"`
	Reason     string        `bson:"reason"`
	RecordedAt time.Time     `bson:"recorded_at"`
}

// Repository persists thumbnail derivation failures.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(collection)}
}

// Record logs a failure, replacing any previous entry for the handle.
func (r *Repository) Record(ctx context.Context, handle domain.Handle, reason string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"handle": handle},
		bson.M{"$set": Failure{
			Handle:     handle,
			Reason:     reason,
			RecordedAt: time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

// List returns every recorded failure, newest first.
func (r *Repository) List(ctx context.Context) ([]Failure, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer cursor.Close(ctx)

	var failures []Failure
	if err := cursor.All(ctx, &failures); err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	return failures, nil
}

// Clear removes the entry for a handle after a successful retry.
func (r *Repository) Clear(ctx context.Context, handle domain.Handle) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"handle": handle}); err != nil {
		return fmt.Errorf("clear failure: %w", err)
	}
	return nil
}
