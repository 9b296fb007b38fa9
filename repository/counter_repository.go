package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepository hands out monotonically increasing sequence numbers.
// Order codes are derived from it instead of parsing the latest order's
// code, which would race under concurrent placements.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// MongoCounterRepository implements CounterRepository on a counters
// collection of {_id, seq} documents.
type MongoCounterRepository struct {
	collection *mongo.Collection
}

// NewMongoCounterRepository creates a Mongo-backed counter repository.
func NewMongoCounterRepository(db *mongo.Database) *MongoCounterRepository {
	return &MongoCounterRepository{collection: db.Collection("counters")}
}

// Next atomically increments the named counter and returns the new
// value. The first call for a name upserts the document and returns 1.
func (r *MongoCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
