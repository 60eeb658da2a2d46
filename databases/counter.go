package databases

// go generate: mockery --name CounterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterName = "counters"

// CounterDatabase hands out monotonically increasing sequence numbers,
// used for the human-readable report ids
type CounterDatabase interface {
	Next(ctx context.Context, name string) (int64, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the
// provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

// Next increments and returns the named sequence in a single upsert, so two
// concurrent submissions can never observe the same value
func (c *counterDatabase) Next(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := c.db.Collection(counterName).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
