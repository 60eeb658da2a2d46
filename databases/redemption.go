package databases

// go generate: mockery --name RedemptionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecotrack/waste-report-api/models"
)

const redemptionName = "redemptions"

// RedemptionDatabase contains the methods to use with the redemption
// database. The code field carries a unique index; InsertOne surfaces the
// duplicate-key error so callers can regenerate and retry.
type RedemptionDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Redemption, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Redemption, error)
	InsertOne(ctx context.Context, redemption models.Redemption) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type redemptionDatabase struct {
	db DatabaseHelper
}

// NewRedemptionDatabase initializes a new instance of redemption database
// with the provided db connection
func NewRedemptionDatabase(db DatabaseHelper) RedemptionDatabase {
	return &redemptionDatabase{
		db: db,
	}
}

func (r *redemptionDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Redemption, error) {
	redemption := &models.Redemption{}
	err := r.db.Collection(redemptionName).FindOne(ctx, filter).Decode(&redemption)
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

func (r *redemptionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Redemption, error) {
	cursor, err := r.db.Collection(redemptionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var redemptions []models.Redemption
	if err := cursor.Decode(&redemptions); err != nil {
		return nil, err
	}
	return redemptions, nil
}

func (r *redemptionDatabase) InsertOne(ctx context.Context, redemption models.Redemption) (interface{}, error) {
	return r.db.Collection(redemptionName).InsertOne(ctx, redemption)
}

func (r *redemptionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(redemptionName).UpdateOne(ctx, filter, update, opts...)
}

func (r *redemptionDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(redemptionName).UpdateMany(ctx, filter, update, opts...)
}

func (r *redemptionDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(redemptionName).CountDocuments(ctx, filter, opts...)
}
