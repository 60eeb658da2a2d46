package databases

// go generate: mockery --name RewardDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecotrack/waste-report-api/models"
)

const rewardName = "rewards"

// RewardDatabase contains the methods to use with the reward database
type RewardDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Reward, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reward, error)
	InsertOne(ctx context.Context, reward models.Reward) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type rewardDatabase struct {
	db DatabaseHelper
}

// NewRewardDatabase initializes a new instance of reward database with the
// provided db connection
func NewRewardDatabase(db DatabaseHelper) RewardDatabase {
	return &rewardDatabase{
		db: db,
	}
}

func (r *rewardDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Reward, error) {
	reward := &models.Reward{}
	err := r.db.Collection(rewardName).FindOne(ctx, filter).Decode(&reward)
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func (r *rewardDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reward, error) {
	cursor, err := r.db.Collection(rewardName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var rewards []models.Reward
	if err := cursor.Decode(&rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *rewardDatabase) InsertOne(ctx context.Context, reward models.Reward) (interface{}, error) {
	return r.db.Collection(rewardName).InsertOne(ctx, reward)
}

func (r *rewardDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(rewardName).UpdateOne(ctx, filter, update, opts...)
}

func (r *rewardDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(rewardName).UpdateMany(ctx, filter, update, opts...)
}
