package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecotrack/waste-report-api/databases"
	mocksdb "github.com/ecotrack/waste-report-api/databases/mocks"
	"github.com/ecotrack/waste-report-api/models"
)

func TestScheduler_ExpireRedemptionsOnlyTouchesActiveCodes(t *testing.T) {
	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}

	var capturedFilter bson.M
	conn.(*mocksdb.CollectionHelper).
		On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil).
		Run(func(args mock.Arguments) {
			capturedFilter = args.Get(1).(bson.M)
		})
	db.(*mocksdb.DatabaseHelper).On("Collection", "redemptions").Return(conn)

	s := NewScheduler(databases.NewRedemptionDatabase(db), nil)
	s.expireRedemptions()

	assert.Equal(t, models.RedemptionActive, capturedFilter["status"])
	assert.Contains(t, capturedFilter["expiresAt"].(bson.M), "$lt")
}

func TestScheduler_DeactivateExpiredRewardsFilter(t *testing.T) {
	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}

	var capturedFilter bson.M
	var capturedUpdate bson.M
	conn.(*mocksdb.CollectionHelper).
		On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			capturedFilter = args.Get(1).(bson.M)
			capturedUpdate = args.Get(2).(bson.M)
		})
	db.(*mocksdb.DatabaseHelper).On("Collection", "rewards").Return(conn)

	s := NewScheduler(nil, databases.NewRewardDatabase(db))
	s.deactivateExpiredRewards()

	assert.Equal(t, true, capturedFilter["isActive"])
	assert.Contains(t, capturedFilter["validUntil"].(bson.M), "$lt")
	assert.Equal(t, false, capturedUpdate["$set"].(bson.M)["isActive"])
}
