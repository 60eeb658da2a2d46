package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

// Scheduler handles periodic background jobs for redemptions and rewards
type Scheduler struct {
	cron *cron.Cron
	RDMP databases.RedemptionDatabase
	RWD  databases.RewardDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(rdmpDB databases.RedemptionDatabase, rwdDB databases.RewardDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		RDMP: rdmpDB,
		RWD:  rwdDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Expire stale redemption codes every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.expireRedemptions)
	if err != nil {
		zap.S().Errorw("failed to register redemption expiry job", "error", err)
	}

	// Deactivate rewards past their validity window daily at 2 AM UTC
	_, err = s.cron.AddFunc("0 2 * * *", s.deactivateExpiredRewards)
	if err != nil {
		zap.S().Errorw("failed to register reward deactivation job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("rewards scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("rewards scheduler stopped")
}

// expireRedemptions marks active redemption codes past their expiry as
// expired. The status guard in the filter means a code concurrently marked
// used is left alone.
func (s *Scheduler) expireRedemptions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := s.RDMP.UpdateMany(ctx,
		bson.M{"status": models.RedemptionActive, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.RedemptionExpired}},
	)
	if err != nil {
		zap.S().Errorw("failed to expire redemptions", "error", err)
		return
	}
	if res.ModifiedCount > 0 {
		zap.S().Infow("expired redemption codes", "count", res.ModifiedCount)
	}
}

// deactivateExpiredRewards turns off rewards whose validity window has passed
func (s *Scheduler) deactivateExpiredRewards() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := s.RWD.UpdateMany(ctx,
		bson.M{"isActive": true, "validUntil": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	if err != nil {
		zap.S().Errorw("failed to deactivate expired rewards", "error", err)
		return
	}
	if res.ModifiedCount > 0 {
		zap.S().Infow("deactivated expired rewards", "count", res.ModifiedCount)
	}
}
