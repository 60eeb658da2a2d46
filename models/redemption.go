package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Redemption statuses
const (
	RedemptionActive    = "active"
	RedemptionUsed      = "used"
	RedemptionExpired   = "expired"
	RedemptionCancelled = "cancelled"
)

// Redemption records a user exchanging points for a reward. PointsUsed
// snapshots the cost at redemption time; Code carries a unique index in
// mongo. Only Status and UsedAt change after creation.
type Redemption struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	RewardID   string             `bson:"rewardId" json:"rewardId"`
	PointsUsed int                `bson:"pointsUsed" json:"pointsUsed"`
	Code       string             `bson:"code" json:"code"`
	Status     string             `bson:"status" json:"status"`
	ExpiresAt  primitive.DateTime `bson:"expiresAt" json:"expiresAt"`
	UsedAt     primitive.DateTime `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt  primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
