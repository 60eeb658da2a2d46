package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reward holds the structure for the reward collection in mongo.
// RemainingQuantity is only ever changed by atomic conditional updates;
// 0 <= RemainingQuantity <= TotalQuantity holds at all times.
type Reward struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	PointsCost        int                `bson:"pointsCost" json:"pointsCost"`
	TotalQuantity     int                `bson:"totalQuantity" json:"totalQuantity"`
	RemainingQuantity int                `bson:"remainingQuantity" json:"remainingQuantity"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	ValidFrom         primitive.DateTime `bson:"validFrom" json:"validFrom"`
	ValidUntil        primitive.DateTime `bson:"validUntil" json:"validUntil"`
	CreatedAt         primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt         primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// Available reports whether the reward can be redeemed at the given time
func (r Reward) Available(now time.Time) bool {
	return r.IsActive &&
		r.RemainingQuantity > 0 &&
		!now.Before(r.ValidFrom.Time()) &&
		!now.After(r.ValidUntil.Time())
}
