package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Role checks on routes happen in the middleware layer;
// handlers only enforce domain preconditions such as assignment ownership.
const (
	RoleCitizen   = "citizen"
	RoleCollector = "collector"
	RoleAdmin     = "admin"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email            string             `bson:"email" json:"email"`
	Username         string             `bson:"username" json:"username"`
	Password         string             `bson:"password" json:"-"`
	Role             string             `bson:"role" json:"role"`
	Active           bool               `bson:"active" json:"active"`
	PushToken        string             `bson:"pushToken,omitempty" json:"-"`
	Points           int                `bson:"points" json:"points"`
	TotalReports     int                `bson:"totalReports" json:"totalReports"`
	CompletedReports int                `bson:"completedReports" json:"completedReports"`
	CreatedAt        primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt        primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// UserDetails is the create-user request body
type UserDetails struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	UserID   primitive.ObjectID `bson:"_id" json:"userId"`
	Username string             `bson:"username" json:"username"`
	Points   int                `bson:"points" json:"points"`
}
