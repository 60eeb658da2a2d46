package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecotrack/waste-report-api/api"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

type pointsRequest struct {
	Amount int `json:"amount"`
}

type pushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// UserHandler returns a user given a userID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := u.DB.FindOne(context.Background(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserCreateHandler creates a user
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var details models.UserDetails
	err := json.NewDecoder(r.Body).Decode(&details)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if details.Email == "" || details.Password == "" {
		config.ErrorStatus("email and password required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}
	role := details.Role
	if role == "" {
		role = models.RoleCitizen
	}
	if role != models.RoleCitizen && role != models.RoleCollector {
		config.ErrorStatus("unknown role", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	// check if the user already exists
	existingUser, _ := u.DB.FindOne(context.Background(), bson.M{"email": details.Email})
	if existingUser != nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(details.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		Email:     details.Email,
		Username:  details.Username,
		Password:  string(hashedPassword),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	insertedID, err := u.DB.InsertOne(context.Background(), user)
	if err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AdjustPointsHandler applies a signed manual balance adjustment. Positive
// amounts credit, negative amounts debit through the guarded deduction path.
func (u User) AdjustPointsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount == 0 {
		config.ErrorStatus("amount must be non-zero", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if req.Amount > 0 {
		res, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$inc": bson.M{"points": req.Amount}})
		if err != nil {
			config.ErrorStatus("failed to credit points", http.StatusInternalServerError, w, err)
			return
		}
		if res.MatchedCount == 0 {
			config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, models.ErrNotFound)
			return
		}
		u.writeUser(ctx, w, uID)
		return
	}

	amount := -req.Amount
	res, err := u.DB.UpdateOne(ctx,
		bson.M{"_id": uID, "points": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"points": -amount}},
	)
	if err != nil {
		config.ErrorStatus("failed to debit points", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		if _, err := u.DB.FindOne(ctx, bson.M{"_id": uID}); err != nil {
			config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("balance is lower than the requested amount", http.StatusConflict, w, models.ErrInsufficientPoints)
		return
	}
	u.writeUser(ctx, w, uID)
}

// AddPointsHandler credits points to a user's balance
func (u User) AddPointsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("amount must be positive", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$inc": bson.M{"points": req.Amount}})
	if err != nil {
		config.ErrorStatus("failed to credit points", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, models.ErrNotFound)
		return
	}

	u.writeUser(ctx, w, uID)
}

// DeductPointsHandler debits points from a user's balance. The balance
// precondition lives in the update filter, so a concurrent deduction can
// never drive the balance negative.
func (u User) DeductPointsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("amount must be positive", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx,
		bson.M{"_id": uID, "points": bson.M{"$gte": req.Amount}},
		bson.M{"$inc": bson.M{"points": -req.Amount}},
	)
	if err != nil {
		config.ErrorStatus("failed to debit points", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		if _, err := u.DB.FindOne(ctx, bson.M{"_id": uID}); err != nil {
			config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("balance is lower than the requested amount", http.StatusConflict, w, models.ErrInsufficientPoints)
		return
	}

	u.writeUser(ctx, w, uID)
}

// LeaderboardHandler returns the top point balances among citizens
func (u User) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	pipeline := []bson.M{
		{"$match": bson.M{"role": models.RoleCitizen, "active": true}},
		{"$sort": bson.M{"points": -1}},
		{"$limit": limit},
		{"$project": bson.M{"username": 1, "points": 1}},
	}

	var entries []models.LeaderboardEntry
	if err := u.DB.Aggregate(context.Background(), pipeline, &entries); err != nil {
		config.ErrorStatus("failed to aggregate leaderboard", http.StatusInternalServerError, w, err)
		return
	}
	if len(entries) == 0 {
		entries = []models.LeaderboardEntry{}
	}

	b, err := json.Marshal(entries)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Active   *bool   `json:"active"`
}

// UpdateUserByIDHandler updates profile fields. Points are not settable
// here; the balance only moves through the ledger operations.
func (u User) UpdateUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Username != nil {
		if *req.Username == "" {
			config.ErrorStatus("username must not be empty", http.StatusBadRequest, w, models.ErrValidation)
			return
		}
		set["username"] = *req.Username
	}
	if req.Email != nil {
		if *req.Email == "" {
			config.ErrorStatus("email must not be empty", http.StatusBadRequest, w, models.ErrValidation)
			return
		}
		set["email"] = *req.Email
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, models.ErrNotFound)
		return
	}

	u.writeUser(ctx, w, uID)
}

// UpdatePushTokenHandler stores the user's Expo push token
func (u User) UpdatePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": bson.M{
		"pushToken": req.PushToken,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update push token", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, models.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"updated": true}`))
}

func (u User) writeUser(ctx context.Context, w http.ResponseWriter, uID primitive.ObjectID) {
	user, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
