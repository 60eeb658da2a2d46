package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ecotrack/waste-report-api/api"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

const (
	couponCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	couponLength  = 12
	couponRetries = 5
)

// Reward exported for testing purposes
type Reward struct {
	RWD  databases.RewardDatabase
	UDB  databases.UserDatabase
	RDMP databases.RedemptionDatabase
}

type createRewardRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PointsCost  int       `json:"pointsCost"`
	Quantity    int       `json:"quantity"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidUntil  time.Time `json:"validUntil"`
}

type updateRewardRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	PointsCost  *int       `json:"pointsCost"`
	IsActive    *bool      `json:"isActive"`
	ValidUntil  *time.Time `json:"validUntil"`
}

type redeemRequest struct {
	UserID string `json:"userId"`
}

// CreateRewardHandler creates a reward with full starting stock
func (rw Reward) CreateRewardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req createRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if req.Name == "" || req.PointsCost <= 0 || req.Quantity <= 0 {
		config.ErrorStatus("name, positive pointsCost and positive quantity required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		config.ErrorStatus("validUntil must be after validFrom", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	reward := models.Reward{
		Name:              req.Name,
		Description:       req.Description,
		PointsCost:        req.PointsCost,
		TotalQuantity:     req.Quantity,
		RemainingQuantity: req.Quantity,
		IsActive:          true,
		ValidFrom:         primitive.NewDateTimeFromTime(req.ValidFrom),
		ValidUntil:        primitive.NewDateTimeFromTime(req.ValidUntil),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	insertedID, err := rw.RWD.InsertOne(context.Background(), reward)
	if err != nil {
		config.ErrorStatus("failed to insert reward", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		reward.ID = oid
	}

	b, err := json.Marshal(reward)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// RewardsHandler lists rewards; by default only currently redeemable ones
func (rw Reward) RewardsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if r.URL.Query().Get("all") != "true" {
		now := primitive.NewDateTimeFromTime(time.Now())
		filter = bson.M{
			"isActive":          true,
			"remainingQuantity": bson.M{"$gt": 0},
			"validFrom":         bson.M{"$lte": now},
			"validUntil":        bson.M{"$gte": now},
		}
	}

	dbResp, err := rw.RWD.Find(context.Background(), filter)
	if err != nil {
		config.ErrorStatus("failed to get rewards", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Reward{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RewardByIDHandler returns a reward given a rewardID
func (rw Reward) RewardByIDHandler(w http.ResponseWriter, r *http.Request) {
	rewardID := mux.Vars(r)["reward_id"]

	rID, err := primitive.ObjectIDFromHex(rewardID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := rw.RWD.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, err)
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

// UpdateRewardHandler patches reward catalog fields. Stock is deliberately
// not settable here; it only moves through redemptions.
func (rw Reward) UpdateRewardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	rewardID := mux.Vars(r)["reward_id"]

	rID, err := primitive.ObjectIDFromHex(rewardID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.PointsCost != nil {
		if *req.PointsCost <= 0 {
			config.ErrorStatus("pointsCost must be positive", http.StatusBadRequest, w, models.ErrValidation)
			return
		}
		set["pointsCost"] = *req.PointsCost
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.ValidUntil != nil {
		set["validUntil"] = primitive.NewDateTimeFromTime(*req.ValidUntil)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := rw.RWD.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update reward", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, models.ErrNotFound)
		return
	}

	reward, err := rw.RWD.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(reward)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RedeemRewardHandler exchanges a user's points for a reward. The stock
// decrement and the balance deduction are each single conditional writes;
// under contention the stock write decides the winner, so a reward with one
// unit left yields exactly one successful redemption.
func (rw Reward) RedeemRewardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	rewardID := mux.Vars(r)["reward_id"]

	rID, err := primitive.ObjectIDFromHex(rewardID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	uID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reward, err := rw.RWD.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, err)
		return
	}
	now := time.Now()
	if !reward.Available(now) {
		config.ErrorStatus("reward is not available", http.StatusConflict, w, models.ErrRewardUnavailable)
		return
	}
	user, err := rw.UDB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if user.Points < reward.PointsCost {
		config.ErrorStatus("balance is lower than the reward cost", http.StatusConflict, w, models.ErrInsufficientPoints)
		return
	}

	// Claim one unit of stock. The remainingQuantity guard in the filter is
	// what makes oversell impossible; losing the race shows up as a
	// zero-modified write, never as a negative count.
	nowDT := primitive.NewDateTimeFromTime(now)
	stockRes, err := rw.RWD.UpdateOne(ctx,
		bson.M{
			"_id":               rID,
			"isActive":          true,
			"remainingQuantity": bson.M{"$gt": 0},
			"validFrom":         bson.M{"$lte": nowDT},
			"validUntil":        bson.M{"$gte": nowDT},
		},
		bson.M{"$inc": bson.M{"remainingQuantity": -1}, "$set": bson.M{"updatedAt": nowDT}},
	)
	if err != nil {
		config.ErrorStatus("failed to claim reward stock", http.StatusInternalServerError, w, err)
		return
	}
	if stockRes.ModifiedCount == 0 {
		config.ErrorStatus("reward is not available", http.StatusConflict, w, models.ErrRewardUnavailable)
		return
	}

	// Deduct the cost; on failure return the claimed unit.
	balanceRes, err := rw.UDB.UpdateOne(ctx,
		bson.M{"_id": uID, "points": bson.M{"$gte": reward.PointsCost}},
		bson.M{"$inc": bson.M{"points": -reward.PointsCost}},
	)
	if err != nil || balanceRes.ModifiedCount == 0 {
		rw.releaseStock(ctx, rID)
		if err != nil {
			config.ErrorStatus("failed to debit points", http.StatusInternalServerError, w, err)
			return
		}
		config.ErrorStatus("balance is lower than the reward cost", http.StatusConflict, w, models.ErrInsufficientPoints)
		return
	}

	redemption := models.Redemption{
		UserID:     req.UserID,
		RewardID:   rewardID,
		PointsUsed: reward.PointsCost,
		Status:     models.RedemptionActive,
		ExpiresAt:  reward.ValidUntil,
		CreatedAt:  nowDT,
	}

	// The code column carries a unique index; regenerate on collision.
	inserted := false
	for attempt := 0; attempt < couponRetries; attempt++ {
		redemption.Code = generateCouponCode()
		insertedID, err := rw.RDMP.InsertOne(ctx, redemption)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			rw.releaseStock(ctx, rID)
			if _, refundErr := rw.UDB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$inc": bson.M{"points": reward.PointsCost}}); refundErr != nil {
				zap.S().Errorw("failed to refund points after redemption insert failure",
					"userId", req.UserID, "error", refundErr)
			}
			config.ErrorStatus("failed to insert redemption", http.StatusInternalServerError, w, err)
			return
		}
		if oid, ok := insertedID.(primitive.ObjectID); ok {
			redemption.ID = oid
		}
		inserted = true
		break
	}
	if !inserted {
		rw.releaseStock(ctx, rID)
		if _, refundErr := rw.UDB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$inc": bson.M{"points": reward.PointsCost}}); refundErr != nil {
			zap.S().Errorw("failed to refund points after coupon collisions",
				"userId", req.UserID, "error", refundErr)
		}
		config.ErrorStatus("failed to generate a unique coupon code", http.StatusInternalServerError, w, models.ErrRewardUnavailable)
		return
	}

	go sendNotificationToUser(req.UserID, map[string]interface{}{
		"rewardId": rewardID,
		"code":     redemption.Code,
		"message":  "Your reward has been redeemed",
	})

	b, err := json.Marshal(redemption)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// releaseStock compensates a claimed unit when a later redemption step fails
func (rw Reward) releaseStock(ctx context.Context, rID primitive.ObjectID) {
	if _, err := rw.RWD.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$inc": bson.M{"remainingQuantity": 1}}); err != nil {
		zap.S().Errorw("failed to release reward stock", "rewardId", rID.Hex(), "error", err)
	}
}

// generateCouponCode returns a fixed-length random alphanumeric code.
// Uniqueness is enforced by the storage layer, not by construction.
func generateCouponCode() string {
	buf := make([]byte, couponLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is not survivable for coupon issuance
		panic(err)
	}
	for i, b := range buf {
		buf[i] = couponCharset[int(b)%len(couponCharset)]
	}
	return string(buf)
}
