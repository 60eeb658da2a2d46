package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecotrack/waste-report-api/api"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

// Redemption exported for testing purposes
type Redemption struct {
	DB databases.RedemptionDatabase
}

// RedemptionsByUserIDHandler returns all redemptions belonging to a user,
// newest first by insertion order
func (rd Redemption) RedemptionsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{"userId": userID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rd.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get redemptions", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Redemption{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkRedemptionUsedHandler flips an active coupon to used. The status and
// expiry guards live in the update filter, so a coupon can only ever be
// consumed once and never after it expired.
func (rd Redemption) MarkRedemptionUsedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	redemptionID := mux.Vars(r)["redemption_id"]

	rID, err := primitive.ObjectIDFromHex(redemptionID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := rd.DB.UpdateOne(ctx,
		bson.M{
			"_id":       rID,
			"status":    models.RedemptionActive,
			"expiresAt": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"status": models.RedemptionUsed, "usedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to update redemption", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		rd.writeUsedConflict(w, r, rID)
		return
	}

	redemption, err := rd.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get redemption by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(redemption)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// writeUsedConflict re-reads the redemption after a no-match guarded write
// to report the precise reason the coupon could not be consumed
func (rd Redemption) writeUsedConflict(w http.ResponseWriter, r *http.Request, rID primitive.ObjectID) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	redemption, err := rd.DB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get redemption by ID", http.StatusNotFound, w, err)
		return
	}
	switch {
	case redemption.Status == models.RedemptionUsed:
		config.ErrorStatus("redemption code has already been used", http.StatusConflict, w, models.ErrAlreadyUsed)
	case redemption.Status == models.RedemptionExpired || !redemption.ExpiresAt.Time().After(time.Now()):
		config.ErrorStatus("redemption code has expired", http.StatusConflict, w, models.ErrRedemptionExpired)
	default:
		config.ErrorStatus("redemption is not active", http.StatusConflict, w, models.ErrAlreadyUsed)
	}
}
