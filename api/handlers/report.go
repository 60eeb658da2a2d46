package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ecotrack/waste-report-api/api"
	"github.com/ecotrack/waste-report-api/api/handlers/geo"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

// Report exported for testing purposes
type Report struct {
	RDB        databases.ReportDatabase
	UDB        databases.UserDatabase
	CDB        databases.CounterDatabase
	Classifier Classifier
	Geocoder   Geocoder
}

type createReportRequest struct {
	CitizenID   string  `json:"citizenId"`
	Description string  `json:"description"`
	WasteType   string  `json:"wasteType"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"imageUrl"`
	Priority    string  `json:"priority"`
}

type verifyReportRequest struct {
	AdminID string `json:"adminId"`
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

type assignReportRequest struct {
	AdminID     string `json:"adminId"`
	CollectorID string `json:"collectorId"`
}

type startCleanupRequest struct {
	CollectorID    string `json:"collectorId"`
	BeforeImageURL string `json:"beforeImageUrl"`
}

type completeReportRequest struct {
	CollectorID   string `json:"collectorId"`
	AfterImageURL string `json:"afterImageUrl"`
	Notes         string `json:"notes"`
}

type awardPointsRequest struct {
	AdminID string `json:"adminId"`
	Points  int    `json:"points"`
}

// CreateReportHandler creates a new waste report in the submitted state
func (rp Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if req.Description == "" {
		config.ErrorStatus("description is required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}
	if !geo.ValidCoordinates(req.Latitude, req.Longitude) {
		config.ErrorStatus("coordinates out of range", http.StatusBadRequest, w, models.ErrValidation)
		return
	}
	if req.ImageURL == "" {
		config.ErrorStatus("at least one image is required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	citizenID, err := primitive.ObjectIDFromHex(req.CitizenID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	citizen, err := rp.UDB.FindOne(ctx, bson.M{"_id": citizenID})
	if err != nil {
		config.ErrorStatus("failed to get citizen by ID", http.StatusNotFound, w, err)
		return
	}
	if !citizen.Active {
		config.ErrorStatus("citizen account is inactive", http.StatusForbidden, w, models.ErrPermissionDenied)
		return
	}

	seq, err := rp.CDB.Next(ctx, "reports")
	if err != nil {
		config.ErrorStatus("failed to generate report sequence", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	report := models.Report{
		ReportID:    fmt.Sprintf("WR-%06d", seq),
		CitizenID:   req.CitizenID,
		Description: req.Description,
		WasteType:   req.WasteType,
		Location: models.Location{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		},
		Images: models.ReportImages{
			Original: &models.ImageRef{URL: req.ImageURL, UploadedBy: req.CitizenID, UploadedAt: now},
		},
		Status:   models.StatusSubmitted,
		Priority: req.Priority,
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusSubmitted, ChangedBy: req.CitizenID, ChangedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if report.Priority == "" {
		report.Priority = "medium"
	}

	// Best-effort annotation; the classifier output never gates anything
	if rp.Classifier != nil {
		if c, err := rp.Classifier.Classify(req.ImageURL); err == nil {
			report.Classification = c
			if report.WasteType == "" {
				report.WasteType = c.WasteType
			}
		} else {
			zap.S().Warnw("classifier unavailable", "error", err)
		}
	}

	// Best-effort display address; failure leaves it unset
	if rp.Geocoder != nil {
		if addr, err := rp.Geocoder.ReverseGeocode(req.Latitude, req.Longitude); err == nil {
			report.Location.Address = addr
		} else {
			zap.S().Warnw("reverse geocode failed", "error", err)
		}
	}

	insertedID, err := rp.RDB.InsertOne(ctx, report)
	if err != nil {
		config.ErrorStatus("failed to insert report", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}

	if _, err := rp.UDB.UpdateOne(ctx, bson.M{"_id": citizenID}, bson.M{"$inc": bson.M{"totalReports": 1}}); err != nil {
		zap.S().Errorw("failed to increment totalReports", "citizenId", req.CitizenID, "error", err)
	}

	go broadcastReportEvent("report_submitted", map[string]interface{}{
		"reportId": report.ReportID,
		"lat":      report.Location.Latitude,
		"lng":      report.Location.Longitude,
	})

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ReportByIDHandler returns a report given a reportID
func (rp Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	zap.S().Debugf("report_id: %v", reportID)

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := rp.RDB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
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

// ReportsHandler returns paginated reports, optionally filtered by status
func (rp Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ReportStatus(status).Valid() {
			config.ErrorStatus("unknown report status", http.StatusBadRequest, w, models.ErrValidation)
			return
		}
		filter["status"] = status
	}

	limit := queryInt(r, "limit", 50)
	page := queryInt(r, "page", 1)

	dbResp, err := rp.RDB.FindPaginated(context.Background(), filter, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsByCitizenIDHandler returns all reports submitted by a citizen
func (rp Report) ReportsByCitizenIDHandler(w http.ResponseWriter, r *http.Request) {
	citizenID := mux.Vars(r)["citizen_id"]

	dbResp, err := rp.RDB.Find(context.Background(), bson.M{"citizenId": citizenID})
	if err != nil {
		config.ErrorStatus("failed to get reports by citizen ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsByCollectorIDHandler returns all reports assigned to a collector
func (rp Report) ReportsByCollectorIDHandler(w http.ResponseWriter, r *http.Request) {
	collectorID := mux.Vars(r)["collector_id"]

	dbResp, err := rp.RDB.Find(context.Background(), bson.M{"assignedTo": collectorID})
	if err != nil {
		config.ErrorStatus("failed to get reports by collector ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerifyReportHandler moves a submitted report to verified or rejected
func (rp Report) VerifyReportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req verifyReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	next := models.StatusVerified
	if !req.Approve {
		next = models.StatusRejected
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "status": models.StatusSubmitted},
		bson.M{
			"$set": bson.M{
				"status":     next,
				"verifiedBy": req.AdminID,
				"updatedAt":  now,
			},
			"$push": bson.M{"statusHistory": models.StatusEntry{
				Status:    next,
				ChangedBy: req.AdminID,
				ChangedAt: now,
				Notes:     req.Notes,
			}},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		rp.writeTransitionError(ctx, w, rID, models.StatusSubmitted)
		return
	}

	rp.notifyCitizen(ctx, rID, string(next), "Your waste report has been "+string(next))
	rp.writeReport(ctx, w, rID)
}

// AssignReportHandler assigns a verified report to an active collector
func (rp Report) AssignReportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req assignReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	collectorID, err := primitive.ObjectIDFromHex(req.CollectorID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := rp.UDB.FindOne(ctx, bson.M{"_id": collectorID, "role": models.RoleCollector, "active": true}); err != nil {
		config.ErrorStatus("failed to get active collector by ID", http.StatusNotFound, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "status": models.StatusVerified},
		bson.M{
			"$set": bson.M{
				"status":     models.StatusAssigned,
				"assignedTo": req.CollectorID,
				"updatedAt":  now,
			},
			"$push": bson.M{"statusHistory": models.StatusEntry{
				Status:    models.StatusAssigned,
				ChangedBy: req.AdminID,
				ChangedAt: now,
			}},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		rp.writeTransitionError(ctx, w, rID, models.StatusVerified)
		return
	}

	rp.notifyCitizen(ctx, rID, string(models.StatusAssigned), "A collector has been assigned to your waste report")
	rp.writeReport(ctx, w, rID)
}

// StartCleanupHandler moves an assigned report to in_progress. Only the
// assigned collector may start, and a before-cleanup image is required.
func (rp Report) StartCleanupHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req startCleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.BeforeImageURL == "" {
		config.ErrorStatus("before-cleanup image is required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "status": models.StatusAssigned, "assignedTo": req.CollectorID},
		bson.M{
			"$set": bson.M{
				"status":               models.StatusInProgress,
				"images.beforeCleanup": models.ImageRef{URL: req.BeforeImageURL, UploadedBy: req.CollectorID, UploadedAt: now},
				"updatedAt":            now,
			},
			"$push": bson.M{"statusHistory": models.StatusEntry{
				Status:    models.StatusInProgress,
				ChangedBy: req.CollectorID,
				ChangedAt: now,
			}},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		rp.writeOwnedTransitionError(ctx, w, rID, models.StatusAssigned, req.CollectorID)
		return
	}

	rp.notifyCitizen(ctx, rID, string(models.StatusInProgress), "Cleanup of your reported waste has started")
	rp.writeReport(ctx, w, rID)
}

// CompleteReportHandler moves an in_progress report to completed, records
// the after-cleanup image and computes the actual cleanup time from the
// status history.
func (rp Report) CompleteReportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req completeReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.AfterImageURL == "" {
		config.ErrorStatus("after-cleanup image is required", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	completedAt := time.Now()
	cleanupMinutes := 0.0
	for _, entry := range report.StatusHistory {
		if entry.Status == models.StatusInProgress {
			cleanupMinutes = completedAt.Sub(entry.ChangedAt.Time()).Minutes()
		}
	}

	now := primitive.NewDateTimeFromTime(completedAt)
	res, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "status": models.StatusInProgress, "assignedTo": req.CollectorID},
		bson.M{
			"$set": bson.M{
				"status":              models.StatusCompleted,
				"images.afterCleanup": models.ImageRef{URL: req.AfterImageURL, UploadedBy: req.CollectorID, UploadedAt: now},
				"actualCleanupTime":   cleanupMinutes,
				"updatedAt":           now,
			},
			"$push": bson.M{"statusHistory": models.StatusEntry{
				Status:    models.StatusCompleted,
				ChangedBy: req.CollectorID,
				ChangedAt: now,
				Notes:     req.Notes,
			}},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		rp.writeOwnedTransitionError(ctx, w, rID, models.StatusInProgress, req.CollectorID)
		return
	}

	if citizenID, err := primitive.ObjectIDFromHex(report.CitizenID); err == nil {
		if _, err := rp.UDB.UpdateOne(ctx, bson.M{"_id": citizenID}, bson.M{"$inc": bson.M{"completedReports": 1}}); err != nil {
			zap.S().Errorw("failed to increment completedReports", "citizenId", report.CitizenID, "error", err)
		}
	}

	rp.notifyCitizen(ctx, rID, string(models.StatusCompleted), "Your reported waste has been cleaned up")
	rp.writeReport(ctx, w, rID)
}

// AwardPointsHandler awards points for a completed report exactly once and
// credits the citizen's balance. The award claim and the balance credit are
// one logical transaction: only the caller whose guarded update modifies the
// report performs the credit.
func (rp Report) AwardPointsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req awardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Points <= 0 {
		config.ErrorStatus("points must be positive", http.StatusBadRequest, w, models.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	// Claim the award: the filter pins both the completed status and the
	// zero pointsAwarded, so a second award can never match.
	res, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "status": models.StatusCompleted, "pointsAwarded": 0},
		bson.M{"$set": bson.M{
			"pointsAwarded": req.Points,
			"updatedAt":     primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		if report.Status != models.StatusCompleted {
			config.ErrorStatus("report is not completed", http.StatusConflict, w, models.ErrInvalidStateTransition)
			return
		}
		config.ErrorStatus("points already awarded for report", http.StatusConflict, w, models.ErrAlreadyAwarded)
		return
	}

	citizenID, err := primitive.ObjectIDFromHex(report.CitizenID)
	if err != nil {
		rp.releaseAward(ctx, rID, req.Points)
		config.ErrorStatus("failed to get objectID from Hex", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := rp.UDB.UpdateOne(ctx, bson.M{"_id": citizenID}, bson.M{"$inc": bson.M{"points": req.Points}}); err != nil {
		rp.releaseAward(ctx, rID, req.Points)
		config.ErrorStatus("failed to credit points", http.StatusInternalServerError, w, err)
		return
	}

	rp.notifyCitizen(ctx, rID, string(models.StatusCompleted),
		fmt.Sprintf("You earned %d points for your waste report", req.Points))
	rp.writeReport(ctx, w, rID)
}

// releaseAward compensates a claimed award when the balance credit fails,
// so a retry can claim it again. The filter pins the amount just written to
// avoid undoing a concurrent re-award.
func (rp Report) releaseAward(ctx context.Context, rID primitive.ObjectID, points int) {
	if _, err := rp.RDB.UpdateOne(ctx,
		bson.M{"_id": rID, "pointsAwarded": points},
		bson.M{"$set": bson.M{"pointsAwarded": 0}},
	); err != nil {
		zap.S().Errorw("failed to release points award", "reportId", rID.Hex(), "error", err)
	}
}

// NearbyReportsHandler returns reports within radiusKm of the given point
func (rp Report) NearbyReportsHandler(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil || !geo.ValidCoordinates(lat, lng) {
		config.ErrorStatus("invalid coordinates", http.StatusBadRequest, w, models.ErrValidation)
		return
	}
	radiusKm, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radiusKm <= 0 {
		radiusKm = 5
	}

	// Rough bounding box to keep the scan cheap; the haversine check below
	// is the authoritative filter.
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))
	filter := bson.M{
		"location.latitude": bson.M{"$gte": lat - latDelta, "$lte": lat + latDelta},
	}
	lngLow, lngHigh := lng-lngDelta, lng+lngDelta
	switch {
	case lngLow < -180:
		// Box crosses the antimeridian: match both sides of the seam.
		filter["$or"] = []bson.M{
			{"location.longitude": bson.M{"$gte": -180.0, "$lte": lngHigh}},
			{"location.longitude": bson.M{"$gte": lngLow + 360, "$lte": 180.0}},
		}
	case lngHigh > 180:
		filter["$or"] = []bson.M{
			{"location.longitude": bson.M{"$gte": lngLow, "$lte": 180.0}},
			{"location.longitude": bson.M{"$gte": -180.0, "$lte": lngHigh - 360}},
		}
	default:
		filter["location.longitude"] = bson.M{"$gte": lngLow, "$lte": lngHigh}
	}

	dbResp, err := rp.RDB.Find(context.Background(), filter)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}

	nearby := []models.Report{}
	for _, report := range dbResp {
		d := geo.HaversineKm(lat, lng, report.Location.Latitude, report.Location.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, report)
		}
	}

	b, err := json.Marshal(nearby)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HotspotsHandler buckets reports into ~1.1km grid cells and returns the
// cells with at least minReports reports, tagged by severity
func (rp Report) HotspotsHandler(w http.ResponseWriter, r *http.Request) {
	minReports := queryInt(r, "minReports", 3)

	dbResp, err := rp.RDB.Find(context.Background(), bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}

	type cell struct{ lat, lng float64 }
	counts := make(map[cell]int)
	for _, report := range dbResp {
		la, ln := geo.CellKey(report.Location.Latitude, report.Location.Longitude)
		counts[cell{la, ln}]++
	}

	hotspots := []models.Hotspot{}
	for c, count := range counts {
		if count >= minReports {
			hotspots = append(hotspots, models.Hotspot{
				CellLatitude:  c.lat,
				CellLongitude: c.lng,
				Count:         count,
				Severity:      geo.Severity(count),
			})
		}
	}

	b, err := json.Marshal(hotspots)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// writeTransitionError reports why a guarded status update matched nothing
func (rp Report) writeTransitionError(ctx context.Context, w http.ResponseWriter, rID primitive.ObjectID, expected models.ReportStatus) {
	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}
	config.ErrorStatus(
		fmt.Sprintf("report is %s, expected %s", report.Status, expected),
		http.StatusConflict, w, models.ErrInvalidStateTransition)
}

// writeOwnedTransitionError distinguishes a wrong-status failure from a
// not-the-assigned-collector failure
func (rp Report) writeOwnedTransitionError(ctx context.Context, w http.ResponseWriter, rID primitive.ObjectID, expected models.ReportStatus, collectorID string) {
	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}
	if report.Status == expected && report.AssignedTo != collectorID {
		config.ErrorStatus("caller is not the assigned collector", http.StatusForbidden, w, models.ErrPermissionDenied)
		return
	}
	config.ErrorStatus(
		fmt.Sprintf("report is %s, expected %s", report.Status, expected),
		http.StatusConflict, w, models.ErrInvalidStateTransition)
}

// writeReport returns the current state of a report after a mutation
func (rp Report) writeReport(ctx context.Context, w http.ResponseWriter, rID primitive.ObjectID) {
	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// notifyCitizen looks up the report's citizen and fans out notifications in
// the background
func (rp Report) notifyCitizen(ctx context.Context, rID primitive.ObjectID, status, message string) {
	report, err := rp.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		zap.S().Errorw("failed to load report for notification", "error", err)
		return
	}
	email, pushToken := "", ""
	if citizenID, err := primitive.ObjectIDFromHex(report.CitizenID); err == nil {
		if citizen, err := rp.UDB.FindOne(ctx, bson.M{"_id": citizenID}); err == nil {
			email = citizen.Email
			pushToken = citizen.PushToken
		}
	}
	go notifyStatusChange(report.ReportID, report.CitizenID, email, pushToken, status, message)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
