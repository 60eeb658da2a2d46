package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location holds the reported waste coordinates plus a best-effort
// reverse-geocoded display address
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// ImageRef is a stored reference to an uploaded image; the API never
// interprets image content
type ImageRef struct {
	URL        string             `bson:"url" json:"url"`
	UploadedBy string             `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt primitive.DateTime `bson:"uploadedAt" json:"uploadedAt"`
}

// ReportImages groups the images attached over the report's lifetime
type ReportImages struct {
	Original      *ImageRef `bson:"original,omitempty" json:"original,omitempty"`
	BeforeCleanup *ImageRef `bson:"beforeCleanup,omitempty" json:"beforeCleanup,omitempty"`
	AfterCleanup  *ImageRef `bson:"afterCleanup,omitempty" json:"afterCleanup,omitempty"`
}

// Classification is the opaque annotation returned by the waste classifier.
// It is informational only; no lifecycle operation gates on it.
type Classification struct {
	IsWaste    bool    `bson:"isWaste" json:"isWaste"`
	WasteType  string  `bson:"wasteType" json:"wasteType"`
	Confidence float64 `bson:"confidence" json:"confidence"`
}

// StatusEntry is one append-only audit record of a status change
type StatusEntry struct {
	Status    ReportStatus       `bson:"status" json:"status"`
	ChangedBy string             `bson:"changedBy" json:"changedBy"`
	ChangedAt primitive.DateTime `bson:"changedAt" json:"changedAt"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Report holds the structure for the report collection in mongo
type Report struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ReportID           string             `bson:"reportId" json:"reportId"`
	CitizenID          string             `bson:"citizenId" json:"citizenId"`
	Description        string             `bson:"description" json:"description"`
	WasteType          string             `bson:"wasteType" json:"wasteType"`
	Location           Location           `bson:"location" json:"location"`
	Images             ReportImages       `bson:"images" json:"images"`
	Classification     *Classification    `bson:"classification,omitempty" json:"classification,omitempty"`
	Status             ReportStatus       `bson:"status" json:"status"`
	Priority           string             `bson:"priority" json:"priority"`
	AssignedTo         string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	VerifiedBy         string             `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	PointsAwarded      int                `bson:"pointsAwarded" json:"pointsAwarded"`
	ActualCleanupTime  float64            `bson:"actualCleanupTime,omitempty" json:"actualCleanupTime,omitempty"`
	StatusHistory      []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	CreatedAt          primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt          primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// Hotspot is a grid cell with report density at or above the requested
// threshold. Cells are lat/lng rounded to 2 decimal places (~1.1km).
type Hotspot struct {
	CellLatitude  float64 `json:"cellLatitude"`
	CellLongitude float64 `json:"cellLongitude"`
	Count         int     `json:"count"`
	Severity      string  `json:"severity"`
}
