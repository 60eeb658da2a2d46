// Package geo holds the pure geospatial helpers behind the nearby and
// hotspot queries.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// Hotspot severity thresholds by report count per cell
const (
	mediumThreshold = 10
	highThreshold   = 20
)

// HaversineKm returns the great-circle distance in kilometers between two
// lat/lng points
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidCoordinates reports whether lat/lng fall within the valid ranges
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CellKey buckets a coordinate into a grid cell by rounding both axes to
// 2 decimal places, roughly 1.1km per cell
func CellKey(lat, lng float64) (float64, float64) {
	return math.Round(lat*100) / 100, math.Round(lng*100) / 100
}

// Severity tags a cell's report count as low, medium or high
func Severity(count int) string {
	switch {
	case count >= highThreshold:
		return "high"
	case count >= mediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
