package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecotrack/waste-report-api/api/handlers/geo"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	d := geo.HaversineKm(40.7128, -74.0060, 40.7128, -74.0060)
	assert.Equal(t, 0.0, d)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	ab := geo.HaversineKm(40.7128, -74.0060, 41.9, -87.6)
	ba := geo.HaversineKm(41.9, -87.6, 40.7128, -74.0060)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// New York to Chicago is roughly 1144km
	d := geo.HaversineKm(40.7128, -74.0060, 41.8781, -87.6298)
	assert.InDelta(t, 1144, d, 10)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, geo.ValidCoordinates(40.7128, -74.0060))
	assert.True(t, geo.ValidCoordinates(-90, 180))
	assert.False(t, geo.ValidCoordinates(90.1, 0))
	assert.False(t, geo.ValidCoordinates(0, -180.5))
}

func TestCellKey(t *testing.T) {
	lat, lng := geo.CellKey(40.71281, -74.00604)
	assert.Equal(t, 40.71, lat)
	assert.Equal(t, -74.01, lng)

	// nearby points share a cell
	lat2, lng2 := geo.CellKey(40.71449, -74.00551)
	assert.Equal(t, lat, lat2)
	assert.Equal(t, lng, lng2)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "low", geo.Severity(1))
	assert.Equal(t, "low", geo.Severity(9))
	assert.Equal(t, "medium", geo.Severity(10))
	assert.Equal(t, "medium", geo.Severity(19))
	assert.Equal(t, "high", geo.Severity(20))
	assert.Equal(t, "high", geo.Severity(57))
}
