// Package docs EcoTrack Waste Report API.
//
// Documentation of the EcoTrack waste report and rewards API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.ecotrack.city
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/ecotrack/waste-report-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/report/{report_id} report reportByID
// Gets a single waste report by ID.
// responses:
//   200: reportByIDResponse

// Shows a single waste report with its status history.
// swagger:response reportByIDResponse
type reportByIDResponseWrapper struct {
	// in:body
	Body models.Report
}

// swagger:route GET /api/v1/reports report reports
// Lists waste reports, optionally filtered by status.
// responses:
//   200: reportsResponse

// A page of waste reports.
// swagger:response reportsResponse
type reportsResponseWrapper struct {
	// in:body
	Body []models.Report
}

// swagger:route GET /api/v1/reports/hotspots report hotspots
// Lists grid cells with high report density.
// responses:
//   200: hotspotsResponse

// Grid cells with at least the requested number of reports.
// swagger:response hotspotsResponse
type hotspotsResponseWrapper struct {
	// in:body
	Body []models.Hotspot
}

// swagger:route GET /api/v1/user/{user_id} user userByID
// Gets a single user by ID.
// responses:
//   200: userByIDResponse

// Shows a single user with their point balance.
// swagger:response userByIDResponse
type userByIDResponseWrapper struct {
	// in:body
	Body models.User
}

// swagger:route GET /api/v1/users/leaderboard user leaderboard
// Lists the top point balances among citizens.
// responses:
//   200: leaderboardResponse

// The points leaderboard, highest balance first.
// swagger:response leaderboardResponse
type leaderboardResponseWrapper struct {
	// in:body
	Body []models.LeaderboardEntry
}

// swagger:route GET /api/v1/rewards reward rewards
// Lists currently redeemable rewards.
// responses:
//   200: rewardsResponse

// The reward catalog.
// swagger:response rewardsResponse
type rewardsResponseWrapper struct {
	// in:body
	Body []models.Reward
}

// swagger:route GET /api/v1/redemptions/user/{user_id} redemption redemptionsByUserID
// Lists a user's redemptions.
// responses:
//   200: redemptionsByUserIDResponse

// All redemptions belonging to a user.
// swagger:response redemptionsByUserIDResponse
type redemptionsByUserIDResponseWrapper struct {
	// in:body
	Body []models.Redemption
}
