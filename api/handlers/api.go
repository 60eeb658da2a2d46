package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ecotrack/waste-report-api/api"
	"github.com/ecotrack/waste-report-api/api/scheduler"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	rp := Report{
		RDB:        databases.NewReportDatabase(a.dbHelper),
		UDB:        databases.NewUserDatabase(a.dbHelper),
		CDB:        databases.NewCounterDatabase(a.dbHelper),
		Classifier: RandomClassifier{},
		Geocoder:   NewNominatimGeocoder(),
	}
	rw := Reward{
		RWD:  databases.NewRewardDatabase(a.dbHelper),
		UDB:  databases.NewUserDatabase(a.dbHelper),
		RDMP: databases.NewRedemptionDatabase(a.dbHelper),
	}
	rd := Redemption{DB: databases.NewRedemptionDatabase(a.dbHelper)}
	adm := Admin{
		ADB: databases.NewAdminDatabase(a.dbHelper),
		RDB: databases.NewAdminResetDatabase(a.dbHelper),
	}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/report", api.Middleware(http.HandlerFunc(rp.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(rp.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}/verify", api.Middleware(http.HandlerFunc(rp.VerifyReportHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/assign", api.Middleware(http.HandlerFunc(rp.AssignReportHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/start", api.Middleware(http.HandlerFunc(rp.StartCleanupHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/complete", api.Middleware(http.HandlerFunc(rp.CompleteReportHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/award", api.Middleware(http.HandlerFunc(rp.AwardPointsHandler))).Methods("POST")

	apiCreate.Handle("/reports/nearby", api.Middleware(http.HandlerFunc(rp.NearbyReportsHandler))).Methods("GET")
	apiCreate.Handle("/reports/hotspots", api.Middleware(http.HandlerFunc(rp.HotspotsHandler))).Methods("GET")
	apiCreate.Handle("/reports/citizen/{citizen_id}", api.Middleware(http.HandlerFunc(rp.ReportsByCitizenIDHandler))).Methods("GET")
	apiCreate.Handle("/reports/collector/{collector_id}", api.Middleware(http.HandlerFunc(rp.ReportsByCollectorIDHandler))).Methods("GET")
	apiCreate.Handle("/reports", api.Middleware(http.HandlerFunc(rp.ReportsHandler))).Methods("GET")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/points", api.Middleware(http.HandlerFunc(u.AdjustPointsHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}/points/add", api.Middleware(http.HandlerFunc(u.AddPointsHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}/points/deduct", api.Middleware(http.HandlerFunc(u.DeductPointsHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}/push-token", api.Middleware(http.HandlerFunc(u.UpdatePushTokenHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserByIDHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users/leaderboard", api.Middleware(http.HandlerFunc(u.LeaderboardHandler))).Methods("GET")

	apiCreate.Handle("/reward", api.Middleware(http.HandlerFunc(rw.CreateRewardHandler))).Methods("POST")
	apiCreate.Handle("/reward/{reward_id}/redeem", api.Middleware(http.HandlerFunc(rw.RedeemRewardHandler))).Methods("POST")
	apiCreate.Handle("/reward/{reward_id}", api.Middleware(http.HandlerFunc(rw.RewardByIDHandler))).Methods("GET")
	apiCreate.Handle("/reward/{reward_id}", api.Middleware(http.HandlerFunc(rw.UpdateRewardHandler))).Methods("PUT")
	apiCreate.Handle("/rewards", api.Middleware(http.HandlerFunc(rw.RewardsHandler))).Methods("GET")

	apiCreate.Handle("/redemptions/user/{user_id}", api.Middleware(http.HandlerFunc(rd.RedemptionsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/redemption/{redemption_id}/use", api.Middleware(http.HandlerFunc(rd.MarkRedemptionUsedHandler))).Methods("PUT")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/forgot-password", http.HandlerFunc(adm.AdminForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/admin/reset-password", http.HandlerFunc(adm.AdminResetPasswordHandler)).Methods("POST")

	apiCreate.Handle("/upload", api.Middleware(http.HandlerFunc(cloudinaryHandler.UploadImageHandler))).Methods("POST")
	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("waste-report-api has connected to the database")

	if err := InitCloudinary(); err != nil {
		zap.S().Warnw("cloudinary not configured, uploads disabled", "error", err)
	}

	a.Scheduler = scheduler.NewScheduler(
		databases.NewRedemptionDatabase(a.dbHelper),
		databases.NewRewardDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
