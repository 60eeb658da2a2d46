package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ecotrack/waste-report-api/api/handlers"
	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/logging"
)

func main() {
	flush := logging.Init()
	defer flush()

	a := handlers.App{}
	a.Config = *config.New()

	a.Initialize() //initialize database and router

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("waste-report-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
