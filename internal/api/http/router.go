package apihttp

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fleet-monitor/internal/fleet/application"
)

// NewRouter mounts every endpoint. The webhook handler is optional; an
// API-only deployment passes nil.
func NewRouter(service *application.TrackingService, webhook http.Handler, logger *zap.SugaredLogger) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/position", NewPositionHandler(service, logger)).Methods(http.MethodPost)
	router.Handle("/trajectory/{vehicleID}", NewTrajectoryHandler(service, logger)).Methods(http.MethodGet)
	router.Handle("/stats", NewStatsHandler(service, logger)).Methods(http.MethodGet)

	router.Handle("/exports/trajectory/{vehicleID:[0-9]+}.csv", NewExportTrajectoryCSVHandler(service, logger)).Methods(http.MethodGet)
	router.Handle("/exports/trajectory/{vehicleID:[0-9]+}.xlsx", NewExportTrajectoryXLSXHandler(service, logger)).Methods(http.MethodGet)
	router.Handle("/exports/fleet.pdf", NewExportFleetPDFHandler(service, logger)).Methods(http.MethodGet)

	if webhook != nil {
		router.Handle("/telegram/webhook/{secret}", webhook).Methods(http.MethodPost)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return router
}
