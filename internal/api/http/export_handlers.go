package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fleet-monitor/internal/export"
	"fleet-monitor/internal/fleet/application"
	fleet "fleet-monitor/internal/fleet/domain"
	"fleet-monitor/internal/observability/metrics"
)

// ExportTrajectoryCSVHandler serves trajectory CSV downloads.
type ExportTrajectoryCSVHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewExportTrajectoryCSVHandler constructs a ExportTrajectoryCSVHandler.
func NewExportTrajectoryCSVHandler(service *application.TrackingService, logger *zap.SugaredLogger) *ExportTrajectoryCSVHandler {
	return &ExportTrajectoryCSVHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /exports/trajectory/{vehicleID}.csv.
func (h *ExportTrajectoryCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveTrajectoryExport(w, r, h.service, h.logger, "csv", export.BuildTrajectoryCSV,
		"text/csv; charset=utf-8", "trajectory_%d.csv")
}

// ExportTrajectoryXLSXHandler serves trajectory workbook downloads.
type ExportTrajectoryXLSXHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewExportTrajectoryXLSXHandler constructs a ExportTrajectoryXLSXHandler.
func NewExportTrajectoryXLSXHandler(service *application.TrackingService, logger *zap.SugaredLogger) *ExportTrajectoryXLSXHandler {
	return &ExportTrajectoryXLSXHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /exports/trajectory/{vehicleID}.xlsx.
func (h *ExportTrajectoryXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveTrajectoryExport(w, r, h.service, h.logger, "xlsx", export.BuildTrajectoryXLSX,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "trajectory_%d.xlsx")
}

// ExportFleetPDFHandler serves the fleet statistics PDF report.
type ExportFleetPDFHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewExportFleetPDFHandler constructs a ExportFleetPDFHandler.
func NewExportFleetPDFHandler(service *application.TrackingService, logger *zap.SugaredLogger) *ExportFleetPDFHandler {
	return &ExportFleetPDFHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /exports/fleet.pdf.
func (h *ExportFleetPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	start := time.Now()

	stats, err := h.service.StatsAll(r.Context())
	if err != nil {
		h.logger.Errorw("fleet export failed", "error", err)
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	payload, err := export.BuildFleetStatsPDF(stats, time.Now())
	if err != nil {
		h.logger.Errorw("fleet pdf build failed", "error", err)
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="fleet.pdf"`)
	_, _ = w.Write(payload)
}

type trajectoryBuilder func(*fleet.Vehicle, []fleet.Position) ([]byte, error)

func serveTrajectoryExport(w http.ResponseWriter, r *http.Request, service *application.TrackingService, logger *zap.SugaredLogger, format string, build trajectoryBuilder, contentType, filenamePattern string) {
	if service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	start := time.Now()

	vehicleID, err := parseVehicleID(r)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	vehicle, positions, err := service.Trajectory(r.Context(), vehicleID)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		if errors.Is(err, fleet.ErrVehicleNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "vehicle not found"})
			return
		}
		logger.Errorw("trajectory export failed", "vehicle_id", vehicleID, "format", format, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	payload, err := build(vehicle, positions)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		logger.Errorw("trajectory export build failed", "vehicle_id", vehicleID, "format", format, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="`+filenamePattern+`"`, vehicleID))
	_, _ = w.Write(payload)
}
