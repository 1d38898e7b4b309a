// Package apihttp exposes the direct ingestion and read-side endpoints.
package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fleet-monitor/internal/fleet/application"
	fleet "fleet-monitor/internal/fleet/domain"
	"fleet-monitor/internal/observability/metrics"
)

const timeLayout = time.RFC3339

// PositionHandler serves the direct position ingestion endpoint.
type PositionHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewPositionHandler constructs a PositionHandler.
func NewPositionHandler(service *application.TrackingService, logger *zap.SugaredLogger) *PositionHandler {
	return &PositionHandler{service: service, logger: logger}
}

type positionRequest struct {
	ExternalID string   `json:"externalId"`
	Username   string   `json:"username"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Timestamp  string   `json:"timestamp"`
}

// ServeHTTP handles POST /position. Validation rejects the request before
// anything is persisted; on success both the identity binding and the
// position are durable.
func (h *PositionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	start := time.Now()

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, start, "body", "request body must be JSON")
		return
	}
	if req.Username == "" {
		h.reject(w, start, "username", "username is required")
		return
	}
	if req.Latitude == nil {
		h.reject(w, start, "latitude", "latitude is required")
		return
	}
	if req.Longitude == nil {
		h.reject(w, start, "longitude", "longitude is required")
		return
	}

	var capturedAt time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(timeLayout, req.Timestamp)
		if err != nil {
			h.reject(w, start, "timestamp", "timestamp must be RFC3339")
			return
		}
		capturedAt = parsed.UTC()
	}

	// Callers without a session of their own get a synthetic one derived
	// from the username, so repeated reports land on the same vehicle.
	externalID := req.ExternalID
	if externalID == "" {
		externalID = "api:" + req.Username
	}

	_, err := h.service.Record(r.Context(), externalID, req.Username, *req.Latitude, *req.Longitude, capturedAt)
	if err != nil {
		if fleet.IsValidation(err) {
			h.reject(w, start, reasonLabel(err), err.Error())
			return
		}
		h.logger.Errorw("position ingest failed", "external_id", externalID, "error", err)
		metrics.ObserveIngest(metrics.SourceAPI, metrics.ResultError, time.Since(start))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	metrics.ObserveIngest(metrics.SourceAPI, metrics.ResultSuccess, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *PositionHandler) reject(w http.ResponseWriter, start time.Time, reason, message string) {
	metrics.IncIngestError(reason)
	metrics.ObserveIngest(metrics.SourceAPI, metrics.ResultError, time.Since(start))
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// TrajectoryHandler serves per-vehicle trajectory queries.
type TrajectoryHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewTrajectoryHandler constructs a TrajectoryHandler.
func NewTrajectoryHandler(service *application.TrackingService, logger *zap.SugaredLogger) *TrajectoryHandler {
	return &TrajectoryHandler{service: service, logger: logger}
}

type trajectoryResponse struct {
	Username  string             `json:"username"`
	Positions []positionResponse `json:"positions"`
}

type positionResponse struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

// ServeHTTP handles GET /trajectory/{vehicleID}.
func (h *TrajectoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	vehicleID, err := parseVehicleID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	vehicle, positions, err := h.service.Trajectory(r.Context(), vehicleID)
	if err != nil {
		h.writeError(w, vehicleID, err)
		return
	}

	resp := trajectoryResponse{
		Username:  vehicle.DisplayName,
		Positions: make([]positionResponse, 0, len(positions)),
	}
	for _, pos := range positions {
		resp.Positions = append(resp.Positions, positionResponse{
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			Timestamp: pos.CapturedAt.UTC().Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TrajectoryHandler) writeError(w http.ResponseWriter, vehicleID int64, err error) {
	if errors.Is(err, fleet.ErrVehicleNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "vehicle not found"})
		return
	}
	h.logger.Errorw("trajectory query failed", "vehicle_id", vehicleID, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// StatsHandler serves fleet-wide aggregates.
type StatsHandler struct {
	service *application.TrackingService
	logger  *zap.SugaredLogger
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(service *application.TrackingService, logger *zap.SugaredLogger) *StatsHandler {
	return &StatsHandler{service: service, logger: logger}
}

type statsRow struct {
	VehicleID       int64   `json:"vehicleId"`
	Username        string  `json:"username"`
	Count           int64   `json:"count"`
	FirstCapturedAt *string `json:"firstCapturedAt"`
	LastCapturedAt  *string `json:"lastCapturedAt"`
}

// ServeHTTP handles GET /stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	stats, err := h.service.StatsAll(r.Context())
	if err != nil {
		h.logger.Errorw("stats query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	rows := make([]statsRow, 0, len(stats))
	for _, item := range stats {
		rows = append(rows, statsRow{
			VehicleID:       item.VehicleID,
			Username:        item.DisplayName,
			Count:           item.Count,
			FirstCapturedAt: formatOptionalTime(item.FirstCapturedAt),
			LastCapturedAt:  formatOptionalTime(item.LastCapturedAt),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func parseVehicleID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["vehicleID"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("vehicleID must be a positive integer")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func formatOptionalTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(timeLayout)
	return &formatted
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, fleet.ErrLatitudeRange):
		return "latitude"
	case errors.Is(err, fleet.ErrLongitudeRange):
		return "longitude"
	case errors.Is(err, fleet.ErrNonFiniteCoordinate):
		return "coordinate"
	case errors.Is(err, fleet.ErrEmptyDisplayName):
		return "username"
	case errors.Is(err, fleet.ErrInvalidCapturedAt):
		return "timestamp"
	default:
		return "validation"
	}
}
