package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"fleet-monitor/internal/audit"
	fleet "fleet-monitor/internal/fleet/domain"
)

// Clock abstracts time for ingestion-time defaulting.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// TrackingService is the ingestion façade: it sequences identity
// resolution, position writes and the read-side queries for every caller,
// conversational or direct.
type TrackingService struct {
	resolver *IdentityResolver
	writer   *PositionWriter
	reader   *TrajectoryReader
	stats    *StatsAggregator
	auditLog audit.Logger
	clock    Clock
	logger   *zap.SugaredLogger
}

// ServiceOption configures the tracking service.
type ServiceOption func(*TrackingService)

// WithAuditLogger records identity changes to a durable audit log.
func WithAuditLogger(logger audit.Logger) ServiceOption {
	return func(s *TrackingService) {
		s.auditLog = logger
	}
}

// WithClock overrides the ingestion-time clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *TrackingService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewTrackingService constructs the façade over the two repositories.
func NewTrackingService(vehicles fleet.VehicleRepository, positions fleet.PositionRepository, logger *zap.SugaredLogger, opts ...ServiceOption) (*TrackingService, error) {
	if logger == nil {
		return nil, errors.New("tracking service: nil logger")
	}
	resolver, err := NewIdentityResolver(vehicles)
	if err != nil {
		return nil, err
	}
	writer, err := NewPositionWriter(positions)
	if err != nil {
		return nil, err
	}
	reader, err := NewTrajectoryReader(vehicles, positions)
	if err != nil {
		return nil, err
	}
	stats, err := NewStatsAggregator(positions)
	if err != nil {
		return nil, err
	}

	service := &TrackingService{
		resolver: resolver,
		writer:   writer,
		reader:   reader,
		stats:    stats,
		clock:    systemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Register binds the session to a vehicle identity under the proposed
// display name and records the identity change.
func (s *TrackingService) Register(ctx context.Context, externalSessionID, displayName string) (*fleet.Vehicle, error) {
	vehicle, created, err := s.resolver.Resolve(ctx, externalSessionID, displayName)
	if err != nil {
		return nil, err
	}

	action := audit.ActionVehicleRenamed
	if created {
		action = audit.ActionVehicleRegistered
	}
	s.audit(ctx, audit.Entry{
		Action:    action,
		VehicleID: vehicle.ID,
		SessionID: externalSessionID,
		Detail:    audit.NameDetail(vehicle.DisplayName),
	})
	s.logger.Infow("vehicle resolved",
		"vehicle_id", vehicle.ID,
		"session_id", externalSessionID,
		"display_name", vehicle.DisplayName,
		"created", created,
	)
	return vehicle, nil
}

// Record is the single-shot ingestion path: resolve the identity, then
// append one position. A zero capture time takes the ingestion time.
// Validation is rejected before any mutation; a vehicle created without a
// position (writer failure after resolve) is tolerated, the next report
// re-resolves the existing binding.
func (s *TrackingService) Record(ctx context.Context, externalSessionID, displayName string, latitude, longitude float64, capturedAt time.Time) (*fleet.Position, error) {
	if err := fleet.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	if capturedAt.IsZero() {
		capturedAt = s.clock.Now()
	}

	vehicle, _, err := s.resolver.Resolve(ctx, externalSessionID, displayName)
	if err != nil {
		return nil, err
	}
	position, err := s.writer.Append(ctx, vehicle.ID, latitude, longitude, capturedAt)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("position recorded",
		"vehicle_id", vehicle.ID,
		"position_id", position.ID,
		"captured_at", position.CapturedAt,
	)
	return position, nil
}

// Trajectory returns the vehicle and its positions ordered by capture time.
func (s *TrackingService) Trajectory(ctx context.Context, vehicleID int64) (*fleet.Vehicle, []fleet.Position, error) {
	return s.reader.Trajectory(ctx, vehicleID)
}

// StatsFor returns one vehicle's aggregate.
func (s *TrackingService) StatsFor(ctx context.Context, vehicleID int64) (fleet.VehicleStats, error) {
	return s.stats.StatsFor(ctx, vehicleID)
}

// StatsAll returns the aggregate for every known vehicle.
func (s *TrackingService) StatsAll(ctx context.Context) ([]fleet.VehicleStats, error) {
	return s.stats.StatsAll(ctx)
}

func (s *TrackingService) audit(ctx context.Context, entry audit.Entry) {
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.Warnw("audit write failed", "action", entry.Action, "error", err)
	}
}
