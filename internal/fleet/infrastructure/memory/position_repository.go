package memory

import (
	"context"
	"sort"
	"sync"

	fleet "fleet-monitor/internal/fleet/domain"
)

// PositionRepository is an in-memory repository for positions. It joins
// against a VehicleRepository for the fleet-wide stats, the way the
// Postgres implementation joins the vehicles table.
type PositionRepository struct {
	mu       sync.Mutex
	nextID   int64
	rows     []fleet.Position
	vehicles *VehicleRepository
}

// NewPositionRepository constructs a repository.
func NewPositionRepository(vehicles *VehicleRepository) *PositionRepository {
	return &PositionRepository{nextID: 1, vehicles: vehicles}
}

// Insert appends one row and fills the surrogate id.
func (r *PositionRepository) Insert(ctx context.Context, position *fleet.Position) error {
	_ = ctx
	if position == nil {
		return fleet.ErrInvalidVehicleID
	}
	if position.VehicleID <= 0 {
		return fleet.ErrInvalidVehicleID
	}
	if position.CapturedAt.IsZero() {
		return fleet.ErrInvalidCapturedAt
	}

	r.mu.Lock()
	position.ID = r.nextID
	r.nextID++
	stored := *position
	stored.CapturedAt = stored.CapturedAt.UTC()
	r.rows = append(r.rows, stored)
	r.mu.Unlock()
	return nil
}

// ListByVehicle returns positions ordered by capture time, surrogate id.
func (r *PositionRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]fleet.Position, error) {
	_ = ctx
	if vehicleID <= 0 {
		return nil, fleet.ErrInvalidVehicleID
	}

	r.mu.Lock()
	var result []fleet.Position
	for _, row := range r.rows {
		if row.VehicleID == vehicleID {
			result = append(result, row)
		}
	}
	r.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CapturedAt.Equal(result[j].CapturedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CapturedAt.Before(result[j].CapturedAt)
	})
	return result, nil
}

// StatsByVehicle computes count/min/max for one vehicle.
func (r *PositionRepository) StatsByVehicle(ctx context.Context, vehicleID int64) (fleet.VehicleStats, error) {
	vehicle, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return fleet.VehicleStats{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsLocked(vehicle), nil
}

// StatsAll computes count/min/max for every known vehicle.
func (r *PositionRepository) StatsAll(ctx context.Context) ([]fleet.VehicleStats, error) {
	vehicles, err := r.vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		if vehicles[i].DisplayName == vehicles[j].DisplayName {
			return vehicles[i].ID < vehicles[j].ID
		}
		return vehicles[i].DisplayName < vehicles[j].DisplayName
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]fleet.VehicleStats, 0, len(vehicles))
	for i := range vehicles {
		result = append(result, r.statsLocked(&vehicles[i]))
	}
	return result, nil
}

func (r *PositionRepository) statsLocked(vehicle *fleet.Vehicle) fleet.VehicleStats {
	stats := fleet.VehicleStats{VehicleID: vehicle.ID, DisplayName: vehicle.DisplayName}
	for _, row := range r.rows {
		if row.VehicleID != vehicle.ID {
			continue
		}
		stats.Count++
		ts := row.CapturedAt
		if stats.FirstCapturedAt == nil || ts.Before(*stats.FirstCapturedAt) {
			first := ts
			stats.FirstCapturedAt = &first
		}
		if stats.LastCapturedAt == nil || ts.After(*stats.LastCapturedAt) {
			last := ts
			stats.LastCapturedAt = &last
		}
	}
	return stats
}
