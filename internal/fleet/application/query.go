package application

import (
	"context"
	"errors"

	fleet "fleet-monitor/internal/fleet/domain"
)

// TrajectoryReader serves the time-ordered sequence of a vehicle's positions.
type TrajectoryReader struct {
	vehicles  fleet.VehicleRepository
	positions fleet.PositionRepository
}

// NewTrajectoryReader constructs a reader.
func NewTrajectoryReader(vehicles fleet.VehicleRepository, positions fleet.PositionRepository) (*TrajectoryReader, error) {
	if vehicles == nil {
		return nil, errors.New("trajectory reader: nil vehicle repository")
	}
	if positions == nil {
		return nil, errors.New("trajectory reader: nil position repository")
	}
	return &TrajectoryReader{vehicles: vehicles, positions: positions}, nil
}

// Trajectory returns the vehicle and its positions ordered by capture time.
// Unknown vehicle is an error; a known vehicle with no positions yields an
// empty sequence.
func (r *TrajectoryReader) Trajectory(ctx context.Context, vehicleID int64) (*fleet.Vehicle, []fleet.Position, error) {
	vehicle, err := r.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	positions, err := r.positions.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	return vehicle, positions, nil
}

// StatsAggregator serves per-vehicle count and first/last capture time.
type StatsAggregator struct {
	positions fleet.PositionRepository
}

// NewStatsAggregator constructs an aggregator.
func NewStatsAggregator(positions fleet.PositionRepository) (*StatsAggregator, error) {
	if positions == nil {
		return nil, errors.New("stats aggregator: nil position repository")
	}
	return &StatsAggregator{positions: positions}, nil
}

// StatsFor computes one vehicle's aggregate in a single pass.
func (a *StatsAggregator) StatsFor(ctx context.Context, vehicleID int64) (fleet.VehicleStats, error) {
	return a.positions.StatsByVehicle(ctx, vehicleID)
}

// StatsAll computes the aggregate for every known vehicle.
func (a *StatsAggregator) StatsAll(ctx context.Context) ([]fleet.VehicleStats, error) {
	return a.positions.StatsAll(ctx)
}
