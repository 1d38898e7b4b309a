package fleet

import "context"

// VehicleRepository persists vehicle identities.
type VehicleRepository interface {
	// Upsert atomically creates the vehicle bound to externalSessionID or,
	// when the binding already exists, updates its display name. Exactly
	// one row per external session id, regardless of concurrent callers.
	// The boolean reports whether the row was created by this call.
	Upsert(ctx context.Context, externalSessionID, displayName string) (*Vehicle, bool, error)
	// GetByID loads a vehicle by surrogate id; ErrVehicleNotFound when absent.
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
}

// PositionRepository persists and reads position observations.
type PositionRepository interface {
	// Insert appends one immutable row and fills position.ID.
	Insert(ctx context.Context, position *Position) error
	// ListByVehicle returns the vehicle's positions ordered by capture time
	// ascending, ties broken by surrogate id ascending.
	ListByVehicle(ctx context.Context, vehicleID int64) ([]Position, error)
	// StatsByVehicle computes count/min/max in one pass.
	StatsByVehicle(ctx context.Context, vehicleID int64) (VehicleStats, error)
	// StatsAll computes count/min/max for every known vehicle, including
	// vehicles with no positions.
	StatsAll(ctx context.Context) ([]VehicleStats, error)
}
