package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	fleet "fleet-monitor/internal/fleet/domain"
)

// VehicleRepository is an in-memory repository for vehicles.
type VehicleRepository struct {
	mu        sync.Mutex
	nextID    int64
	bySession map[string]*fleet.Vehicle
	byID      map[int64]*fleet.Vehicle
}

// NewVehicleRepository constructs a repository.
func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{
		nextID:    1,
		bySession: make(map[string]*fleet.Vehicle),
		byID:      make(map[int64]*fleet.Vehicle),
	}
}

// Upsert creates or renames the vehicle under one lock, mirroring the
// atomicity of the Postgres statement.
func (r *VehicleRepository) Upsert(ctx context.Context, externalSessionID, displayName string) (*fleet.Vehicle, bool, error) {
	_ = ctx
	if externalSessionID == "" {
		return nil, false, fleet.ErrEmptySessionID
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, false, fleet.ErrEmptyDisplayName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if vehicle, ok := r.bySession[externalSessionID]; ok {
		vehicle.DisplayName = displayName
		return cloneVehicle(vehicle), false, nil
	}

	vehicle := &fleet.Vehicle{
		ID:                r.nextID,
		ExternalSessionID: externalSessionID,
		DisplayName:       displayName,
		CreatedAt:         time.Now().UTC(),
	}
	r.nextID++
	r.bySession[externalSessionID] = vehicle
	r.byID[vehicle.ID] = vehicle
	return cloneVehicle(vehicle), true, nil
}

// GetByID loads a vehicle by surrogate id.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*fleet.Vehicle, error) {
	_ = ctx
	if id <= 0 {
		return nil, fleet.ErrInvalidVehicleID
	}

	r.mu.Lock()
	vehicle := r.byID[id]
	r.mu.Unlock()
	if vehicle == nil {
		return nil, fleet.ErrVehicleNotFound
	}
	return cloneVehicle(vehicle), nil
}

// List returns all vehicles ordered by id, for assertion convenience.
func (r *VehicleRepository) List(ctx context.Context) ([]fleet.Vehicle, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]fleet.Vehicle, 0, len(r.byID))
	for id := int64(1); id < r.nextID; id++ {
		if vehicle, ok := r.byID[id]; ok {
			result = append(result, *vehicle)
		}
	}
	return result, nil
}

func cloneVehicle(vehicle *fleet.Vehicle) *fleet.Vehicle {
	copied := *vehicle
	return &copied
}
