package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	fleet "fleet-monitor/internal/fleet/domain"
)

const defaultVehiclesTable = "vehicles"

// VehicleRepository is a Postgres implementation for vehicles.
type VehicleRepository struct {
	db    *sql.DB
	table string
}

// NewVehicleRepository constructs a repository with default table name.
func NewVehicleRepository(db *sql.DB, opts ...VehicleOption) *VehicleRepository {
	repo := &VehicleRepository{db: db, table: defaultVehiclesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// VehicleOption configures the repository.
type VehicleOption func(*VehicleRepository)

// WithVehicleTable overrides the default table name.
func WithVehicleTable(table string) VehicleOption {
	return func(repo *VehicleRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Upsert creates or renames the vehicle bound to externalSessionID in a
// single statement. The conflict target is the unique external session id,
// so two concurrent first contacts resolve to one row with the last
// proposed name winning.
func (r *VehicleRepository) Upsert(ctx context.Context, externalSessionID, displayName string) (*fleet.Vehicle, bool, error) {
	if r == nil || r.db == nil {
		return nil, false, errors.New("vehicle repo: nil db")
	}
	if externalSessionID == "" {
		return nil, false, fleet.ErrEmptySessionID
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, false, fleet.ErrEmptyDisplayName
	}

	// xmax = 0 marks a freshly inserted row, distinguishing create from rename.
	query := fmt.Sprintf(`
INSERT INTO %s (
	external_session_id,
	display_name
) VALUES (
	$1, $2
)
ON CONFLICT (external_session_id)
DO UPDATE SET
	display_name = EXCLUDED.display_name
RETURNING id, external_session_id, display_name, created_at, (xmax = 0)`, r.table)

	var vehicle fleet.Vehicle
	var created bool
	if err := r.db.QueryRowContext(ctx, query, externalSessionID, displayName).Scan(
		&vehicle.ID,
		&vehicle.ExternalSessionID,
		&vehicle.DisplayName,
		&vehicle.CreatedAt,
		&created,
	); err != nil {
		return nil, false, err
	}
	vehicle.CreatedAt = vehicle.CreatedAt.UTC()
	return &vehicle, created, nil
}

// GetByID loads a vehicle by surrogate id.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*fleet.Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("vehicle repo: nil db")
	}
	if id <= 0 {
		return nil, fleet.ErrInvalidVehicleID
	}

	query := fmt.Sprintf(`
SELECT id, external_session_id, display_name, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var vehicle fleet.Vehicle
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.ExternalSessionID,
		&vehicle.DisplayName,
		&vehicle.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fleet.ErrVehicleNotFound
		}
		return nil, err
	}
	vehicle.CreatedAt = vehicle.CreatedAt.UTC()
	return &vehicle, nil
}
