package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	fleet "fleet-monitor/internal/fleet/domain"
)

const defaultPositionsTable = "positions"

// PositionRepository is a Postgres implementation for positions.
type PositionRepository struct {
	db            *sql.DB
	table         string
	vehiclesTable string
}

// NewPositionRepository constructs a repository with default table names.
func NewPositionRepository(db *sql.DB, opts ...PositionOption) *PositionRepository {
	repo := &PositionRepository{db: db, table: defaultPositionsTable, vehiclesTable: defaultVehiclesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PositionOption configures the repository.
type PositionOption func(*PositionRepository)

// WithPositionTable overrides the default positions table name.
func WithPositionTable(table string) PositionOption {
	return func(repo *PositionRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithJoinedVehiclesTable overrides the vehicles table used by fleet-wide stats.
func WithJoinedVehiclesTable(table string) PositionOption {
	return func(repo *PositionRepository) {
		if table != "" {
			repo.vehiclesTable = table
		}
	}
}

// Insert appends one position row and fills the surrogate id.
func (r *PositionRepository) Insert(ctx context.Context, position *fleet.Position) error {
	if r == nil || r.db == nil {
		return errors.New("position repo: nil db")
	}
	if position == nil {
		return errors.New("position repo: nil position")
	}
	if position.VehicleID <= 0 {
		return fleet.ErrInvalidVehicleID
	}
	if position.CapturedAt.IsZero() {
		return fleet.ErrInvalidCapturedAt
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	vehicle_id,
	latitude,
	longitude,
	captured_at
) VALUES (
	$1, $2, $3, $4
)
RETURNING id`, r.table)

	return r.db.QueryRowContext(
		ctx,
		query,
		position.VehicleID,
		position.Latitude,
		position.Longitude,
		position.CapturedAt.UTC(),
	).Scan(&position.ID)
}

// ListByVehicle returns positions ordered by capture time, surrogate id.
func (r *PositionRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]fleet.Position, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("position repo: nil db")
	}
	if vehicleID <= 0 {
		return nil, fleet.ErrInvalidVehicleID
	}

	query := fmt.Sprintf(`
SELECT id, vehicle_id, latitude, longitude, captured_at
FROM %s
WHERE vehicle_id = $1
ORDER BY captured_at ASC, id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fleet.Position
	for rows.Next() {
		var position fleet.Position
		if err := rows.Scan(
			&position.ID,
			&position.VehicleID,
			&position.Latitude,
			&position.Longitude,
			&position.CapturedAt,
		); err != nil {
			return nil, err
		}
		position.CapturedAt = position.CapturedAt.UTC()
		result = append(result, position)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// StatsByVehicle computes count/min/max for one vehicle in a single query.
func (r *PositionRepository) StatsByVehicle(ctx context.Context, vehicleID int64) (fleet.VehicleStats, error) {
	if r == nil || r.db == nil {
		return fleet.VehicleStats{}, errors.New("position repo: nil db")
	}
	if vehicleID <= 0 {
		return fleet.VehicleStats{}, fleet.ErrInvalidVehicleID
	}

	query := fmt.Sprintf(`
SELECT v.id, v.display_name, COUNT(p.id), MIN(p.captured_at), MAX(p.captured_at)
FROM %s v
LEFT JOIN %s p ON p.vehicle_id = v.id
WHERE v.id = $1
GROUP BY v.id, v.display_name`, r.vehiclesTable, r.table)

	stats, err := scanStatsRow(r.db.QueryRowContext(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fleet.VehicleStats{}, fleet.ErrVehicleNotFound
		}
		return fleet.VehicleStats{}, err
	}
	return stats, nil
}

// StatsAll computes count/min/max per known vehicle, zero-position vehicles
// included.
func (r *PositionRepository) StatsAll(ctx context.Context) ([]fleet.VehicleStats, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("position repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT v.id, v.display_name, COUNT(p.id), MIN(p.captured_at), MAX(p.captured_at)
FROM %s v
LEFT JOIN %s p ON p.vehicle_id = v.id
GROUP BY v.id, v.display_name
ORDER BY v.display_name ASC, v.id ASC`, r.vehiclesTable, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []fleet.VehicleStats
	for rows.Next() {
		stats, err := scanStatsRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatsRow(row rowScanner) (fleet.VehicleStats, error) {
	var stats fleet.VehicleStats
	var first, last sql.NullTime
	if err := row.Scan(&stats.VehicleID, &stats.DisplayName, &stats.Count, &first, &last); err != nil {
		return fleet.VehicleStats{}, err
	}
	if first.Valid {
		ts := first.Time.UTC()
		stats.FirstCapturedAt = &ts
	}
	if last.Valid {
		ts := last.Time.UTC()
		stats.LastCapturedAt = &ts
	}
	return stats, nil
}
