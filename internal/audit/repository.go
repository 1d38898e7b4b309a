package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const defaultAuditTable = "fleet_audit"

// Repository writes audit entries to Postgres.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db, table: defaultAuditTable}
}

// Log writes one audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.Action == "" {
		return errors.New("audit repo: empty action")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	vehicleID := sql.NullInt64{}
	if entry.VehicleID > 0 {
		vehicleID = sql.NullInt64{Int64: entry.VehicleID, Valid: true}
	}
	detail := []byte(entry.Detail)
	if len(detail) == 0 {
		detail = nil
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO `+r.table+` (
	action, vehicle_id, session_id, detail, created_at
) VALUES (
	$1, $2, $3, $4, $5
)`, entry.Action, vehicleID, entry.SessionID, detail, entry.CreatedAt)
	return err
}
