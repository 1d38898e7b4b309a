package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	fleet "fleet-monitor/internal/fleet/domain"
	"fleet-monitor/internal/fleet/infrastructure/postgres"
)

func TestFleetRepositories_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "vehicles") || !tableExists(db, "positions") {
		t.Skip("vehicles/positions missing; run migrations")
	}

	ctx := context.Background()
	sessionID := "it-session-42"

	_, _ = db.ExecContext(ctx, "DELETE FROM positions WHERE vehicle_id IN (SELECT id FROM vehicles WHERE external_session_id = $1)", sessionID)
	_, _ = db.ExecContext(ctx, "DELETE FROM vehicles WHERE external_session_id = $1", sessionID)

	vehicles := postgres.NewVehicleRepository(db)
	positions := postgres.NewPositionRepository(db)

	created, wasCreated, err := vehicles.Upsert(ctx, sessionID, "Alfa123")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !wasCreated {
		t.Fatalf("first upsert must report created")
	}

	renamed, wasCreated, err := vehicles.Upsert(ctx, sessionID, "Bravo456")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if wasCreated {
		t.Fatalf("second upsert must not report created")
	}
	if renamed.ID != created.ID {
		t.Fatalf("upsert minted a second vehicle: %d vs %d", renamed.ID, created.ID)
	}
	if renamed.DisplayName != "Bravo456" {
		t.Fatalf("rename lost: %q", renamed.DisplayName)
	}

	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	for _, offset := range []int{3, 1, 2} {
		position, err := fleet.NewPosition(created.ID, 48.1, 11.5, base.Add(time.Duration(offset)*time.Minute))
		if err != nil {
			t.Fatalf("new position: %v", err)
		}
		if err := positions.Insert(ctx, position); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if position.ID == 0 {
			t.Fatalf("insert must fill the surrogate id")
		}
	}

	rows, err := positions.ListByVehicle(ctx, created.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(rows))
	}
	for i, want := range []int{1, 2, 3} {
		if !rows[i].CapturedAt.Equal(base.Add(time.Duration(want) * time.Minute)) {
			t.Fatalf("row %d out of order: %v", i, rows[i].CapturedAt)
		}
	}

	stats, err := positions.StatsByVehicle(ctx, created.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count != 3 {
		t.Fatalf("count: got %d want 3", stats.Count)
	}
	if stats.FirstCapturedAt == nil || !stats.FirstCapturedAt.Equal(base.Add(1*time.Minute)) {
		t.Fatalf("first: %v", stats.FirstCapturedAt)
	}
	if stats.LastCapturedAt == nil || !stats.LastCapturedAt.Equal(base.Add(3*time.Minute)) {
		t.Fatalf("last: %v", stats.LastCapturedAt)
	}
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	return err == nil && exists
}
