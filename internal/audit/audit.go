package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Identity-binding actions recorded by the tracking service.
const (
	ActionVehicleRegistered = "vehicle.registered"
	ActionVehicleRenamed    = "vehicle.renamed"
)

// Entry is one durable record of an identity change.
type Entry struct {
	ID        int64
	Action    string
	VehicleID int64
	SessionID string
	Detail    json.RawMessage
	CreatedAt time.Time
}

// Logger writes audit entries. Implementations must be safe for concurrent
// use.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NameDetail serializes the display name attached to an identity action.
func NameDetail(name string) json.RawMessage {
	data, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil
	}
	return data
}
