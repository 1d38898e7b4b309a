package application

import (
	"context"
	"errors"
	"time"

	fleet "fleet-monitor/internal/fleet/domain"
)

// PositionWriter is the single append path for position observations,
// shared by the bot flow and the direct API.
type PositionWriter struct {
	positions fleet.PositionRepository
}

// NewPositionWriter constructs a writer.
func NewPositionWriter(positions fleet.PositionRepository) (*PositionWriter, error) {
	if positions == nil {
		return nil, errors.New("position writer: nil position repository")
	}
	return &PositionWriter{positions: positions}, nil
}

// Append validates and persists exactly one immutable row. Out-of-order
// capture times are stored as-is; ordering is a read-time concern.
func (w *PositionWriter) Append(ctx context.Context, vehicleID int64, latitude, longitude float64, capturedAt time.Time) (*fleet.Position, error) {
	position, err := fleet.NewPosition(vehicleID, latitude, longitude, capturedAt)
	if err != nil {
		return nil, err
	}
	if err := w.positions.Insert(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}
