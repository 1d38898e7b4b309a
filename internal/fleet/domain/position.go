package fleet

import (
	"math"
	"time"
)

// Position is one immutable GPS observation tied to a vehicle. Rows are
// append-only; capture time is the physical observation time, not the
// ingestion time.
type Position struct {
	ID         int64
	VehicleID  int64
	Latitude   float64
	Longitude  float64
	CapturedAt time.Time
}

// NewPosition validates coordinates and builds an unsaved position with the
// capture time normalized to UTC.
func NewPosition(vehicleID int64, latitude, longitude float64, capturedAt time.Time) (*Position, error) {
	if vehicleID <= 0 {
		return nil, ErrInvalidVehicleID
	}
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	if capturedAt.IsZero() {
		return nil, ErrInvalidCapturedAt
	}
	return &Position{
		VehicleID:  vehicleID,
		Latitude:   latitude,
		Longitude:  longitude,
		CapturedAt: capturedAt.UTC(),
	}, nil
}

// ValidateCoordinates rejects non-finite and out-of-range values.
func ValidateCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) ||
		math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return ErrNonFiniteCoordinate
	}
	if latitude < -90 || latitude > 90 {
		return ErrLatitudeRange
	}
	if longitude < -180 || longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// VehicleStats is the one-pass aggregate over a vehicle's positions.
// First and Last are nil when the vehicle has no positions; that is a
// valid result, not an error.
type VehicleStats struct {
	VehicleID       int64
	DisplayName     string
	Count           int64
	FirstCapturedAt *time.Time
	LastCapturedAt  *time.Time
}
