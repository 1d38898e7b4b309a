package fleet

import "errors"

var (
	// ErrNilVehicle is returned when persisting a nil vehicle.
	ErrNilVehicle = errors.New("fleet: nil vehicle")
	// ErrEmptySessionID is returned when the external session id is empty.
	ErrEmptySessionID = errors.New("fleet: empty external session id")
	// ErrEmptyDisplayName is returned when a proposed display name is empty after trimming.
	ErrEmptyDisplayName = errors.New("fleet: empty display name")
	// ErrInvalidVehicleID is returned when a vehicle reference is not a positive id.
	ErrInvalidVehicleID = errors.New("fleet: invalid vehicle id")
	// ErrLatitudeRange is returned when latitude falls outside [-90, 90].
	ErrLatitudeRange = errors.New("fleet: latitude out of range")
	// ErrLongitudeRange is returned when longitude falls outside [-180, 180].
	ErrLongitudeRange = errors.New("fleet: longitude out of range")
	// ErrNonFiniteCoordinate is returned for NaN or infinite coordinates.
	ErrNonFiniteCoordinate = errors.New("fleet: non-finite coordinate")
	// ErrInvalidCapturedAt is returned when the capture timestamp is missing or zero.
	ErrInvalidCapturedAt = errors.New("fleet: invalid capture timestamp")
	// ErrVehicleNotFound is returned when a vehicle reference cannot be resolved.
	ErrVehicleNotFound = errors.New("fleet: vehicle not found")
)

// IsValidation reports whether err belongs to the user-correctable input
// class: surfaced as 4xx on the API and as a re-prompt in the bot flow.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptySessionID) ||
		errors.Is(err, ErrEmptyDisplayName) ||
		errors.Is(err, ErrInvalidVehicleID) ||
		errors.Is(err, ErrLatitudeRange) ||
		errors.Is(err, ErrLongitudeRange) ||
		errors.Is(err, ErrNonFiniteCoordinate) ||
		errors.Is(err, ErrInvalidCapturedAt)
}
