package fleet

import (
	"strings"
	"time"
)

// Vehicle is the durable identity of one tracked reporter, bound to the
// transport session that registered it.
type Vehicle struct {
	ID                int64
	ExternalSessionID string
	DisplayName       string
	CreatedAt         time.Time
}

// Validate checks invariants before persistence.
func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrNilVehicle
	}
	if v.ExternalSessionID == "" {
		return ErrEmptySessionID
	}
	if strings.TrimSpace(v.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	return nil
}
