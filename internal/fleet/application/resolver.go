package application

import (
	"context"
	"errors"
	"strings"

	fleet "fleet-monitor/internal/fleet/domain"
)

// IdentityResolver binds transport sessions to durable vehicle identities.
// Resolution is an atomic insert-if-absent / rename-if-changed keyed by the
// external session id; the repository's upsert carries the atomicity, so
// concurrent first contacts can never mint two vehicles for one session.
type IdentityResolver struct {
	vehicles fleet.VehicleRepository
}

// NewIdentityResolver constructs a resolver.
func NewIdentityResolver(vehicles fleet.VehicleRepository) (*IdentityResolver, error) {
	if vehicles == nil {
		return nil, errors.New("identity resolver: nil vehicle repository")
	}
	return &IdentityResolver{vehicles: vehicles}, nil
}

// Resolve returns the vehicle for the session, creating it on first sight
// and trusting the latest self-reported name over the stored one. The
// boolean reports whether this call created the binding.
func (r *IdentityResolver) Resolve(ctx context.Context, externalSessionID, proposedDisplayName string) (*fleet.Vehicle, bool, error) {
	if externalSessionID == "" {
		return nil, false, fleet.ErrEmptySessionID
	}
	proposedDisplayName = strings.TrimSpace(proposedDisplayName)
	if proposedDisplayName == "" {
		return nil, false, fleet.ErrEmptyDisplayName
	}
	return r.vehicles.Upsert(ctx, externalSessionID, proposedDisplayName)
}
