package geostat

import (
	"errors"
	"fmt"
)

// Sentinel errors for the geostat package.
// Use errors.Is to check: errors.Is(err, geostat.ErrInvalidParameter)
var (
	// ErrInvalidParameter is returned for bad model parameters, mismatched
	// array lengths, or out-of-range counts. Raised eagerly, never clamped.
	ErrInvalidParameter = errors.New("geostat: invalid parameter")

	// ErrMissingParameter is returned when a required parameter is absent,
	// e.g. simple kriging cross-validation without a global mean.
	ErrMissingParameter = errors.New("geostat: missing parameter")

	// ErrSingularSystem marks a degenerate kriging system. Batch estimation
	// absorbs it per target as NaN; it surfaces only from single-system APIs.
	ErrSingularSystem = errors.New("geostat: singular kriging system")

	// ErrNoNeighbors marks an empty search neighborhood. Batch estimation
	// recovers per variant and never returns it directly.
	ErrNoNeighbors = errors.New("geostat: no neighbors in search window")
)

// UnknownModelError indicates a variogram model kind this package does not
// recognize. It is raised at model construction, never at evaluation.
type UnknownModelError struct {
	Kind ModelType
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("geostat: unknown variogram model kind %q", string(e.Kind))
}
