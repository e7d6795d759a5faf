package routing

import (
	"github.com/cockroachdb/errors"

	"github.com/dpup/georef/internal/lib/geo"
)

var (
	// ErrInvalidOffset is returned when a spot offset falls outside its link.
	ErrInvalidOffset = geo.ErrInvalidOffset

	// ErrOffsetOutOfRange is returned when a route start or end offset falls
	// outside its link.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidLane is returned for lanes outside {-1, 0} ∪ [1, lanes].
	ErrInvalidLane = errors.New("invalid lane")

	// ErrNonAdjacentLinks is returned when a link does not start where the
	// previous one ends.
	ErrNonAdjacentLinks = errors.New("links are not adjacent")

	// ErrDuplicateLink is returned when a route visits a link twice.
	ErrDuplicateLink = errors.New("duplicate link in route")

	// ErrUnorderedSpots is returned when spots on one link go backwards.
	ErrUnorderedSpots = errors.New("spots are not ordered")

	// ErrEmptyRoute is returned when a route is built from no links or spots.
	ErrEmptyRoute = errors.New("route has no links")

	// ErrMissingLink is returned when a nil link is supplied.
	ErrMissingLink = errors.New("link is nil")
)
