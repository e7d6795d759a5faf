package geo

import "github.com/cockroachdb/errors"

var (
	// ErrSystemMismatch is returned when two values carry different reference systems.
	ErrSystemMismatch = errors.New("reference systems do not match")

	// ErrUnsupportedSystem is returned when an operation does not implement the
	// reference system of its operands.
	ErrUnsupportedSystem = errors.New("unsupported reference system")

	// ErrInsufficientPoints is returned when fewer than 2 points build a polyline.
	ErrInsufficientPoints = errors.New("polyline needs at least 2 points")

	// ErrInvalidOffset is returned for offsets outside [0, length].
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrDisjointGeometry is returned when two polylines are too far apart to be joined.
	ErrDisjointGeometry = errors.New("polylines do not connect")
)

func checkSameSystem(a, b Point) error {
	if a.System != b.System {
		return errors.Wrapf(ErrSystemMismatch, "%s and %s", a, b)
	}
	return nil
}
