package routing

import (
	"fmt"
	"math"

	"github.com/dpup/georef/internal/lib/geo"
)

const (
	// LaneAll marks a spot that covers every lane.
	LaneAll int16 = -1
	// LaneUnknown marks a spot whose lane is not known.
	LaneUnknown int16 = 0
)

// Spot is a position on a link: an offset in meters from the link start and
// a lane, numbered from 1 starting at the slow lane. Spots are created by an
// Assembler (or NewSpot) which validates them.
type Spot struct {
	link   Link
	offset float64
	lane   int16
}

// Link returns the link the spot lies on.
func (s Spot) Link() Link { return s.link }

// Offset returns the distance in meters from the start of the link.
func (s Spot) Offset() float64 { return s.offset }

// Lane returns the lane number, LaneAll or LaneUnknown.
func (s Spot) Lane() int16 { return s.lane }

// Coordinate returns the point at the spot's offset along the link geometry.
// Offsets within tolerance outside the link snap to its ends.
func (s Spot) Coordinate() (geo.Point, error) {
	g, err := s.link.Geometry()
	if err != nil {
		return geo.Point{}, err
	}
	return g.PointAt(math.Min(math.Max(s.offset, 0), g.Length()))
}

// Equal reports whether both spots refer to the same link, offset and lane.
func (s Spot) Equal(o Spot) bool {
	return s.link == o.link && s.offset == o.offset && s.lane == o.lane
}

// String returns "Spot(link, offset, lane)".
func (s Spot) String() string {
	return fmt.Sprintf("Spot(%v, %f, %d)", s.link, s.offset, s.lane)
}
