package routing

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dpup/georef/internal/lib/geo"
)

// Route is an ordered traversal of adjacent links, with spots marking where
// it starts, where it ends and points of interest in between. Routes are
// immutable and only built by an Assembler.
type Route struct {
	spots           []Spot
	links           []Link
	stitchTolerance float64
}

// Spots returns a copy of the route's spots.
func (r *Route) Spots() []Spot {
	out := make([]Spot, len(r.spots))
	copy(out, r.spots)
	return out
}

// Links returns a copy of the route's links, in travel order.
func (r *Route) Links() []Link {
	out := make([]Link, len(r.links))
	copy(out, r.links)
	return out
}

// StartSpot returns the spot where the route begins.
func (r *Route) StartSpot() Spot { return r.spots[0] }

// EndSpot returns the spot where the route ends.
func (r *Route) EndSpot() Spot { return r.spots[len(r.spots)-1] }

// StartOffset is the offset of the first spot on the first link.
func (r *Route) StartOffset() float64 { return r.StartSpot().offset }

// EndOffset is the offset of the last spot on the last link.
func (r *Route) EndOffset() float64 { return r.EndSpot().offset }

// Length returns the distance travelled along the route in meters.
func (r *Route) Length() float64 {
	if len(r.links) == 1 {
		return r.EndOffset() - r.StartOffset()
	}
	length := r.links[0].Length() - r.StartOffset()
	for _, l := range r.links[1 : len(r.links)-1] {
		length += l.Length()
	}
	return length + r.EndOffset()
}

// Geometry assembles the route polyline from the traversed part of the first
// link, every interior link and the traversed part of the last link. Pieces
// are stitched at their closest endpoints, since adjacent link geometries
// only approximately meet.
func (r *Route) Geometry() (*geo.Polyline, error) {
	first := r.links[0]
	start, end := r.StartOffset(), r.EndOffset()

	if len(r.links) == 1 {
		return first.PartialGeometry(start, end)
	}

	var res *geo.Polyline
	if first.Length()-start > 0 {
		g, err := first.PartialGeometry(start, first.Length())
		if err != nil {
			return nil, errors.Wrapf(err, "geometry of %v", first)
		}
		res = g
	}

	for _, l := range r.links[1 : len(r.links)-1] {
		g, err := l.Geometry()
		if err != nil {
			return nil, errors.Wrapf(err, "geometry of %v", l)
		}
		if res, err = geo.Concatenate(res, g, r.stitchTolerance); err != nil {
			return nil, errors.Wrapf(err, "stitching %v", l)
		}
	}

	last := r.links[len(r.links)-1]
	if end > 0 {
		g, err := last.PartialGeometry(0, end)
		if err != nil {
			return nil, errors.Wrapf(err, "geometry of %v", last)
		}
		if res, err = geo.Concatenate(res, g, r.stitchTolerance); err != nil {
			return nil, errors.Wrapf(err, "stitching %v", last)
		}
	}

	// Starts at the end of the first link and stops at the start of the second.
	if res == nil {
		return first.PartialGeometry(start, start)
	}
	return res, nil
}

// String lists the spots, tab separated.
func (r *Route) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Route with %d spots:", len(r.spots))
	for _, s := range r.spots {
		sb.WriteString("\t")
		sb.WriteString(s.String())
	}
	return sb.String()
}
