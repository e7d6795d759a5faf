package geo

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Polyline is an immutable sequence of at least two waypoints sharing one
// reference system, indexed by cumulative arc length. Every transformation
// returns a new Polyline.
type Polyline struct {
	system     System
	waypoints  []Point
	cumulative []float64
}

// NewPolyline builds a polyline from points, measuring each segment with
// DefaultDistanceMeters. The slice is copied.
func NewPolyline(points []Point) (*Polyline, error) {
	if len(points) < 2 {
		return nil, errors.Wrapf(ErrInsufficientPoints, "got %d", len(points))
	}

	waypoints := make([]Point, len(points))
	copy(waypoints, points)

	cumulative := make([]float64, len(waypoints))
	for i := 1; i < len(waypoints); i++ {
		d, err := DefaultDistanceMeters(waypoints[i-1], waypoints[i])
		if err != nil {
			return nil, errors.Wrapf(err, "waypoint %d", i)
		}
		cumulative[i] = cumulative[i-1] + d
	}

	return &Polyline{
		system:     waypoints[0].System,
		waypoints:  waypoints,
		cumulative: cumulative,
	}, nil
}

// mustPolyline rebuilds a polyline from points that come from a valid
// polyline. A failure here is a bug, not bad input.
func mustPolyline(points []Point) *Polyline {
	p, err := NewPolyline(points)
	if err != nil {
		panic(errors.Wrap(err, "rebuilding polyline from validated waypoints"))
	}
	return p
}

// System returns the reference system shared by all waypoints.
func (p *Polyline) System() System { return p.system }

// NumPoints returns the number of waypoints.
func (p *Polyline) NumPoints() int { return len(p.waypoints) }

// Point returns the i-th waypoint.
func (p *Polyline) Point(i int) Point { return p.waypoints[i] }

// Points returns a copy of the waypoints.
func (p *Polyline) Points() []Point {
	out := make([]Point, len(p.waypoints))
	copy(out, p.waypoints)
	return out
}

// First returns the first waypoint.
func (p *Polyline) First() Point { return p.waypoints[0] }

// Last returns the last waypoint.
func (p *Polyline) Last() Point { return p.waypoints[len(p.waypoints)-1] }

// CumulativeLengths returns a copy of the arc length at each waypoint.
func (p *Polyline) CumulativeLengths() []float64 {
	out := make([]float64, len(p.cumulative))
	copy(out, p.cumulative)
	return out
}

// Length returns the total arc length in meters.
func (p *Polyline) Length() float64 {
	return p.cumulative[len(p.cumulative)-1]
}

func (p *Polyline) checkOffset(offset float64) error {
	if math.IsNaN(offset) || offset < 0 || offset > p.Length() {
		return errors.Wrapf(ErrInvalidOffset, "offset %v not in [0, %v]", offset, p.Length())
	}
	return nil
}

// IndexBeforeOffset returns the largest waypoint index whose cumulative length
// is at most offset. Only the exact total length yields the last index.
func (p *Polyline) IndexBeforeOffset(offset float64) (int, error) {
	if err := p.checkOffset(offset); err != nil {
		return 0, err
	}
	return p.indexBefore(offset), nil
}

func (p *Polyline) indexBefore(offset float64) int {
	idx := 0
	for idx < len(p.cumulative) && p.cumulative[idx] <= offset {
		idx++
	}
	return idx - 1
}

// PointAt returns the point at offset meters along the polyline. Offsets
// within DistancePrecision of the end snap to the last waypoint.
func (p *Polyline) PointAt(offset float64) (Point, error) {
	if err := p.checkOffset(offset); err != nil {
		return Point{}, err
	}
	return p.pointAt(offset), nil
}

func (p *Polyline) pointAt(offset float64) Point {
	if offset >= p.Length()-DistancePrecision {
		return p.Last()
	}

	idx := p.indexBefore(offset)
	before, after := p.waypoints[idx], p.waypoints[idx+1]
	ratio := (offset - p.cumulative[idx]) / (p.cumulative[idx+1] - p.cumulative[idx])

	return Point{
		System: before.System,
		Lat:    (1-ratio)*before.Lat + ratio*after.Lat,
		Lon:    (1-ratio)*before.Lon + ratio*after.Lon,
	}
}

// SubRange extracts the part of the polyline between two offsets. Equal
// offsets give a degenerate two point polyline.
func (p *Polyline) SubRange(start, end float64) (*Polyline, error) {
	if err := p.checkOffset(start); err != nil {
		return nil, errors.Wrap(err, "start")
	}
	if err := p.checkOffset(end); err != nil {
		return nil, errors.Wrap(err, "end")
	}
	if start > end {
		return nil, errors.Wrapf(ErrInvalidOffset, "start %v after end %v", start, end)
	}

	if start == end {
		pt := p.pointAt(start)
		return mustPolyline([]Point{pt, pt}), nil
	}

	startIdx := p.indexBefore(start)
	endIdx := p.indexBefore(end)

	points := make([]Point, 0, endIdx-startIdx+2)
	points = append(points, p.pointAt(start))
	for i := startIdx + 1; i <= endIdx; i++ {
		points = append(points, p.waypoints[i])
	}
	// Skip the end point when the last kept waypoint is already there, unless
	// that would leave a single point.
	if p.cumulative[endIdx] < end-DistancePrecision || len(points) < 2 {
		points = append(points, p.pointAt(end))
	}

	return mustPolyline(points), nil
}

// Reverse returns the polyline traversed in the opposite direction.
func (p *Polyline) Reverse() *Polyline {
	n := len(p.waypoints)
	points := make([]Point, n)
	for i, pt := range p.waypoints {
		points[n-1-i] = pt
	}
	return mustPolyline(points)
}

// Close returns a ring: the waypoints followed by the first waypoint again.
func (p *Polyline) Close() *Polyline {
	points := make([]Point, 0, len(p.waypoints)+1)
	points = append(points, p.waypoints...)
	points = append(points, p.waypoints[0])
	return mustPolyline(points)
}

// String lists the waypoints.
func (p *Polyline) String() string {
	var sb strings.Builder
	sb.WriteString("Polyline[")
	for i, pt := range p.waypoints {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pt.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// Concatenate joins two polylines at their closest pair of endpoints,
// reversing either one as needed. A nil input returns the other unchanged.
// The connecting distance must not exceed tolerance.
func Concatenate(p1, p2 *Polyline, tolerance float64) (*Polyline, error) {
	if p1 == nil {
		return p2, nil
	}
	if p2 == nil {
		return p1, nil
	}

	// Candidate pairings in priority order; ties keep the earlier one.
	pairings := []struct {
		from, to           Point
		reverse1, reverse2 bool
	}{
		{p1.Last(), p2.First(), false, false},
		{p1.Last(), p2.Last(), false, true},
		{p1.First(), p2.First(), true, false},
		{p1.First(), p2.Last(), true, true},
	}

	best := math.Inf(1)
	reverse1, reverse2 := true, true
	for _, pair := range pairings {
		d, err := DefaultDistanceMeters(pair.from, pair.to)
		if err != nil {
			return nil, err
		}
		if d < best {
			best = d
			reverse1, reverse2 = pair.reverse1, pair.reverse2
		}
	}

	if best > tolerance {
		return nil, errors.Wrapf(ErrDisjointGeometry, "closest endpoints are %.3fm apart, tolerance %.3fm", best, tolerance)
	}

	if reverse1 {
		p1 = p1.Reverse()
	}
	if reverse2 {
		p2 = p2.Reverse()
	}

	points := make([]Point, 0, p1.NumPoints()+p2.NumPoints())
	points = append(points, p1.waypoints...)
	points = append(points, p2.waypoints...)
	return mustPolyline(points), nil
}
