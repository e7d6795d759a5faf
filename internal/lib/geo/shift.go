package geo

import "math"

// shiftScaleEpsilon is the coordinate step used to measure the local
// meters-per-unit scale at the first waypoint.
const shiftScaleEpsilon = 1e-4

type vector struct {
	x, y float64
}

func (v vector) norm() float64 { return math.Hypot(v.x, v.y) }

func (v vector) normalized() (vector, bool) {
	n := v.norm()
	if n == 0 || math.IsNaN(n) {
		return vector{}, false
	}
	return vector{v.x / n, v.y / n}, true
}

func (v vector) scale(k float64) vector { return vector{v.x * k, v.y * k} }

// shiftVector solves for the displacement s with s·u = delta and s ⟂ v.
func shiftVector(u, v vector, delta float64) (vector, bool) {
	disc := u.x*v.y - u.y*v.x
	if math.Abs(disc) < 1e-12 {
		return vector{}, false
	}
	return vector{delta * v.y / disc, -(delta * v.x / disc)}, true
}

// Shift returns a parallel copy of the polyline moved sideways by distance
// meters, to the right of the direction of travel for positive values.
//
// Waypoints are projected into a local frame (x east, y north) whose scale is
// measured once at the first waypoint, so the result drifts for lines that
// cover a large change in latitude. Interior vertices move along the bisector
// of their two segments so that both segments end up exactly distance away.
func (p *Polyline) Shift(distance float64) *Polyline {
	n := len(p.waypoints)
	center := p.waypoints[0]

	dlat := p.localScale(center, NewPoint(center.System, center.Lat+shiftScaleEpsilon, center.Lon))
	dlon := p.localScale(center, NewPoint(center.System, center.Lat, center.Lon+shiftScaleEpsilon))

	local := make([]vector, n)
	for i, pt := range p.waypoints {
		local[i] = vector{dlon * (pt.Lon - center.Lon), dlat * (pt.Lat - center.Lat)}
	}

	normals, ok := segmentNormals(local)
	if !ok {
		return mustPolyline(p.waypoints)
	}

	shifted := make([]Point, n)
	for i, pt := range p.waypoints {
		var s vector
		switch {
		case i == 0:
			s = normals[0].scale(distance)
		case i == n-1:
			s = normals[n-2].scale(distance)
		default:
			s = vertexShift(normals[i-1], normals[i], distance)
		}
		shifted[i] = NewPoint(pt.System, pt.Lat+s.y/dlat, pt.Lon+s.x/dlon)
	}

	return mustPolyline(shifted)
}

// localScale returns the meters per coordinate unit between from and a point
// one epsilon step away.
func (p *Polyline) localScale(from, to Point) float64 {
	d, err := DefaultDistanceMeters(from, to)
	if err != nil {
		// The polyline was built with this metric.
		panic(err)
	}
	return d / shiftScaleEpsilon
}

// segmentNormals returns the unit right-hand normal of each segment.
// Zero-length segments borrow the normal of the nearest preceding segment, or
// the following one at the start. It reports false when every segment is
// degenerate.
func segmentNormals(local []vector) ([]vector, bool) {
	normals := make([]vector, len(local)-1)
	valid := make([]bool, len(normals))
	first := -1
	for i := range normals {
		dx := local[i+1].x - local[i].x
		dy := local[i+1].y - local[i].y
		normals[i], valid[i] = vector{dy, -dx}.normalized()
		if valid[i] && first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil, false
	}

	for i := 0; i < first; i++ {
		normals[i] = normals[first]
	}
	for i := first + 1; i < len(normals); i++ {
		if !valid[i] {
			normals[i] = normals[i-1]
		}
	}
	return normals, true
}

// vertexShift moves an interior vertex along the bisector of the normals of
// its incoming and outgoing segments. A U-turn has no bisector and falls
// back to the outgoing segment's normal.
func vertexShift(in, out vector, distance float64) vector {
	sum := vector{in.x + out.x, in.y + out.y}
	v, ok := vector{sum.y, -sum.x}.normalized()
	if !ok {
		return out.scale(distance)
	}
	s, ok := shiftVector(out, v, distance)
	if !ok {
		return out.scale(distance)
	}
	return s
}
