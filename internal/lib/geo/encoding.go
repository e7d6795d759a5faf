package geo

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

// DecodePolyline builds a WGS84 polyline from a Google encoded polyline string.
func DecodePolyline(encoded string) (*Polyline, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode polyline")
	}
	if len(rest) > 0 {
		return nil, errors.Newf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = LatLng(c[0], c[1])
	}
	return NewPolyline(points)
}

// Encode returns the Google encoded polyline string of a WGS84 polyline.
func (p *Polyline) Encode() (string, error) {
	if p.system != WGS84 {
		return "", errors.Wrapf(ErrUnsupportedSystem, "encoded polylines are WGS84, got %s", p.system)
	}
	coords := make([][]float64, len(p.waypoints))
	for i, pt := range p.waypoints {
		coords[i] = []float64{pt.Lat, pt.Lon}
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// LineString converts the polyline to an orb line string (x = lon, y = lat).
func (p *Polyline) LineString() orb.LineString {
	ls := make(orb.LineString, len(p.waypoints))
	for i, pt := range p.waypoints {
		ls[i] = orb.Point{pt.Lon, pt.Lat}
	}
	return ls
}

// Bound returns the bounding box of the waypoints.
func (p *Polyline) Bound() orb.Bound {
	return p.LineString().Bound()
}

// FromLineString builds a polyline in the given system from an orb line string.
func FromLineString(system System, ls orb.LineString) (*Polyline, error) {
	points := make([]Point, len(ls))
	for i, op := range ls {
		points[i] = NewPoint(system, op.Lat(), op.Lon())
	}
	return NewPolyline(points)
}
