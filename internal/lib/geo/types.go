package geo

import (
	"fmt"
	"strconv"
)

// SRID is a spatial reference identifier.
type SRID int

const (
	// SRIDCartesian is the planar system, coordinates in meters.
	SRIDCartesian SRID = 0
	// SRIDWGS84 is the WGS84 geographic system, coordinates in degrees.
	SRIDWGS84 SRID = 4326
)

// DistancePrecision is the tolerance (in meters) used when comparing lengths and
// offsets along a polyline. Distances from the different metrics agree to
// roughly 1e-8, so this is comfortably above the numeric noise.
const DistancePrecision = 1e-4

// System tags which reference system a point lives in. The zero value is
// untagged, meaning a plain planar point with no datum attached.
type System struct {
	srid   SRID
	tagged bool
}

var (
	// Untagged is the system of points that carry no reference identifier.
	Untagged = System{}
	// Cartesian is the SRID 0 planar system.
	Cartesian = Tagged(SRIDCartesian)
	// WGS84 is the SRID 4326 geographic system.
	WGS84 = Tagged(SRIDWGS84)
)

// Tagged returns the system identified by srid.
func Tagged(srid SRID) System {
	return System{srid: srid, tagged: true}
}

// SRID returns the identifier and whether the system is tagged at all.
func (s System) SRID() (SRID, bool) {
	return s.srid, s.tagged
}

// IsTagged reports whether the system carries an identifier.
func (s System) IsTagged() bool {
	return s.tagged
}

// String renders the identifier, or "null" for untagged systems.
func (s System) String() string {
	if !s.tagged {
		return "null"
	}
	return strconv.Itoa(int(s.srid))
}

// CompareSystems orders systems by identifier. Untagged sorts after every
// tagged system and two untagged systems are equal.
func CompareSystems(a, b System) int {
	switch {
	case !a.tagged && !b.tagged:
		return 0
	case !a.tagged:
		return 1
	case !b.tagged:
		return -1
	case a.srid < b.srid:
		return -1
	case a.srid > b.srid:
		return 1
	}
	return 0
}

// Point is an immutable 2D position tagged with its reference system.
// In planar systems Lat holds y and Lon holds x.
type Point struct {
	System System  `json:"-"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lng"`
}

// NewPoint creates a point in the given system.
func NewPoint(system System, lat, lon float64) Point {
	return Point{System: system, Lat: lat, Lon: lon}
}

// LatLng creates a WGS84 point from degrees.
func LatLng(lat, lon float64) Point {
	return Point{System: WGS84, Lat: lat, Lon: lon}
}

// XY creates a Cartesian point from planar coordinates in meters.
func XY(x, y float64) Point {
	return Point{System: Cartesian, Lat: y, Lon: x}
}

// X returns the planar x coordinate (the longitude).
func (p Point) X() float64 { return p.Lon }

// Y returns the planar y coordinate (the latitude).
func (p Point) Y() float64 { return p.Lat }

// Equal reports exact field equality: same system and identical coordinates
// under ==, so NaN coordinates are never equal.
func (p Point) Equal(o Point) bool {
	return p.System == o.System && p.Lat == o.Lat && p.Lon == o.Lon
}

// String formats the point as [srid](lat,lon).
func (p Point) String() string {
	return fmt.Sprintf("[%s](%3.8f,%3.8f)", p.System, p.Lat, p.Lon)
}
