package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPointsNear(t *testing.T, want []Point, got *Polyline, delta float64) {
	t.Helper()
	require.Equal(t, len(want), got.NumPoints())
	for i, w := range want {
		assert.InDelta(t, w.X(), got.Point(i).X(), delta, "x of waypoint %d", i)
		assert.InDelta(t, w.Y(), got.Point(i).Y(), delta, "y of waypoint %d", i)
	}
}

func TestPolyline_Shift(t *testing.T) {
	p := elbow(t)

	// Heading east then north, right is south then east
	right := p.Shift(1)
	assertPointsNear(t, []Point{XY(0, -1), XY(11, -1), XY(11, 10)}, right, 1e-6)

	left := p.Shift(-1)
	assertPointsNear(t, []Point{XY(0, 1), XY(9, 1), XY(9, 10)}, left, 1e-6)

	// Shifting back recovers the original
	assertPointsNear(t, p.Points(), right.Shift(-1), 1e-6)
}

func TestPolyline_Shift_Collinear(t *testing.T) {
	p, err := NewPolyline([]Point{XY(0, 0), XY(5, 0), XY(10, 0)})
	require.NoError(t, err)

	assertPointsNear(t, []Point{XY(0, -2), XY(5, -2), XY(10, -2)}, p.Shift(2), 1e-6)
}

func TestPolyline_Shift_KeepsPointCount(t *testing.T) {
	p, err := DecodePolyline(hwy4Route)
	require.NoError(t, err)

	for _, d := range []float64{-10, -0.5, 3, 250} {
		shifted := p.Shift(d)
		assert.Equal(t, p.NumPoints(), shifted.NumPoints())
		assert.Equal(t, WGS84, shifted.System())
	}
}

func TestPolyline_Shift_WGS84(t *testing.T) {
	// Heading north along the prime meridian, right is east
	p, err := NewPolyline([]Point{LatLng(0, 0), LatLng(0.01, 0)})
	require.NoError(t, err)

	shifted := p.Shift(10)
	for i := 0; i < shifted.NumPoints(); i++ {
		orig, moved := p.Point(i), shifted.Point(i)
		assert.Equal(t, orig.Lat, moved.Lat)
		assert.Greater(t, moved.Lon, orig.Lon)

		d, err := VincentyDistanceMeters(orig, moved)
		require.NoError(t, err)
		assert.InDelta(t, 10, d, 1e-3)
	}
}

func TestPolyline_Shift_Degenerate(t *testing.T) {
	// Coincident points have no direction
	p, err := NewPolyline([]Point{XY(1, 1), XY(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, p.Points(), p.Shift(5).Points())

	// Zero-length segments borrow a neighbour's direction
	p, err = NewPolyline([]Point{XY(0, 0), XY(10, 0), XY(10, 0), XY(20, 0)})
	require.NoError(t, err)
	assertPointsNear(t, []Point{XY(0, -1), XY(10, -1), XY(10, -1), XY(20, -1)}, p.Shift(1), 1e-6)

	// U-turns have no bisector but still produce finite points
	p, err = NewPolyline([]Point{XY(0, 0), XY(10, 0), XY(0, 0)})
	require.NoError(t, err)
	shifted := p.Shift(1)
	require.Equal(t, 3, shifted.NumPoints())
	for _, pt := range shifted.Points() {
		assert.False(t, math.IsNaN(pt.X()) || math.IsNaN(pt.Y()))
	}
}
