package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Highway 4: Angels Camp to Murphys
var (
	angelsCamp = LatLng(38.0675, -120.5436)
	murphys    = LatLng(38.1391, -120.4561)
)

func TestPlanarDistance(t *testing.T) {
	d, err := PlanarDistance(XY(0, 0), XY(3, 4))
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	// Untagged points are still planar
	d, err = PlanarDistance(NewPoint(Untagged, 1, 1), NewPoint(Untagged, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)

	_, err = PlanarDistance(XY(0, 0), LatLng(0, 0))
	assert.ErrorIs(t, err, ErrSystemMismatch)
}

func TestCartesianDistanceMeters(t *testing.T) {
	d, err := CartesianDistanceMeters(XY(1, 1), XY(4, 5))
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	_, err = CartesianDistanceMeters(angelsCamp, murphys)
	assert.ErrorIs(t, err, ErrUnsupportedSystem)
}

func TestDefaultDistanceMeters(t *testing.T) {
	d, err := DefaultDistanceMeters(XY(0, 0), XY(6, 8))
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)

	d, err = DefaultDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	vincenty, err := VincentyDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	assert.Equal(t, vincenty, d, "WGS84 should use Vincenty")

	_, err = DefaultDistanceMeters(NewPoint(Untagged, 0, 0), NewPoint(Untagged, 1, 1))
	assert.ErrorIs(t, err, ErrUnsupportedSystem)

	_, err = DefaultDistanceMeters(NewPoint(Tagged(3857), 0, 0), NewPoint(Tagged(3857), 1, 1))
	assert.ErrorIs(t, err, ErrUnsupportedSystem)

	_, err = DefaultDistanceMeters(XY(0, 0), LatLng(0, 0))
	assert.ErrorIs(t, err, ErrSystemMismatch)
}

func TestHaversineDistanceMeters(t *testing.T) {
	d, err := HaversineDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	assert.InDelta(t, 11039, d, 50, "Distance should be approximately 11.0km")

	d, err = HaversineDistanceMeters(angelsCamp, angelsCamp)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	_, err = HaversineDistanceMeters(XY(0, 0), XY(1, 1))
	assert.ErrorIs(t, err, ErrUnsupportedSystem)

	_, err = HaversineDistanceMeters(angelsCamp, XY(1, 1))
	assert.ErrorIs(t, err, ErrSystemMismatch)
}

func TestVincentyDistanceMeters(t *testing.T) {
	// Same point is exactly zero
	p := LatLng(34.0, -118.0)
	d, err := VincentyDistanceMeters(p, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	// One degree of latitude at the equator
	d, err = VincentyDistanceMeters(LatLng(0, 0), LatLng(1, 0))
	require.NoError(t, err)
	assert.InEpsilon(t, 111320, d, 0.01)

	// One degree of longitude along the equator
	d, err = VincentyDistanceMeters(LatLng(0, 10), LatLng(0, 11))
	require.NoError(t, err)
	assert.InDelta(t, 111319.5, d, 1)

	d, err = VincentyDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	assert.InDelta(t, 11046, d, 100)

	_, err = VincentyDistanceMeters(XY(0, 0), XY(1, 1))
	assert.ErrorIs(t, err, ErrUnsupportedSystem)
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]Point{
		{angelsCamp, murphys},
		{LatLng(34.0, -118.0), LatLng(37.77, -122.42)},
		{LatLng(-33.86, 151.21), LatLng(-37.81, 144.96)},
		{LatLng(0, 0), LatLng(0.0001, 0.0001)},
	}
	metrics := map[string]DistanceFunc{
		"planar":    PlanarDistance,
		"haversine": HaversineDistanceMeters,
		"vincenty":  VincentyDistanceMeters,
	}

	for name, metric := range metrics {
		for _, pair := range pairs {
			ab, err := metric(pair[0], pair[1])
			require.NoError(t, err)
			ba, err := metric(pair[1], pair[0])
			require.NoError(t, err)
			assert.InDelta(t, ab, ba, 1e-6, "%s(%s, %s)", name, pair[0], pair[1])
		}
	}
}

func TestDistance_MetricsAgree(t *testing.T) {
	// The sphere and the ellipsoid should agree to well under a percent
	h, err := HaversineDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	v, err := VincentyDistanceMeters(angelsCamp, murphys)
	require.NoError(t, err)
	assert.InEpsilon(t, v, h, 0.005)
}
