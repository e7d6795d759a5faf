package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareSystems(t *testing.T) {
	assert.Equal(t, -1, CompareSystems(Cartesian, WGS84))
	assert.Equal(t, 1, CompareSystems(WGS84, Cartesian))
	assert.Equal(t, 0, CompareSystems(WGS84, WGS84))

	// Untagged sorts after everything
	assert.Equal(t, 1, CompareSystems(Untagged, WGS84))
	assert.Equal(t, -1, CompareSystems(Tagged(900913), Untagged))
	assert.Equal(t, 0, CompareSystems(Untagged, Untagged))
}

func TestCompareFloat_TotalOrder(t *testing.T) {
	negZero := math.Copysign(0, -1)
	ordered := []float64{math.Inf(-1), -1e300, -1, negZero, 0, 1e-300, 1, math.Inf(1), math.NaN()}

	for i := range ordered {
		for j := range ordered {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			assert.Equal(t, want, compareFloat(ordered[i], ordered[j]), "compare(%v, %v)", ordered[i], ordered[j])
		}
	}

	// All NaNs are equal to each other
	otherNaN := math.Float64frombits(0x7ff8000000000001)
	assert.Equal(t, 0, compareFloat(math.NaN(), otherNaN))
}

func TestCompare(t *testing.T) {
	// System first
	assert.Equal(t, -1, Compare(XY(100, 100), LatLng(0, 0)))
	assert.Equal(t, 1, Compare(NewPoint(Untagged, 0, 0), LatLng(50, 50)))

	// Then latitude, then longitude
	assert.Equal(t, -1, Compare(LatLng(1, 5), LatLng(2, 0)))
	assert.Equal(t, 1, Compare(LatLng(1, 5), LatLng(1, 4)))
	assert.Equal(t, 0, Compare(LatLng(1, 5), LatLng(1, 5)))

	nan := LatLng(math.NaN(), 0)
	assert.Equal(t, 0, Compare(nan, nan))
	assert.Equal(t, 1, Compare(nan, LatLng(math.Inf(1), 0)))
}

func TestEpsilonDistance(t *testing.T) {
	a, b := XY(0, 0), XY(3, 4)

	d, err := EpsilonDistance(a, b)
	require.NoError(t, err)
	assert.Equal(t, -5.0, d)

	d, err = EpsilonDistance(b, a)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	d, err = EpsilonDistance(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	_, err = EpsilonDistance(a, LatLng(0, 0))
	assert.ErrorIs(t, err, ErrSystemMismatch)
}

func TestPoint_Equal(t *testing.T) {
	assert.True(t, LatLng(1, 2).Equal(LatLng(1, 2)))
	assert.False(t, LatLng(1, 2).Equal(NewPoint(Tagged(0), 1, 2)))
	assert.True(t, XY(2, 1).Equal(NewPoint(Cartesian, 1, 2)))

	nan := LatLng(math.NaN(), 0)
	assert.False(t, nan.Equal(nan))
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "[4326](38.06750000,-120.54360000)", angelsCamp.String())
	assert.Equal(t, "[null](1.00000000,2.00000000)", NewPoint(Untagged, 1, 2).String())
	assert.Equal(t, "[0](2.00000000,1.00000000)", XY(1, 2).String())
}

func TestSystem_SRID(t *testing.T) {
	srid, ok := WGS84.SRID()
	assert.True(t, ok)
	assert.Equal(t, SRIDWGS84, srid)

	_, ok = Untagged.SRID()
	assert.False(t, ok)
	assert.False(t, Untagged.IsTagged())
	assert.True(t, Cartesian.IsTagged())
}
