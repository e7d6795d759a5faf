package geo

import "math"

// Compare orders points by system, then latitude, then longitude. Untagged
// systems sort last. Coordinates follow a total order where -Inf is smallest,
// -0 sorts before +0, +Inf follows every finite value and NaN is greatest
// (all NaNs compare equal). The result is always -1, 0 or 1.
func Compare(a, b Point) int {
	if c := CompareSystems(a.System, b.System); c != 0 {
		return c
	}
	if c := compareFloat(a.Lat, b.Lat); c != 0 {
		return c
	}
	return compareFloat(a.Lon, b.Lon)
}

// EpsilonDistance returns the planar distance between a and b, signed by
// Compare(a, b). Useful for approximate equality with a caller-chosen epsilon.
func EpsilonDistance(a, b Point) (float64, error) {
	d, err := PlanarDistance(a, b)
	if err != nil {
		return 0, err
	}
	return d * float64(Compare(a, b)), nil
}

func compareFloat(x, y float64) int {
	if x < y {
		return -1
	}
	if x > y {
		return 1
	}
	xb, yb := orderedBits(x), orderedBits(y)
	switch {
	case xb < yb:
		return -1
	case xb > yb:
		return 1
	}
	return 0
}

// orderedBits maps every NaN onto one canonical pattern so NaNs tie with
// each other and, read as signed integers, sort above +Inf. Signed zeros
// differ only in the sign bit, so -0 reads as negative.
func orderedBits(x float64) int64 {
	if math.IsNaN(x) {
		return 0x7ff8000000000000
	}
	return int64(math.Float64bits(x))
}
