package geo

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// haversineEarthRadius is the sphere radius, in meters, of the haversine metric.
	haversineEarthRadius = 6367000.0

	// WGS84 ellipsoid.
	wgs84SemiMajor  = 6378137.0
	wgs84SemiMinor  = 6356752.3142
	wgs84Flattening = (wgs84SemiMajor - wgs84SemiMinor) / wgs84SemiMajor

	vincentyIterations      = 5
	vincentyChangeThreshold = 1e-5
)

// DistanceFunc measures the distance between two points of the same system.
type DistanceFunc func(a, b Point) (float64, error)

// PlanarDistance returns the Euclidean distance between two points in their
// native unit. Degrees are treated like any other planar unit.
func PlanarDistance(a, b Point) (float64, error) {
	if err := checkSameSystem(a, b); err != nil {
		return 0, err
	}
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon), nil
}

// CartesianDistanceMeters returns the planar distance between two SRID 0 points.
func CartesianDistanceMeters(a, b Point) (float64, error) {
	if err := requireSystem(a, b, Cartesian); err != nil {
		return 0, err
	}
	return PlanarDistance(a, b)
}

// DefaultDistanceMeters picks the metric appropriate for the points' system:
// planar for Cartesian and Vincenty for WGS84.
func DefaultDistanceMeters(a, b Point) (float64, error) {
	if err := checkSameSystem(a, b); err != nil {
		return 0, err
	}
	switch a.System {
	case Cartesian:
		return PlanarDistance(a, b)
	case WGS84:
		return VincentyDistanceMeters(a, b)
	}
	return 0, errors.Wrapf(ErrUnsupportedSystem, "no default distance for system %s", a.System)
}

// HaversineDistanceMeters returns the great-circle distance between two WGS84
// points on a sphere of radius 6,367 km.
func HaversineDistanceMeters(a, b Point) (float64, error) {
	if err := requireSystem(a, b, WGS84); err != nil {
		return 0, err
	}
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * haversineEarthRadius, nil
}

// VincentyDistanceMeters returns the ellipsoidal distance between two WGS84
// points using Vincenty's inverse formula. The iteration count is capped, so
// nearly antipodal points get an approximate answer rather than no answer.
func VincentyDistanceMeters(a, b Point) (float64, error) {
	if err := requireSystem(a, b, WGS84); err != nil {
		return 0, err
	}

	const (
		semiMajor = wgs84SemiMajor
		semiMinor = wgs84SemiMinor
		f         = wgs84Flattening
	)

	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	omega := radians(b.Lon) - radians(a.Lon)

	aSq := semiMajor * semiMajor
	bSq := semiMinor * semiMinor
	secondEccSq := (aSq - bSq) / bSq

	u1 := math.Atan((1.0 - f) * math.Tan(phi1))
	u2 := math.Atan((1.0 - f) * math.Tan(phi2))
	sinU1, cosU1 := math.Sin(u1), math.Cos(u1)
	sinU2, cosU2 := math.Sin(u2), math.Cos(u2)

	sinU1sinU2 := sinU1 * sinU2
	cosU1sinU2 := cosU1 * sinU2
	sinU1cosU2 := sinU1 * cosU2
	cosU1cosU2 := cosU1 * cosU2

	lambda := omega
	var bigA, sigma, deltaSigma float64

	for i := 0; i < vincentyIterations; i++ {
		lambda0 := lambda
		sinLambda, cosLambda := math.Sin(lambda), math.Cos(lambda)

		cross := cosU1sinU2 - sinU1cosU2*cosLambda
		sinSqSigma := (cosU2 * sinLambda * cosU2 * sinLambda) + cross*cross
		sinSigma := math.Sqrt(sinSqSigma)
		cosSigma := sinU1sinU2 + cosU1cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		// Coincident points: sin²σ is exactly zero.
		sinAlpha := 0.0
		if sinSqSigma != 0 {
			sinAlpha = cosU1cosU2 * sinLambda / sinSigma
		}
		cosAlpha := math.Cos(math.Asin(sinAlpha))
		cosSqAlpha := cosAlpha * cosAlpha

		// Equatorial lines: cos²α is exactly zero.
		cos2SigmaM := 0.0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1sinU2/cosSqAlpha
		}
		uSq := cosSqAlpha * secondEccSq
		cos2SigmaMSq := cos2SigmaM * cos2SigmaM

		bigA = 1.0 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
		bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

		deltaSigma = bigB * sinSigma *
			(cos2SigmaM + bigB/4*
				(cosSigma*(-1+2*cos2SigmaMSq)-bigB/6*cos2SigmaM*(-3+4*sinSqSigma)*(-3+4*cos2SigmaMSq)))

		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		lambda = omega + (1-c)*f*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaMSq)))

		// NaN (lambda == 0) never satisfies the threshold, so the loop runs out.
		change := math.Abs((lambda - lambda0) / lambda)
		if i > 1 && change < vincentyChangeThreshold {
			break
		}
	}

	return semiMinor * bigA * (sigma - deltaSigma), nil
}

// requireSystem checks that both points share the wanted system.
func requireSystem(a, b Point, want System) error {
	if err := checkSameSystem(a, b); err != nil {
		return err
	}
	if a.System != want {
		return errors.Wrapf(ErrUnsupportedSystem, "expected system %s, got %s", want, a.System)
	}
	return nil
}

func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}
