// Package geo provides great-circle distance computation.
package geo

import (
	"math"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

// EarthRadiusKm is the sphere radius used by the haversine formula.
const EarthRadiusKm = 6371.0

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm returns the haversine distance between a and b in
// kilometers. It is a total function: it never rejects its inputs, and
// non-finite coordinates propagate as NaN. Range validation belongs to
// the caller.
func DistanceKm(a, b models.Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Lat))*
			math.Cos(degreesToRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Within reports whether b lies within radiusKm of a. A negative radius
// never matches, even for coincident points.
func Within(a, b models.Coordinate, radiusKm float64) bool {
	if radiusKm < 0 {
		return false
	}
	return DistanceKm(a, b) <= radiusKm
}

// Round2 rounds a distance to 2 decimals for presentation.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}
