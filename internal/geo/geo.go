// Package geo implements the geohash range math and great-circle distance
// used by vendor discovery.
package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// Approximate degrees per mile. Not a true projection: accurate near the
// equator, increasingly distorted at high latitude.
const (
	latDegreesPerMile = 0.0144927536231884
	lonDegreesPerMile = 0.0181818181818182
)

// MilesToKm converts the radius unit used by RangeFor into the kilometre
// unit returned by TrueDistance.
const MilesToKm = 1.609344

// Encode returns the geohash for a coordinate. Vendors store this once at
// creation; it is not refreshed if coordinates later change.
func Encode(lat, lng float64) string {
	return geohash.Encode(lat, lng)
}

// RangeFor converts a radius in miles around a center point into a
// lexicographic [lower, upper] geohash range. Querying that range yields a
// superset of the true radius: cells near the boundary can be included or
// excluded incorrectly, so callers must refine candidates by true distance.
func RangeFor(lat, lng, radiusMiles float64) (lower, upper string) {
	lowerLat := lat - latDegreesPerMile*radiusMiles
	lowerLng := lng - lonDegreesPerMile*radiusMiles

	upperLat := lat + latDegreesPerMile*radiusMiles
	upperLng := lng + lonDegreesPerMile*radiusMiles

	return geohash.Encode(lowerLat, lowerLng), geohash.Encode(upperLat, upperLng)
}

// TrueDistance returns the spherical law-of-cosines great-circle distance in
// kilometres between two coordinates. Identical points return exactly 0; the
// arc-cosine input is clamped to 1 so floating rounding cannot push it out of
// domain.
func TrueDistance(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	radTheta := (lng1 - lng2) * math.Pi / 180

	dist := math.Sin(radLat1)*math.Sin(radLat2) + math.Cos(radLat1)*math.Cos(radLat2)*math.Cos(radTheta)
	if dist > 1 {
		dist = 1
	}

	dist = math.Acos(dist)
	dist = dist * 180 / math.Pi
	return dist * 60 * 1.1515 * MilesToKm
}
