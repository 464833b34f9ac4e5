package services

import (
	"math"
	"music-nearby/internal/domain"
)

// Mean equatorial radius; the same sphere the mobile map layer draws its 100 m circles on.
const earthRadiusMeters = 6378137

// DefaultRadiusMeters is the unlock radius around every location.
const DefaultRadiusMeters = 100

// Distance returns the great-circle surface distance between a and b in meters
// (haversine over a spherical Earth).
func Distance(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, h)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FirstWithin scans locations in the given order and returns the first one whose
// distance from user, rounded to the whole meter, is at most radiusMeters.
//
// Ties are broken purely by order: a later location that is closer never wins over
// an earlier one that is in range. The scan stops at the first match.
func FirstWithin(user domain.Coordinate, locations []domain.Location, radiusMeters float64) (domain.Location, bool) {
	for _, loc := range locations {
		if math.Round(Distance(user, loc.Coordinate)) <= radiusMeters {
			return loc, true
		}
	}
	return domain.Location{}, false
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
