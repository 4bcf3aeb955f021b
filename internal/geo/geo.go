package geo

import (
	"math"

	"gymcrew-backend/internal/domain"
)

// EarthRadiusMeters is the mean radius used for the spherical approximation.
const EarthRadiusMeters = 6371000.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are in range.
func (p Point) Valid() bool {
	return domain.ValidLat(p.Lat) && domain.ValidLng(p.Lng)
}

// Match is the nearest fence to a point.
type Match struct {
	Fence     domain.Location
	DistanceM float64
}

// Within reports whether the point lies inside the matched fence.
func (m Match) Within() bool {
	return IsWithinFence(m.DistanceM, m.Fence.RadiusM)
}

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// NearestFence picks the closest fence. Ties keep the earlier fence.
// ok is false when fences is empty.
func NearestFence(p Point, fences []domain.Location) (m Match, ok bool) {
	for i, f := range fences {
		d := DistanceMeters(p, Point{Lat: f.Lat, Lng: f.Lng})
		if i == 0 || d < m.DistanceM {
			m = Match{Fence: f, DistanceM: d}
		}
	}
	return m, len(fences) > 0
}

func IsWithinFence(distanceM float64, radiusM int) bool {
	return distanceM <= float64(radiusM)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
