package votw

import (
	"math"

	"github.com/golang/geo/s2"
)

// earthRadiusKm matches the haversine convention used by the upstream GVP
// tooling.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// WGS-84 coordinate pairs.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// DistanceTo returns the great-circle distance in kilometers from the volcano
// to a point. A volcano with unknown coordinates is infinitely far from
// everything.
func (v Volcano) DistanceTo(lat, lon float64) float64 {
	if v.Latitude == nil || v.Longitude == nil {
		return math.Inf(1)
	}
	return Distance(*v.Latitude, *v.Longitude, lat, lon)
}
