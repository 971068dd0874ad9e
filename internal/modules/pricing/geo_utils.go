// README: Pure geographic helpers: haversine distance and polygon containment.
package pricing

import (
	"math"

	"chauffeur/internal/types"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// pointInPolygon reports whether p lies inside the polygon using the
// ray-casting rule. Points exactly on an edge may land on either side.
func pointInPolygon(p types.Point, polygon []types.Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].Lng, polygon[i].Lat
		xj, yj := polygon[j].Lng, polygon[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
