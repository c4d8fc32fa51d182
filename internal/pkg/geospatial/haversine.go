package geospatial

import "math"

// EarthRadiusKm is the mean Earth radius used by the great-circle formula.
const EarthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometres between two points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// TravelMinutes converts a distance to whole minutes at speedKmh.
func TravelMinutes(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
