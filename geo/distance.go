package geo

import "math"

const earthRadiusMiles = 3959.0

// HaversineMiles returns the great-circle distance in miles between two
// lat/lon points. Identical points return 0.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// EstimateDriveTimeMinutes converts a distance into an estimated drive time
// using a piecewise speed model: short hops are slow surface streets, longer
// legs assume highway speeds. The estimate is discontinuous at bucket
// boundaries (it can dip just past one); this is a heuristic, not a routing
// result.
func EstimateDriveTimeMinutes(distanceMiles float64) float64 {
	var speedMPH float64
	switch {
	case distanceMiles <= 5:
		speedMPH = 25
	case distanceMiles <= 15:
		speedMPH = 35
	case distanceMiles <= 30:
		speedMPH = 45
	default:
		speedMPH = 55
	}
	return math.Round(distanceMiles / speedMPH * 60)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
