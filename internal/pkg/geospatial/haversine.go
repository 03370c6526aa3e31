package geospatial

import "math"

// EarthRadiusKm is the mean earth radius used for all great-circle distances.
const EarthRadiusKm = 6371.0

// MaxDistanceKm is the antipodal distance, the largest value HaversineKm returns.
const MaxDistanceKm = math.Pi * EarthRadiusKm

// HaversineKm calculates the great-circle distance in kilometres between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sLon*sLon

	// rounding can push h slightly outside [0,1] near identical or antipodal points
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// BoundingBoxKm returns a box containing every point within radiusKm of
// (lat, lon). ok is false when the circle reaches a pole or crosses the
// antimeridian; a plain min/max box cannot describe it then.
func BoundingBoxKm(lat, lon, radiusKm float64) (minLat, minLon, maxLat, maxLon float64, ok bool) {
	angular := radiusKm / EarthRadiusKm
	if angular >= math.Pi/2 {
		return 0, 0, 0, 0, false
	}

	// small padding so float rounding never trims a point sitting on the circle
	latDelta := toDeg(angular)*1.0001 + 1e-9
	minLat, maxLat = lat-latDelta, lat+latDelta
	if minLat <= -90 || maxLat >= 90 {
		return 0, 0, 0, 0, false
	}

	s := math.Sin(angular) / math.Cos(toRad(lat))
	if s >= 1 {
		return 0, 0, 0, 0, false
	}
	lonDelta := toDeg(math.Asin(s))*1.0001 + 1e-9
	minLon, maxLon = lon-lonDelta, lon+lonDelta
	if minLon < -180 || maxLon > 180 {
		return 0, 0, 0, 0, false
	}

	return minLat, minLon, maxLat, maxLon, true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
