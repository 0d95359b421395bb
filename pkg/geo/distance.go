package geo

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinates. Invalid input (NaN, Inf) yields 0.0 instead of an error so a
// single malformed element never breaks a result set. Callers must not read
// 0.0 as proof that two points coincide.
func Distance(latA, lngA, latB, lngB float64) float64 {
	for _, v := range []float64{latA, lngA, latB, lngB} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0.0
		}
	}

	dLat := toRadians(latB - latA)
	dLng := toRadians(lngB - lngA)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(latA))*math.Cos(toRadians(latB))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push a slightly above 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	d := EarthRadiusKm * c
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0.0
	}
	return d
}

// DistanceFromStrings parses raw coordinate strings (query parameters, upstream
// tags) and returns Distance. Any non-numeric argument yields 0.0.
func DistanceFromStrings(latA, lngA, latB, lngB string) float64 {
	vals := make([]float64, 0, 4)
	for _, raw := range []string{latA, lngA, latB, lngB} {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0.0
		}
		vals = append(vals, v)
	}
	return Distance(vals[0], vals[1], vals[2], vals[3])
}

// ValidCoordinate reports whether lat/lng are finite and within WGS84 bounds.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
