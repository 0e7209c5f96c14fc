package geo

import "math"

// Validate reports whether c is finite and inside the valid degree ranges.
func Validate(c Coordinate) bool {
	return ValidateCoords(c.Latitude, c.Longitude) == nil
}

// ValidateCoords checks a raw latitude/longitude pair and returns a
// *CoordinateError describing the first failing field.
func ValidateCoords(lat, lon float64) error {
	if !finite(lat) || lat < -90 || lat > 90 {
		return &CoordinateError{Field: "latitude", Value: lat}
	}
	if !finite(lon) || lon < -180 || lon > 180 {
		return &CoordinateError{Field: "longitude", Value: lon}
	}
	return nil
}

// FilterValid returns the coordinates that pass Validate, in input order.
func FilterValid(coords []Coordinate) []Coordinate {
	out := make([]Coordinate, 0, len(coords))
	for _, c := range coords {
		if Validate(c) {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeLongitude wraps lng into [-180, 180]. Values already in range
// are returned unchanged, so the function is idempotent.
func NormalizeLongitude(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	if !finite(lng) {
		return lng
	}
	wrapped := math.Mod(lng+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}

// NormalizeLatitude clamps lat into [-90, 90]. Latitude is clamped, not
// wrapped: there is nothing "past" a pole on a lat/lon grid.
func NormalizeLatitude(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

// Normalize applies NormalizeLatitude and NormalizeLongitude.
func Normalize(c Coordinate) Coordinate {
	return Coordinate{
		Latitude:  NormalizeLatitude(c.Latitude),
		Longitude: NormalizeLongitude(c.Longitude),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
