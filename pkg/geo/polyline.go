package geo

import (
	"errors"
	"math"
)

// polylinePrecision is the Polyline5 scale factor (5 decimal places).
const polylinePrecision = 1e5

// ErrMalformedPolyline is returned when an encoded polyline ends in the
// middle of a value.
var ErrMalformedPolyline = errors.New("geo: malformed polyline")

// EncodePolyline encodes coordinates using Google's Polyline Algorithm
// Format with 5 decimal places of precision.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
func EncodePolyline(points []Coordinate) string {
	if len(points) == 0 {
		return ""
	}

	// Six bytes per point covers typical deltas.
	buf := make([]byte, 0, len(points)*6)
	prevLat, prevLon := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Latitude * polylinePrecision))
		lon := int(math.Round(p.Longitude * polylinePrecision))

		buf = appendSigned(buf, lat-prevLat)
		buf = appendSigned(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

// DecodePolyline decodes a Polyline5 string produced by EncodePolyline.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	points := make([]Coordinate, 0, len(encoded)/4+1)

	lat, lon := 0, 0
	for i := 0; i < len(encoded); {
		dLat, next, err := decodeSigned(encoded, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := decodeSigned(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next

		lat += dLat
		lon += dLon
		points = append(points, Coordinate{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lon) / polylinePrecision,
		})
	}
	return points, nil
}

// appendSigned zigzag-encodes value and appends its 5-bit chunks.
func appendSigned(buf []byte, value int) []byte {
	s := value << 1
	if value < 0 {
		s = ^s
	}
	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	return append(buf, byte(s+63))
}

// decodeSigned reads one value starting at index i and returns it along
// with the index of the next unread byte.
func decodeSigned(encoded string, i int) (int, int, error) {
	result, shift := 0, 0
	for {
		if i >= len(encoded) {
			return 0, i, ErrMalformedPolyline
		}
		b := int(encoded[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	// Undo the zigzag sign folding.
	return (result >> 1) ^ (-(result & 1)), i, nil
}
