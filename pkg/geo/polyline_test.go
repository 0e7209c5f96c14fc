package geo

import (
	"errors"
	"testing"
)

// TestDecodePolyline uses the reference strings from the Polyline5 format
// documentation.
func TestDecodePolyline(t *testing.T) {
	testCases := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:     "Empty string",
			encoded:  "",
			expected: []Coordinate{},
		},
		{
			name:    "Single point",
			encoded: "_p~iF~ps|U",
			expected: []Coordinate{
				{Latitude: 38.5, Longitude: -120.2},
			},
		},
		{
			name:    "Multiple points",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Latitude: 38.5, Longitude: -120.2},
				{Latitude: 40.7, Longitude: -120.95},
				{Latitude: 43.252, Longitude: -126.453},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DecodePolyline(tc.encoded)
			if err != nil {
				t.Fatalf("DecodePolyline error: %v", err)
			}
			if len(result) != len(tc.expected) {
				t.Fatalf("Expected %d points, got %d", len(tc.expected), len(result))
			}
			for i, expected := range tc.expected {
				if !almostEqual(result[i].Latitude, expected.Latitude, 0.00001) ||
					!almostEqual(result[i].Longitude, expected.Longitude, 0.00001) {
					t.Errorf("Point %d: expected %v, got %v", i, expected, result[i])
				}
			}
		})
	}
}

func TestDecodePolylineMalformed(t *testing.T) {
	// A latitude with no longitude, and a value cut mid-chunk.
	for _, encoded := range []string{"_p~iF", "_p~iF~ps|"} {
		if _, err := DecodePolyline(encoded); !errors.Is(err, ErrMalformedPolyline) {
			t.Errorf("DecodePolyline(%q) error = %v, want ErrMalformedPolyline", encoded, err)
		}
	}
}

func TestEncodePolyline(t *testing.T) {
	testCases := []struct {
		name     string
		points   []Coordinate
		expected string
	}{
		{
			name:     "Empty slice",
			points:   []Coordinate{},
			expected: "",
		},
		{
			name: "Single point",
			points: []Coordinate{
				{Latitude: 38.5, Longitude: -120.2},
			},
			expected: "_p~iF~ps|U",
		},
		{
			name: "Multiple points",
			points: []Coordinate{
				{Latitude: 38.5, Longitude: -120.2},
				{Latitude: 40.7, Longitude: -120.95},
				{Latitude: 43.252, Longitude: -126.453},
			},
			expected: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := EncodePolyline(tc.points); result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

// TestGreatCirclePathPolyline checks that a sampled path survives the
// codec within Polyline5 precision.
func TestGreatCirclePathPolyline(t *testing.T) {
	path := GreatCirclePath(sanFrancisco, oakland, 4)
	decoded, err := DecodePolyline(EncodePolyline(path))
	if err != nil {
		t.Fatalf("DecodePolyline error: %v", err)
	}
	if len(decoded) != len(path) {
		t.Fatalf("decoded %d points, want %d", len(decoded), len(path))
	}
	for i := range path {
		if !almostEqual(decoded[i].Latitude, path[i].Latitude, 0.00001) ||
			!almostEqual(decoded[i].Longitude, path[i].Longitude, 0.00001) {
			t.Errorf("Point %d: %v became %v", i, path[i], decoded[i])
		}
	}
}
