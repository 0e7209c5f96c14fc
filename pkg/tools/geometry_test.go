package tools

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/NERVsystems/photogeo/pkg/geo"
	"github.com/NERVsystems/photogeo/pkg/testutil"
)

func TestHandleGeoDistance(t *testing.T) {
	tests := []struct {
		name         string
		args         map[string]any
		expectError  bool
		wantDistance float64
		wantUnit     geo.Unit
	}{
		{
			name:         "One degree on the equator",
			args:         map[string]any{"from_lat": 0.0, "from_lon": 0.0, "to_lat": 0.0, "to_lon": 1.0},
			wantDistance: 111.195,
			wantUnit:     geo.Kilometers,
		},
		{
			name:         "Miles",
			args:         map[string]any{"from_lat": 0.0, "from_lon": 0.0, "to_lat": 0.0, "to_lon": 1.0, "unit": "miles"},
			wantDistance: 69.09,
			wantUnit:     geo.Miles,
		},
		{
			name:         "Numbers as strings",
			args:         map[string]any{"from_lat": "0", "from_lon": "0", "to_lat": "0", "to_lon": "1"},
			wantDistance: 111.195,
			wantUnit:     geo.Kilometers,
		},
		{
			name:        "Latitude out of range",
			args:        map[string]any{"from_lat": 91.0, "from_lon": 0.0, "to_lat": 0.0, "to_lon": 1.0},
			expectError: true,
		},
		{
			name:        "Missing argument",
			args:        map[string]any{"from_lat": 0.0, "from_lon": 0.0, "to_lat": 0.0},
			expectError: true,
		},
		{
			name:        "Unknown unit",
			args:        map[string]any{"from_lat": 0.0, "from_lon": 0.0, "to_lat": 0.0, "to_lon": 1.0, "unit": "furlongs"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleGeoDistance(context.Background(), testutil.CallRequest("geo_distance", tt.args))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.IsError != tt.expectError {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.expectError, testutil.ResultText(result))
			}
			if tt.expectError {
				return
			}

			var output struct {
				Distance float64  `json:"distance"`
				Unit     geo.Unit `json:"unit"`
			}
			if err := json.Unmarshal([]byte(testutil.ResultText(result)), &output); err != nil {
				t.Fatalf("Failed to parse result: %v", err)
			}
			if math.Abs(output.Distance-tt.wantDistance) > 0.01 {
				t.Errorf("distance = %v, want %v", output.Distance, tt.wantDistance)
			}
			if output.Unit != tt.wantUnit {
				t.Errorf("unit = %q, want %q", output.Unit, tt.wantUnit)
			}
		})
	}
}

func TestHandleGeoDestination(t *testing.T) {
	args := map[string]any{"latitude": 0.0, "longitude": 0.0, "distance": 111.195, "bearing": 90.0}
	result, err := HandleGeoDestination(context.Background(), testutil.CallRequest("geo_destination", args))
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure: %v %s", err, testutil.ResultText(result))
	}

	var output struct {
		Destination geo.Coordinate `json:"destination"`
	}
	if err := json.Unmarshal([]byte(testutil.ResultText(result)), &output); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if math.Abs(output.Destination.Longitude-1) > 1e-3 || math.Abs(output.Destination.Latitude) > 1e-6 {
		t.Errorf("destination = %+v, want ~(0, 1)", output.Destination)
	}

	args["distance"] = -1.0
	result, _ = HandleGeoDestination(context.Background(), testutil.CallRequest("geo_destination", args))
	if !result.IsError {
		t.Error("negative distance should be rejected")
	}
}

func TestHandleGeoCentroid(t *testing.T) {
	t.Run("Across the antimeridian", func(t *testing.T) {
		args := map[string]any{"points": []any{
			map[string]any{"latitude": 0.0, "longitude": 179.0},
			map[string]any{"latitude": 0.0, "longitude": -179.0},
		}}
		result, err := HandleGeoCentroid(context.Background(), testutil.CallRequest("geo_centroid", args))
		if err != nil || result.IsError {
			t.Fatalf("unexpected failure: %v %s", err, testutil.ResultText(result))
		}

		var output struct {
			Centroid geo.Coordinate `json:"centroid"`
			Count    int            `json:"count"`
		}
		if err := json.Unmarshal([]byte(testutil.ResultText(result)), &output); err != nil {
			t.Fatalf("Failed to parse result: %v", err)
		}
		if math.Abs(math.Abs(output.Centroid.Longitude)-180) > 1e-9 {
			t.Errorf("centroid longitude = %v, want +/-180", output.Centroid.Longitude)
		}
		if output.Count != 2 {
			t.Errorf("count = %d, want 2", output.Count)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		result, _ := HandleGeoCentroid(context.Background(), testutil.CallRequest("geo_centroid", map[string]any{"points": []any{}}))
		if !result.IsError {
			t.Error("empty points should be rejected")
		}
	})

	t.Run("Invalid point", func(t *testing.T) {
		args := map[string]any{"points": []any{map[string]any{"latitude": 95.0, "longitude": 0.0}}}
		result, _ := HandleGeoCentroid(context.Background(), testutil.CallRequest("geo_centroid", args))
		if !result.IsError {
			t.Error("invalid point should be rejected")
		}
	})
}

func TestHandleGeoBoundingBox(t *testing.T) {
	args := map[string]any{"latitude": 0.0, "longitude": 179.5, "radius_km": 200.0}
	result, err := HandleGeoBoundingBox(context.Background(), testutil.CallRequest("geo_bounding_box", args))
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure: %v %s", err, testutil.ResultText(result))
	}

	var output struct {
		Bounds geo.BoundingBox `json:"bounds"`
		Wraps  bool            `json:"wraps"`
	}
	if err := json.Unmarshal([]byte(testutil.ResultText(result)), &output); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if !output.Wraps {
		t.Errorf("box %+v near the antimeridian should wrap", output.Bounds)
	}
	if output.Bounds.East >= output.Bounds.West {
		t.Errorf("wrapped box should have east < west, got %+v", output.Bounds)
	}
}

func TestHandleGreatCirclePath(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"from_lat": 51.5, "from_lon": -0.12, "to_lat": 40.71, "to_lon": -74.0}
	}

	t.Run("Polyline", func(t *testing.T) {
		args := base()
		args["segments"] = 4
		args["encoding"] = "polyline"
		result, err := HandleGreatCirclePath(context.Background(), testutil.CallRequest("great_circle_path", args))
		if err != nil || result.IsError {
			t.Fatalf("unexpected failure: %v %s", err, testutil.ResultText(result))
		}

		var output struct {
			Count    int    `json:"count"`
			Polyline string `json:"polyline"`
		}
		if err := json.Unmarshal([]byte(testutil.ResultText(result)), &output); err != nil {
			t.Fatalf("Failed to parse result: %v", err)
		}
		if output.Count != 5 {
			t.Errorf("count = %d, want 5", output.Count)
		}
		points, err := geo.DecodePolyline(output.Polyline)
		if err != nil {
			t.Fatalf("DecodePolyline: %v", err)
		}
		if len(points) != 5 {
			t.Errorf("decoded %d points, want 5", len(points))
		}
	})

	t.Run("Bad segments", func(t *testing.T) {
		args := base()
		args["segments"] = 0
		result, _ := HandleGreatCirclePath(context.Background(), testutil.CallRequest("great_circle_path", args))
		if !result.IsError {
			t.Error("zero segments should be rejected")
		}
	})

	t.Run("Bad encoding", func(t *testing.T) {
		args := base()
		args["encoding"] = "wkt"
		result, _ := HandleGreatCirclePath(context.Background(), testutil.CallRequest("great_circle_path", args))
		if !result.IsError || !strings.Contains(testutil.ResultText(result), "Encoding") {
			t.Errorf("unknown encoding should be rejected, got %s", testutil.ResultText(result))
		}
	})
}
