package testutil

import (
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

func TestPhotoArgs(t *testing.T) {
	center := geo.Coordinate{Latitude: 10, Longitude: 179}
	a := PhotoArgs(50, 7, center, 3)
	b := PhotoArgs(50, 7, center, 3)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different photos")
	}
	if reflect.DeepEqual(a, PhotoArgs(50, 8, center, 3)) {
		t.Error("different seeds produced identical photos")
	}

	for i, p := range a {
		m := p.(map[string]any)
		lat := m["latitude"].(float64)
		lon := m["longitude"].(float64)
		if err := geo.ValidateCoords(lat, lon); err != nil {
			t.Errorf("photo %d: %v", i, err)
		}
	}
	if id := a[3].(map[string]any)["id"]; id != "p0003" {
		t.Errorf("id = %v, want p0003", id)
	}
}

func TestCallRequestAndResultText(t *testing.T) {
	req := CallRequest("geo_midpoint", map[string]any{"from_lat": 1.0})
	if req.Params.Name != "geo_midpoint" {
		t.Errorf("name = %q", req.Params.Name)
	}
	if got := req.GetArguments()["from_lat"]; got != 1.0 {
		t.Errorf("from_lat = %v", got)
	}

	if got := ResultText(mcp.NewToolResultText("hello")); got != "hello" {
		t.Errorf("ResultText = %q", got)
	}
	if got := ResultText(nil); got != "" {
		t.Errorf("ResultText(nil) = %q", got)
	}
}
