package tools

import (
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// requireNumber reads a required numeric argument. Strings holding numbers
// are accepted.
func requireNumber(req mcp.CallToolRequest, key string) (float64, *APIError) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return 0, NewValidationError(CodeInvalidArgument, fmt.Sprintf("missing required argument %q", key), "")
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewValidationError(CodeInvalidArgument, fmt.Sprintf("argument %q must be a finite number", key), "")
	}
	return v, nil
}

// requireCoordinate reads and validates a latitude/longitude argument pair.
func requireCoordinate(req mcp.CallToolRequest, latKey, lonKey string) (geo.Coordinate, *APIError) {
	lat, apiErr := requireNumber(req, latKey)
	if apiErr != nil {
		return geo.Coordinate{}, apiErr
	}
	lon, apiErr := requireNumber(req, lonKey)
	if apiErr != nil {
		return geo.Coordinate{}, apiErr
	}
	if err := geo.ValidateCoords(lat, lon); err != nil {
		return geo.Coordinate{}, CoordinateValidationError(latKey+"/"+lonKey, err)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// unitArg reads the optional "unit" argument.
func unitArg(req mcp.CallToolRequest, def geo.Unit) (geo.Unit, *APIError) {
	u, err := geo.ParseUnit(mcp.ParseString(req, "unit", string(def)))
	if err != nil {
		return "", NewValidationError(CodeInvalidArgument, err.Error(), GuidanceUnit)
	}
	return u, nil
}

// boundsArg reads an optional bounding box given as north/south/east/west.
// ok is false when none of the four keys is present.
func boundsArg(req mcp.CallToolRequest) (bb geo.BoundingBox, ok bool, apiErr *APIError) {
	args := req.GetArguments()
	present := 0
	for _, k := range []string{"north", "south", "east", "west"} {
		if _, has := args[k]; has {
			present++
		}
	}
	if present == 0 {
		return geo.BoundingBox{}, false, nil
	}
	if present != 4 {
		return geo.BoundingBox{}, false, NewValidationError(CodeInvalidArgument,
			"bounds need all of north, south, east and west", "")
	}

	vals := make(map[string]float64, 4)
	for _, k := range []string{"north", "south", "east", "west"} {
		v, apiErr := requireNumber(req, k)
		if apiErr != nil {
			return geo.BoundingBox{}, false, apiErr
		}
		vals[k] = v
	}
	bb = geo.BoundingBox{North: vals["north"], South: vals["south"], East: vals["east"], West: vals["west"]}

	if err := geo.ValidateCoords(bb.North, bb.East); err != nil {
		return geo.BoundingBox{}, false, CoordinateValidationError("north/east", err)
	}
	if err := geo.ValidateCoords(bb.South, bb.West); err != nil {
		return geo.BoundingBox{}, false, CoordinateValidationError("south/west", err)
	}
	if bb.South > bb.North {
		return geo.BoundingBox{}, false, NewValidationError(CodeInvalidArgument,
			fmt.Sprintf("south (%v) must not be greater than north (%v)", bb.South, bb.North), "")
	}
	return bb, true, nil
}
