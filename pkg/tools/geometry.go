package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

const (
	defaultPathSegments = 32
	maxPathSegments     = 1000
)

func withFromTo() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("from_lat", mcp.Required(), mcp.Description("Start latitude")),
		mcp.WithNumber("from_lon", mcp.Required(), mcp.Description("Start longitude")),
		mcp.WithNumber("to_lat", mcp.Required(), mcp.Description("End latitude")),
		mcp.WithNumber("to_lon", mcp.Required(), mcp.Description("End longitude")),
	}
}

func withUnit() mcp.ToolOption {
	return mcp.WithString("unit",
		mcp.Description("Distance unit"),
		mcp.Enum("km", "miles"),
		mcp.DefaultString("km"),
	)
}

// GeoDistanceTool returns a tool definition for great-circle distance.
func GeoDistanceTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Great-circle distance, initial bearing and midpoint between two coordinates"),
	}, withFromTo()...)
	opts = append(opts, withUnit())
	return mcp.NewTool("geo_distance", opts...)
}

// HandleGeoDistance implements geo_distance.
func HandleGeoDistance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "geo_distance")

	from, apiErr := requireCoordinate(req, "from_lat", "from_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	to, apiErr := requireCoordinate(req, "to_lat", "to_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	unit, apiErr := unitArg(req, geo.Kilometers)
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}

	output := struct {
		Distance       float64        `json:"distance"`
		Unit           geo.Unit       `json:"unit"`
		InitialBearing float64        `json:"initial_bearing"`
		Midpoint       geo.Coordinate `json:"midpoint"`
	}{
		Distance:       geo.Distance(from, to, unit),
		Unit:           unit,
		InitialBearing: geo.Bearing(from, to),
		Midpoint:       geo.Midpoint(from, to),
	}
	return jsonResult(logger, output), nil
}

// GeoDestinationTool returns a tool definition for the destination point.
func GeoDestinationTool() mcp.Tool {
	return mcp.NewTool("geo_destination",
		mcp.WithDescription("Point reached by travelling a distance along an initial bearing"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Start latitude")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Start longitude")),
		mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance to travel"), mcp.Min(0)),
		mcp.WithNumber("bearing", mcp.Required(), mcp.Description("Initial bearing in degrees clockwise from north")),
		withUnit(),
	)
}

// HandleGeoDestination implements geo_destination.
func HandleGeoDestination(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "geo_destination")

	start, apiErr := requireCoordinate(req, "latitude", "longitude")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	distance, apiErr := requireNumber(req, "distance")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	if distance < 0 {
		return ErrorResponse("Distance must not be negative"), nil
	}
	bearing, apiErr := requireNumber(req, "bearing")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	unit, apiErr := unitArg(req, geo.Kilometers)
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}

	output := struct {
		Start       geo.Coordinate `json:"start"`
		Destination geo.Coordinate `json:"destination"`
		Distance    float64        `json:"distance"`
		Bearing     float64        `json:"bearing"`
		Unit        geo.Unit       `json:"unit"`
	}{
		Start:       start,
		Destination: geo.Destination(start, distance, bearing, unit),
		Distance:    distance,
		Bearing:     bearing,
		Unit:        unit,
	}
	return jsonResult(logger, output), nil
}

// GeoMidpointTool returns a tool definition for the great-circle midpoint.
func GeoMidpointTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Great-circle midpoint of two coordinates"),
	}, withFromTo()...)
	return mcp.NewTool("geo_midpoint", opts...)
}

// HandleGeoMidpoint implements geo_midpoint.
func HandleGeoMidpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "geo_midpoint")

	from, apiErr := requireCoordinate(req, "from_lat", "from_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	to, apiErr := requireCoordinate(req, "to_lat", "to_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}

	output := struct {
		Midpoint geo.Coordinate `json:"midpoint"`
	}{
		Midpoint: geo.Midpoint(from, to),
	}
	return jsonResult(logger, output), nil
}

// GeoCentroidTool returns a tool definition for the centroid of points.
func GeoCentroidTool() mcp.Tool {
	return mcp.NewTool("geo_centroid",
		mcp.WithDescription("Geographic center of a set of coordinates, safe across the antimeridian and near the poles"),
		mcp.WithArray("points",
			mcp.Required(),
			mcp.Description("Coordinates to average"),
			mcp.Items(pointSchema()),
		),
	)
}

// HandleGeoCentroid implements geo_centroid.
func HandleGeoCentroid(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "geo_centroid")

	points, err := decodePoints(req.GetArguments()["points"])
	if err != nil {
		return ErrorWithGuidance(CoordinateValidationError("points", err)), nil
	}

	centroid, err := geo.Centroid(points)
	if errors.Is(err, geo.ErrEmptyInput) {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument, "points must not be empty", "")), nil
	}
	if err != nil {
		logger.Error("centroid failed", "error", err)
		return ErrorResponse("Failed to compute centroid"), nil
	}
	bounds, err := geo.BoundsOf(points)
	if err != nil {
		logger.Error("bounds failed", "error", err)
		return ErrorResponse("Failed to compute bounds"), nil
	}

	output := struct {
		Centroid geo.Coordinate  `json:"centroid"`
		Count    int             `json:"count"`
		Bounds   geo.BoundingBox `json:"bounds"`
	}{
		Centroid: centroid,
		Count:    len(points),
		Bounds:   bounds,
	}
	return jsonResult(logger, output), nil
}

// GeoBoundingBoxTool returns a tool definition for a radius bounding box.
func GeoBoundingBoxTool() mcp.Tool {
	return mcp.NewTool("geo_bounding_box",
		mcp.WithDescription("Bounding box containing every point within a radius of a center; east/west may wrap across the antimeridian"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Center latitude")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Center longitude")),
		mcp.WithNumber("radius_km", mcp.Required(), mcp.Description("Radius in kilometers"), mcp.Min(0)),
	)
}

// HandleGeoBoundingBox implements geo_bounding_box.
func HandleGeoBoundingBox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "geo_bounding_box")

	center, apiErr := requireCoordinate(req, "latitude", "longitude")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	radius, apiErr := requireNumber(req, "radius_km")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	if radius < 0 {
		return ErrorResponse("Radius must not be negative"), nil
	}

	bb := geo.BoundingBoxAround(center, radius)
	output := struct {
		Bounds        geo.BoundingBox `json:"bounds"`
		Wraps         bool            `json:"wraps"`
		LongitudeSpan float64         `json:"longitude_span"`
	}{
		Bounds:        bb,
		Wraps:         bb.Wraps(),
		LongitudeSpan: bb.LongitudeSpan(),
	}
	return jsonResult(logger, output), nil
}

// GreatCirclePathTool returns a tool definition for sampling an arc.
func GreatCirclePathTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Sample the great-circle arc between two coordinates, as points or an encoded polyline"),
	}, withFromTo()...)
	opts = append(opts,
		mcp.WithNumber("segments",
			mcp.Description(fmt.Sprintf("Number of equal segments (1-%d)", maxPathSegments)),
			mcp.DefaultNumber(defaultPathSegments),
		),
		mcp.WithString("encoding",
			mcp.Description("Output format"),
			mcp.Enum("points", "polyline"),
			mcp.DefaultString("points"),
		),
	)
	return mcp.NewTool("great_circle_path", opts...)
}

// HandleGreatCirclePath implements great_circle_path.
func HandleGreatCirclePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "great_circle_path")

	from, apiErr := requireCoordinate(req, "from_lat", "from_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	to, apiErr := requireCoordinate(req, "to_lat", "to_lon")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	segments := mcp.ParseInt(req, "segments", defaultPathSegments)
	if segments < 1 || segments > maxPathSegments {
		return ErrorResponse(fmt.Sprintf("Segments must be between 1 and %d", maxPathSegments)), nil
	}
	encoding := mcp.ParseString(req, "encoding", "points")
	if encoding != "points" && encoding != "polyline" {
		return ErrorResponse("Encoding must be \"points\" or \"polyline\""), nil
	}

	path := geo.GreatCirclePath(from, to, segments)
	output := struct {
		DistanceKm     float64          `json:"distance_km"`
		InitialBearing float64          `json:"initial_bearing"`
		Count          int              `json:"count"`
		Points         []geo.Coordinate `json:"points,omitempty"`
		Polyline       string           `json:"polyline,omitempty"`
	}{
		DistanceKm:     geo.DistanceKm(from, to),
		InitialBearing: geo.Bearing(from, to),
		Count:          len(path),
	}
	if encoding == "polyline" {
		output.Polyline = geo.EncodePolyline(path)
	} else {
		output.Points = path
	}
	return jsonResult(logger, output), nil
}
