// Package tools provides the photo geodata MCP tool implementations.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/photogeo/pkg/cache"
	"github.com/NERVsystems/photogeo/pkg/config"
	"github.com/NERVsystems/photogeo/pkg/geo"
	"github.com/NERVsystems/photogeo/pkg/schedule"
	"github.com/NERVsystems/photogeo/pkg/viewport"
)

// Registry holds all MCP tool registrations and the state the photo tools
// share between calls.
type Registry struct {
	logger *slog.Logger
	cfg    *config.Config

	clusters   *cache.Memo[*ClusterOutput]
	reductions *cache.Memo[*ReduceOutput]
	indexes    *cache.Memo[*viewport.Index[PhotoItem]]
	buffers    *schedule.ElementPool[*bytes.Buffer]
}

// NewRegistry creates a new MCP tool registry. A nil cfg means
// config.Default().
func NewRegistry(logger *slog.Logger, cfg *config.Config) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	// The capacity is clamped and the constructor is non-nil, so this
	// cannot fail.
	buffers, _ := schedule.NewElementPool(max(0, cfg.Schedule.PoolCapacity),
		func() *bytes.Buffer { return new(bytes.Buffer) },
		(*bytes.Buffer).Reset,
	)

	return &Registry{
		logger:     logger,
		cfg:        cfg,
		clusters:   cache.New[*ClusterOutput](cfg.Cache.Size, cfg.CacheTTL()),
		reductions: cache.New[*ReduceOutput](cfg.Cache.Size, cfg.CacheTTL()),
		indexes:    cache.New[*viewport.Index[PhotoItem]](cfg.Cache.Size, cfg.CacheTTL()),
		buffers:    buffers,
	}
}

// ToolDefinition represents a photogeo MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all photogeo MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	unit, err := geo.ParseUnit(r.cfg.Cluster.Unit)
	if err != nil {
		unit = geo.Kilometers
	}

	return []ToolDefinition{
		// Geometry Tools
		{
			Name:        "geo_distance",
			Description: "Great-circle distance, bearing and midpoint between two coordinates",
			Tool:        GeoDistanceTool(),
			Handler:     HandleGeoDistance,
		},
		{
			Name:        "geo_destination",
			Description: "Point reached from a start along a bearing",
			Tool:        GeoDestinationTool(),
			Handler:     HandleGeoDestination,
		},
		{
			Name:        "geo_midpoint",
			Description: "Great-circle midpoint of two coordinates",
			Tool:        GeoMidpointTool(),
			Handler:     HandleGeoMidpoint,
		},
		{
			Name:        "geo_centroid",
			Description: "Spherical centroid and bounds of a set of coordinates",
			Tool:        GeoCentroidTool(),
			Handler:     HandleGeoCentroid,
		},
		{
			Name:        "geo_bounding_box",
			Description: "Bounding box of a radius around a coordinate",
			Tool:        GeoBoundingBoxTool(),
			Handler:     HandleGeoBoundingBox,
		},
		{
			Name:        "great_circle_path",
			Description: "Points along the great-circle arc between two coordinates",
			Tool:        GreatCirclePathTool(),
			Handler:     HandleGreatCirclePath,
		},

		// Photo Tools
		{
			Name:        "cluster_photos",
			Description: "Group geotagged photos into proximity clusters",
			Tool:        ClusterPhotosTool(r.cfg.Cluster.MaxDistanceKm, unit),
			Handler:     r.HandleClusterPhotos,
		},
		{
			Name:        "reduce_viewport",
			Description: "Reduce photos to what a globe view should render",
			Tool:        ReduceViewportTool(r.cfg.ReducerConfig(), r.cfg.Viewport.ChunkSize),
			Handler:     r.HandleReduceViewport,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}

// encode marshals large photo results through a pooled buffer.
func (r *Registry) encode(logger *slog.Logger, output any) *mcp.CallToolResult {
	buf := r.buffers.Acquire()
	defer r.buffers.Release(buf)

	if err := json.NewEncoder(buf).Encode(output); err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorWithGuidance(NewInternalError("Failed to generate result"))
	}
	return mcp.NewToolResultText(string(bytes.TrimRight(buf.Bytes(), "\n")))
}
