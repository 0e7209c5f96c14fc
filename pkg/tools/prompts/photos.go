// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterPhotoPrompts registers the photo map prompts with the MCP server.
func RegisterPhotoPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("photo_map",
		mcp.WithPromptDescription("Instructions for clustering and reducing photo sets for a globe view"),
	), PhotoMapPromptHandler)

	s.AddPrompt(mcp.NewPrompt("cluster_photos_examples",
		mcp.WithPromptDescription("Examples of cluster_photos requests"),
	), ClusterPhotosExamplesHandler)

	s.AddPrompt(mcp.NewPrompt("reduce_viewport_examples",
		mcp.WithPromptDescription("Examples of reduce_viewport requests"),
	), ReduceViewportExamplesHandler)
}

// PhotoMapPromptHandler returns the main prompt for the photo tools.
func PhotoMapPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to tools that organize geotagged photos for display on a 3D globe.
When using these tools:

1. Send photos as objects with id, latitude and longitude in decimal degrees; name, caption and favorite are optional
2. Photos with missing or out-of-range coordinates are not errors: they come back in "skipped" with a reason
3. Use cluster_photos to group photos taken near each other; max_distance is measured from each cluster's first photo
4. Use reduce_viewport to decide which photos to draw for a camera position; altitude is in Earth radii above the surface
5. Results are deterministic for the same input order, so repeating a request is cheap and returns "cached": true

CHOOSING PARAMETERS:
- City-scale trips: cluster_photos with max_distance 1-5 km
- Country-scale trips: max_distance 50-100 km (the default is 100 km)
- Close-up view: altitude below 1.5 returns every visible photo
- Whole-globe view: altitude above 4 returns about a fifth of them

ERROR HANDLING GUIDELINES:
When a tool returns an error, read the Guidance line and correct the named argument before retrying.`

	return mcp.NewGetPromptResult(
		"Photo Map Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}

// ClusterPhotosExamplesHandler returns examples for cluster_photos.
func ClusterPhotosExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF EFFECTIVE CLUSTER_PHOTOS USAGE:

User: "Group my Paris and London photos by city."
AI: *uses cluster_photos with the photos and max_distance: 50, unit: "km"*

User: "Which of these hiking photos were taken within a mile of each other?"
AI: *uses cluster_photos with max_distance: 1, unit: "miles"*

User: "Show the clusters on a map."
AI: *uses cluster_photos with include_geojson: true and passes the FeatureCollection to the map*

READING THE RESULT:
1. Each cluster has a stable id derived from its members, a centroid and a radius
2. "representative" is the photo to show on the cluster marker
3. "skipped" lists input photos that were dropped and why`

	return mcp.NewGetPromptResult(
		"Cluster Photos Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}

// ReduceViewportExamplesHandler returns examples for reduce_viewport.
func ReduceViewportExamplesHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	examplesPrompt := `EXAMPLES OF EFFECTIVE REDUCE_VIEWPORT USAGE:

User: "The camera is over Japan at altitude 2. What should I draw?"
AI: *uses reduce_viewport with center_lat: 36.2, center_lon: 138.25, altitude: 2*

User: "The visible area is 50N to 30N, 170E to 170W."
AI: *uses reduce_viewport with north: 50, south: 30, west: 170, east: -170 (east is less than west across the antimeridian)*

User: "Load the markers in pages of 100."
AI: *uses reduce_viewport with chunk_size: 100 and chunk: 0, then chunk: 1, up to chunk_count - 1*

ERROR CORRECTION PATTERN:
1. Bounds need all four of north, south, east and west
2. Without bounds, give center_lat and center_lon
3. Altitude must not be negative`

	return mcp.NewGetPromptResult(
		"Reduce Viewport Examples",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(examplesPrompt),
			),
		},
	), nil
}
