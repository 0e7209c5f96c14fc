package tools

import (
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonResult marshals output into a text result. A marshal failure is
// reported as a tool error, not a Go error.
func jsonResult(logger *slog.Logger, output any) *mcp.CallToolResult {
	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorWithGuidance(NewInternalError("Failed to generate result"))
	}
	return mcp.NewToolResultText(string(resultBytes))
}

// pointSchema is the JSON schema of one {latitude, longitude} object.
func pointSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latitude":  map[string]any{"type": "number", "description": "Latitude in decimal degrees"},
			"longitude": map[string]any{"type": "number", "description": "Longitude in decimal degrees"},
		},
		"required": []string{"latitude", "longitude"},
	}
}

// photoSchema is the JSON schema of one photo record.
func photoSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":        map[string]any{"type": "string", "description": "Photo identifier"},
			"latitude":  map[string]any{"type": "number", "description": "Latitude in decimal degrees"},
			"longitude": map[string]any{"type": "number", "description": "Longitude in decimal degrees"},
			"name":      map[string]any{"type": "string", "description": "Optional display name"},
			"caption":   map[string]any{"type": "string", "description": "Optional caption"},
			"favorite":  map[string]any{"type": "boolean", "description": "Whether the photo is a favorite"},
		},
		"required": []string{"id", "latitude", "longitude"},
	}
}
