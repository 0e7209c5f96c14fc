package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// PhotoArgs returns n photo records in tool-argument form, scattered
// uniformly within spread degrees of center. The same seed always yields
// the same photos. IDs are "p0000", "p0001", ...
func PhotoArgs(n int, seed uint64, center geo.Coordinate, spread float64) []any {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]any, n)
	for i := range out {
		c := geo.Normalize(geo.Coordinate{
			Latitude:  center.Latitude + (rng.Float64()*2-1)*spread,
			Longitude: center.Longitude + (rng.Float64()*2-1)*spread,
		})
		out[i] = map[string]any{
			"id":        fmt.Sprintf("p%04d", i),
			"latitude":  c.Latitude,
			"longitude": c.Longitude,
		}
	}
	return out
}

// CallRequest builds a tools/call request for handler tests.
func CallRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// ResultText returns the text of the first text content in res.
func ResultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
