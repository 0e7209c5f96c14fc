package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/cache"
	"github.com/NERVsystems/photogeo/pkg/cluster"
	"github.com/NERVsystems/photogeo/pkg/geo"
	"github.com/NERVsystems/photogeo/pkg/metrics"
)

// ClusterSummary is one cluster in cluster_photos output.
type ClusterSummary struct {
	ID             string          `json:"id"`
	Centroid       geo.Coordinate  `json:"centroid"`
	Radius         float64         `json:"radius"`
	Unit           geo.Unit        `json:"unit"`
	Count          int             `json:"count"`
	Bounds         geo.BoundingBox `json:"bounds"`
	MemberIDs      []string        `json:"member_ids"`
	Representative Photo           `json:"representative"`
}

// ClusterOutput is the cluster_photos result.
type ClusterOutput struct {
	Clusters     []ClusterSummary           `json:"clusters"`
	ClusterCount int                        `json:"cluster_count"`
	PhotoCount   int                        `json:"photo_count"`
	Skipped      []Skipped                  `json:"skipped"`
	GeoJSON      *cluster.FeatureCollection `json:"geojson,omitempty"`
	Cached       bool                       `json:"cached"`
}

// ClusterPhotosTool returns a tool definition for proximity clustering.
func ClusterPhotosTool(defaultDistance float64, defaultUnit geo.Unit) mcp.Tool {
	return mcp.NewTool("cluster_photos",
		mcp.WithDescription("Group geotagged photos into proximity clusters. Each unclustered photo, in input order, seeds a cluster "+
			"that absorbs every remaining photo within max_distance of the seed."),
		mcp.WithArray("photos",
			mcp.Required(),
			mcp.Description("Photos to cluster; records with invalid coordinates are skipped and reported"),
			mcp.Items(photoSchema()),
		),
		mcp.WithNumber("max_distance",
			mcp.Description("Seed-to-member distance threshold"),
			mcp.DefaultNumber(defaultDistance),
			mcp.Min(0),
		),
		mcp.WithString("unit",
			mcp.Description("Unit of max_distance and of the reported radii"),
			mcp.Enum("km", "miles"),
			mcp.DefaultString(string(defaultUnit)),
		),
		mcp.WithBoolean("include_geojson",
			mcp.Description("Also return the clusters as a GeoJSON FeatureCollection"),
			mcp.DefaultBool(false),
		),
	)
}

// HandleClusterPhotos implements cluster_photos.
func (r *Registry) HandleClusterPhotos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "cluster_photos")

	items, skipped, err := decodePhotos(req.GetArguments()["photos"])
	if err != nil {
		return ErrorWithGuidance(PhotosError(err)), nil
	}

	defaults, err := r.cfg.ClusterOptions()
	if err != nil {
		logger.Error("invalid cluster configuration", "error", err)
		return ErrorResponse("Server clustering configuration is invalid"), nil
	}
	unit, apiErr := unitArg(req, defaults.Unit)
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	maxDistance := mcp.ParseFloat64(req, "max_distance", defaults.MaxDistance)
	opts, err := cluster.New(maxDistance, unit)
	if err != nil {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument, err.Error(), "max_distance must be zero or a positive number.")), nil
	}
	includeGeoJSON := mcp.ParseBoolean(req, "include_geojson", false)

	key, err := cache.Key("cluster_photos", items, skipped, opts, includeGeoJSON)
	if err != nil {
		logger.Error("failed to build cache key", "error", err)
		return ErrorWithGuidance(NewInternalError("Failed to process photos")), nil
	}

	res, cached, err := r.clusters.Do(key, func() (*ClusterOutput, error) {
		return buildClusterOutput(items, skipped, opts, includeGeoJSON)
	})
	if err != nil {
		logger.Error("clustering failed", "error", err)
		return ErrorWithGuidance(NewInternalError("Failed to cluster photos")), nil
	}
	metrics.ObserveCache("cluster_photos", cached)
	if !cached {
		metrics.PointsIn.WithLabelValues("cluster").Add(float64(len(items)))
		metrics.PointsOut.WithLabelValues("cluster").Add(float64(res.ClusterCount))
		metrics.SkippedPoints.WithLabelValues("cluster").Add(float64(len(skipped)))
	}

	logger.Debug("clustered photos",
		"photos", len(items),
		"skipped", len(skipped),
		"clusters", res.ClusterCount,
		"cached", cached)

	output := *res
	output.Cached = cached
	return r.encode(logger, output), nil
}

func buildClusterOutput(items []PhotoItem, skipped []Skipped, opts cluster.Options, includeGeoJSON bool) (*ClusterOutput, error) {
	clusters, err := cluster.Cluster(items, opts)
	if err != nil {
		return nil, err
	}

	summaries := make([]ClusterSummary, 0, len(clusters))
	for _, c := range clusters {
		bounds, err := geo.BoundsOf(c.Coordinates())
		if err != nil {
			return nil, fmt.Errorf("cluster bounds: %w", err)
		}
		rep, _ := cluster.Representative(c)
		summaries = append(summaries, ClusterSummary{
			ID:             cluster.StableID(c),
			Centroid:       c.Centroid,
			Radius:         round(c.Radius, 6),
			Unit:           c.Unit,
			Count:          c.Count,
			Bounds:         bounds,
			MemberIDs:      c.IDs(),
			Representative: photoFromItem(rep),
		})
	}

	out := &ClusterOutput{
		Clusters:     summaries,
		ClusterCount: len(summaries),
		PhotoCount:   len(items),
		Skipped:      skipped,
	}
	if includeGeoJSON {
		out.GeoJSON = cluster.ToFeatureCollection(clusters)
	}
	return out, nil
}

// round trims floating-point noise from reported distances.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
