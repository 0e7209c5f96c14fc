package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/cache"
	"github.com/NERVsystems/photogeo/pkg/geo"
	"github.com/NERVsystems/photogeo/pkg/metrics"
	"github.com/NERVsystems/photogeo/pkg/viewport"
)

// ReduceOutput is the reduce_viewport result.
type ReduceOutput struct {
	Photos     []Photo         `json:"photos"`
	LOD        viewport.LOD    `json:"lod"`
	MarkerSize float64         `json:"marker_size"`
	Bounds     geo.BoundingBox `json:"bounds"`
	Total      int             `json:"total"`
	Visible    int             `json:"visible"`
	Returned   int             `json:"returned"`
	Chunk      int             `json:"chunk"`
	ChunkCount int             `json:"chunk_count"`
	Skipped    []Skipped       `json:"skipped"`
	Indexed    bool            `json:"indexed"`
	Cached     bool            `json:"cached"`
}

// reduceRequest is everything that determines a reduce_viewport result.
type reduceRequest struct {
	View      viewport.View
	Config    viewport.Config
	ChunkSize int
	Chunk     int
}

// ReduceViewportTool returns a tool definition for viewport reduction.
func ReduceViewportTool(cfg viewport.Config, chunkSize int) mcp.Tool {
	return mcp.NewTool("reduce_viewport",
		mcp.WithDescription("Reduce a photo set to what should be rendered for a globe view: filter to the (padded) visible bounds, "+
			"pick a level of detail from the camera altitude and subsample deterministically."),
		mcp.WithArray("photos",
			mcp.Required(),
			mcp.Description("Photos to reduce; records with invalid coordinates are skipped and reported"),
			mcp.Items(photoSchema()),
		),
		mcp.WithNumber("altitude",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Camera altitude in Earth radii above the surface (detail drops at %v, %v and %v)",
				cfg.Thresholds.High, cfg.Thresholds.Medium, cfg.Thresholds.Low)),
			mcp.Min(0),
		),
		mcp.WithNumber("center_lat", mcp.Description("View center latitude; used when no bounds are given")),
		mcp.WithNumber("center_lon", mcp.Description("View center longitude; used when no bounds are given")),
		mcp.WithNumber("north", mcp.Description("Visible bounds north edge")),
		mcp.WithNumber("south", mcp.Description("Visible bounds south edge")),
		mcp.WithNumber("east", mcp.Description("Visible bounds east edge; may be less than west across the antimeridian")),
		mcp.WithNumber("west", mcp.Description("Visible bounds west edge")),
		mcp.WithNumber("padding",
			mcp.Description("Degrees added to every side of the bounds"),
			mcp.DefaultNumber(cfg.Padding),
			mcp.Min(0),
		),
		mcp.WithString("strategy",
			mcp.Description("stride keeps every Nth photo; grid keeps one photo per geohash cell"),
			mcp.Enum(string(viewport.Stride), string(viewport.Grid)),
			mcp.DefaultString(string(cfg.Strategy)),
		),
		mcp.WithNumber("chunk_size",
			mcp.Description("Batch size for progressive loading"),
			mcp.DefaultNumber(float64(chunkSize)),
		),
		mcp.WithNumber("chunk",
			mcp.Description("Zero-based batch to return; omit or pass -1 to return every photo"),
			mcp.Min(-1),
		),
	)
}

// HandleReduceViewport implements reduce_viewport.
func (r *Registry) HandleReduceViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "reduce_viewport")

	items, skipped, err := decodePhotos(req.GetArguments()["photos"])
	if err != nil {
		return ErrorWithGuidance(PhotosError(err)), nil
	}

	altitude, apiErr := requireNumber(req, "altitude")
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	if altitude < 0 {
		return ErrorResponse("Altitude must not be negative"), nil
	}

	view := viewport.View{Altitude: altitude}
	bounds, hasBounds, apiErr := boundsArg(req)
	if apiErr != nil {
		return ErrorWithGuidance(apiErr), nil
	}
	if hasBounds {
		view.Bounds = &bounds
	} else {
		center, apiErr := requireCoordinate(req, "center_lat", "center_lon")
		if apiErr != nil {
			apiErr.Guidance = "Provide center_lat/center_lon, or all of north/south/east/west."
			return ErrorWithGuidance(apiErr), nil
		}
		view.Center = center
	}

	rc := r.cfg.ReducerConfig()
	rc.Padding = mcp.ParseFloat64(req, "padding", rc.Padding)
	strategy, err := viewport.ParseStrategy(mcp.ParseString(req, "strategy", string(rc.Strategy)))
	if err != nil {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument, err.Error(), "Use \"stride\" or \"grid\".")), nil
	}
	rc.Strategy = strategy

	reducer, err := viewport.NewReducer[PhotoItem](rc)
	if err != nil {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument, err.Error(), "")), nil
	}

	chunkSize := mcp.ParseInt(req, "chunk_size", r.cfg.Viewport.ChunkSize)
	if chunkSize <= 0 {
		return ErrorResponse("chunk_size must be positive"), nil
	}
	chunk := mcp.ParseInt(req, "chunk", -1)
	if chunk < -1 {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument,
			fmt.Sprintf("chunk must be -1 or a batch index, got %d", chunk),
			"Omit chunk to return every photo, or pass a zero-based batch index.")), nil
	}

	rr := reduceRequest{View: view, Config: rc, ChunkSize: chunkSize, Chunk: chunk}
	key, err := cache.Key("reduce_viewport", items, skipped, rr)
	if err != nil {
		logger.Error("failed to build cache key", "error", err)
		return ErrorWithGuidance(NewInternalError("Failed to process photos")), nil
	}

	res, cached, err := r.reductions.Do(key, func() (*ReduceOutput, error) {
		var idx *viewport.Index[PhotoItem]
		if threshold := r.cfg.Viewport.IndexThreshold; threshold > 0 && len(items) >= threshold {
			var err error
			if idx, err = r.photoIndex(logger, items); err != nil {
				return nil, err
			}
		}
		return buildReduceOutput(reducer, idx, items, skipped, rr)
	})
	if err != nil {
		return ErrorWithGuidance(NewValidationError(CodeInvalidArgument, err.Error(), "")), nil
	}
	metrics.ObserveCache("reduce_viewport", cached)
	if !cached {
		metrics.PointsIn.WithLabelValues("reduce").Add(float64(len(items)))
		metrics.PointsOut.WithLabelValues("reduce").Add(float64(res.Returned))
		metrics.SkippedPoints.WithLabelValues("reduce").Add(float64(len(skipped)))
		metrics.LODSelected.WithLabelValues(res.LOD.String()).Inc()
	}

	logger.Debug("reduced viewport",
		"total", res.Total,
		"visible", res.Visible,
		"returned", res.Returned,
		"lod", res.LOD,
		"indexed", res.Indexed,
		"cached", cached)

	output := *res
	output.Cached = cached
	return r.encode(logger, output), nil
}

// photoIndex returns the R-tree over items, building it on first use. Views
// of the same photo set share one index.
func (r *Registry) photoIndex(logger *slog.Logger, items []PhotoItem) (*viewport.Index[PhotoItem], error) {
	key, err := cache.Key("photo_index", items)
	if err != nil {
		return nil, err
	}
	idx, cached, err := r.indexes.Do(key, func() (*viewport.Index[PhotoItem], error) {
		logger.Debug("building photo index", "photos", len(items))
		return viewport.NewIndex(items), nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveCache("photo_index", cached)
	return idx, nil
}

// buildReduceOutput reduces items for rr, answering the bounds filter from
// idx when it is non-nil.
func buildReduceOutput(reducer *viewport.Reducer[PhotoItem], idx *viewport.Index[PhotoItem], items []PhotoItem, skipped []Skipped, rr reduceRequest) (*ReduceOutput, error) {
	var result viewport.Result[PhotoItem]
	if idx != nil {
		result = reducer.ReduceIndexed(idx, rr.View)
	} else {
		result = reducer.Reduce(items, rr.View)
	}
	chunks := viewport.Chunks(result.Points, rr.ChunkSize)

	points := result.Points
	if rr.Chunk >= 0 {
		if rr.Chunk >= len(chunks) && len(chunks) > 0 {
			return nil, fmt.Errorf("chunk %d out of range (%d chunks)", rr.Chunk, len(chunks))
		}
		points = nil
		if rr.Chunk < len(chunks) {
			points = chunks[rr.Chunk]
		}
	}

	return &ReduceOutput{
		Photos:     photosFromItems(points),
		LOD:        result.LOD,
		MarkerSize: result.MarkerSize,
		Bounds:     result.Bounds,
		Total:      result.Total,
		Visible:    result.Visible,
		Returned:   len(points),
		Chunk:      rr.Chunk,
		ChunkCount: len(chunks),
		Skipped:    skipped,
		Indexed:    idx != nil,
	}, nil
}
