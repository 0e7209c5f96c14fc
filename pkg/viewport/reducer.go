package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

const (
	// DefaultPadding is the bounds padding the Reducer applies, in degrees.
	DefaultPadding = 10.0
	// DefaultChunkSize is the batch size used by Chunks.
	DefaultChunkSize = 50
	// DefaultBaseMarkerSize is the marker size at High detail.
	DefaultBaseMarkerSize = 1.0
	// DefaultIndexThreshold is the point count from which callers that see
	// the same set repeatedly should reduce through an Index.
	DefaultIndexThreshold = 1000
)

// Strategy selects how points are thinned after bounds filtering.
type Strategy string

const (
	// Stride keeps every Nth point (Subsample).
	Stride Strategy = "stride"
	// Grid keeps one point per geohash cell (GridSubsample).
	Grid Strategy = "grid"
)

// ParseStrategy parses "stride" or "grid". The empty string is Stride.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", Stride:
		return Stride, nil
	case Grid:
		return Grid, nil
	}
	return "", fmt.Errorf("viewport: unknown strategy %q", s)
}

// View is the camera state. Altitude is in Earth radii above the surface.
// When Bounds is nil the visible region is the horizon cap around Center.
type View struct {
	Center   geo.Coordinate   `json:"center"`
	Altitude float64          `json:"altitude"`
	Bounds   *geo.BoundingBox `json:"bounds,omitempty"`
}

// Result is the output of one reduction.
type Result[P any] struct {
	Points     []P             `json:"points"`
	LOD        LOD             `json:"lod"`
	MarkerSize float64         `json:"marker_size"`
	Bounds     geo.BoundingBox `json:"bounds"`
	// Total is the input size, Visible the count after bounds filtering.
	Total   int `json:"total"`
	Visible int `json:"visible"`
}

// Config configures a Reducer.
type Config struct {
	Thresholds     Thresholds
	Padding        float64
	Strategy       Strategy
	BaseMarkerSize float64
}

// DefaultConfig returns the default thresholds, 10 degrees of padding,
// stride sampling and a marker size of 1.
func DefaultConfig() Config {
	return Config{
		Thresholds:     DefaultThresholds,
		Padding:        DefaultPadding,
		Strategy:       Stride,
		BaseMarkerSize: DefaultBaseMarkerSize,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Padding < 0 || math.IsNaN(c.Padding) || math.IsInf(c.Padding, 0) {
		errs = append(errs, fmt.Errorf("viewport: padding must be a non-negative finite number, got %v", c.Padding))
	}
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		errs = append(errs, err)
	}
	if c.BaseMarkerSize <= 0 || math.IsNaN(c.BaseMarkerSize) || math.IsInf(c.BaseMarkerSize, 0) {
		errs = append(errs, fmt.Errorf("viewport: base marker size must be positive, got %v", c.BaseMarkerSize))
	}
	return errors.Join(errs...)
}

// Reducer runs the filter-then-subsample pipeline for a view. It holds
// only configuration and is safe for concurrent use.
type Reducer[P Locatable] struct {
	cfg Config
}

// NewReducer validates cfg and returns a Reducer.
func NewReducer[P Locatable](cfg Config) (*Reducer[P], error) {
	if cfg.Strategy == "" {
		cfg.Strategy = Stride
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Reducer[P]{cfg: cfg}, nil
}

// Config returns the reducer's configuration.
func (r *Reducer[P]) Config() Config { return r.cfg }

// VisibleBounds returns the region Reduce filters against before padding.
func (r *Reducer[P]) VisibleBounds(v View) geo.BoundingBox {
	if v.Bounds != nil {
		return *v.Bounds
	}
	return geo.BoundingBoxAround(v.Center, VisibleRadiusKm(v.Altitude))
}

// Reduce filters points to the padded view, picks the level of detail for
// the altitude and thins the survivors with the configured strategy.
func (r *Reducer[P]) Reduce(points []P, v View) Result[P] {
	bounds := r.VisibleBounds(v)
	visible := FilterByBounds(points, bounds, r.cfg.Padding)
	return r.sample(visible, len(points), bounds, v.Altitude)
}

// ReduceIndexed is Reduce with the bounds filter answered by idx. idx must
// have been built over the point set the caller means to reduce.
func (r *Reducer[P]) ReduceIndexed(idx *Index[P], v View) Result[P] {
	bounds := r.VisibleBounds(v)
	visible := idx.Query(bounds, r.cfg.Padding)
	return r.sample(visible, idx.Len(), bounds, v.Altitude)
}

func (r *Reducer[P]) sample(visible []P, total int, bounds geo.BoundingBox, altitude float64) Result[P] {
	lod := r.cfg.Thresholds.LOD(altitude)

	var sampled []P
	if r.cfg.Strategy == Grid {
		sampled = GridSubsample(visible, lod)
	} else {
		sampled = Subsample(visible, lod)
	}

	return Result[P]{
		Points:     sampled,
		LOD:        lod,
		MarkerSize: r.cfg.BaseMarkerSize * lod.markerScale(),
		Bounds:     bounds,
		Total:      total,
		Visible:    len(visible),
	}
}
