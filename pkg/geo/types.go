// Package geo provides spherical-Earth geometry for geotagged photos.
// It centralizes coordinate types and great-circle algorithms so the
// clustering and viewport packages agree on distances and bounds.
//
// All public functions take and return degrees. They operate on raw
// numbers: passing a coordinate that fails Validate yields a mathematically
// defined but meaningless result rather than an error, so callers must
// filter input first (see FilterValid).
package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// EarthRadiusKm is the mean Earth radius used for kilometer results.
	EarthRadiusKm = 6371.0

	// EarthRadiusMiles is the mean Earth radius used for mile results.
	EarthRadiusMiles = 3959.0
)

// ErrEmptyInput is returned by functions that need at least one point.
var ErrEmptyInput = errors.New("geo: empty input")

// Unit selects the distance unit for distance-based functions.
type Unit string

const (
	Kilometers Unit = "km"
	Miles      Unit = "miles"
)

// Radius returns the Earth radius expressed in u. Unknown units fall back
// to kilometers.
func (u Unit) Radius() float64 {
	if u == Miles {
		return EarthRadiusMiles
	}
	return EarthRadiusKm
}

// ParseUnit maps user input to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "km", "kilometers", "kilometres":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	default:
		return "", fmt.Errorf("unknown distance unit %q (want km or miles)", s)
	}
}

// Coordinate represents a geographic position in degrees.
//
// Example:
//
//	paris := geo.Coordinate{Latitude: 48.8566, Longitude: 2.3522}
//	km := geo.Distance(paris, geo.Coordinate{Latitude: 51.5074, Longitude: -0.1278}, geo.Kilometers)
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

// Location returns c. It lets a bare Coordinate be used wherever a
// located record is expected.
func (c Coordinate) Location() Coordinate { return c }

// BoundingBox is a latitude/longitude rectangle in degrees.
// South <= North always holds. West > East describes a box that crosses
// the antimeridian; that is a valid box, not an error.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// WorldBounds covers every valid coordinate.
var WorldBounds = BoundingBox{North: 90, South: -90, East: 180, West: -180}

// Wraps reports whether the box crosses the antimeridian.
func (bb BoundingBox) Wraps() bool {
	return bb.West > bb.East
}

// LongitudeSpan returns the east-west extent of the box in degrees,
// accounting for antimeridian wrap.
func (bb BoundingBox) LongitudeSpan() float64 {
	if bb.Wraps() {
		return bb.East - bb.West + 360
	}
	return bb.East - bb.West
}

// Contains is shorthand for IsPointInBounds(c, bb).
func (bb BoundingBox) Contains(c Coordinate) bool {
	return IsPointInBounds(c, bb)
}

// Expand returns a copy of the box grown by padding degrees on every side.
// Latitude is clamped to the poles. When the padded longitude span reaches
// 360 degrees the result covers every longitude.
func (bb BoundingBox) Expand(padding float64) BoundingBox {
	if padding <= 0 {
		return bb
	}

	out := BoundingBox{
		North: math.Min(90, bb.North+padding),
		South: math.Max(-90, bb.South-padding),
	}

	if bb.LongitudeSpan()+2*padding >= 360 {
		out.West, out.East = -180, 180
		return out
	}

	out.West = NormalizeLongitude(bb.West - padding)
	out.East = NormalizeLongitude(bb.East + padding)
	return out
}

// String returns the box as (south,west,north,east).
func (bb BoundingBox) String() string {
	return fmt.Sprintf("(%f,%f,%f,%f)", bb.South, bb.West, bb.North, bb.East)
}

// CoordinateError describes a latitude or longitude that failed validation.
type CoordinateError struct {
	Field string // "latitude" or "longitude"
	Value float64
}

// Error implements the error interface.
func (e *CoordinateError) Error() string {
	switch {
	case math.IsNaN(e.Value) || math.IsInf(e.Value, 0):
		return fmt.Sprintf("invalid %s: %v is not a finite number", e.Field, e.Value)
	case e.Field == "latitude":
		return fmt.Sprintf("invalid latitude %f (must be between -90 and 90)", e.Value)
	default:
		return fmt.Sprintf("invalid longitude %f (must be between -180 and 180)", e.Value)
	}
}
