// Package cluster groups geotagged items into proximity clusters.
//
// The algorithm is greedy and single-pass: items are visited in input
// order, every unassigned item seeds a new cluster, and every remaining
// unassigned item within MaxDistance of that seed joins it. Distance is
// measured to the seed only, so two members of one cluster may be up to
// 2*MaxDistance apart. Results are deterministic for a fixed input order
// but change when the input is reordered. The cost is O(n^2) distance
// evaluations.
package cluster

import (
	"fmt"
	"math"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// DefaultMaxDistanceKm is the clustering radius used by DefaultOptions.
const DefaultMaxDistanceKm = 100.0

// Item is a geotagged record. Payload is opaque to the clustering code and
// is only inspected by Representative.
type Item[T any] struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Payload    T              `json:"payload,omitempty"`
}

// Location returns the item's coordinate.
func (i Item[T]) Location() geo.Coordinate { return i.Coordinate }

// GeoCluster is one group of items. Count always equals len(Members).
// Radius is the largest member-to-centroid distance in the clustering
// unit; it is 0 for a singleton, whose centroid is the member's own
// coordinate.
type GeoCluster[T any] struct {
	Centroid geo.Coordinate `json:"centroid"`
	Members  []Item[T]      `json:"members"`
	Radius   float64        `json:"radius"`
	Unit     geo.Unit       `json:"unit"`
	Count    int            `json:"count"`
}

// Options configures Cluster.
type Options struct {
	// MaxDistance is the seed-to-member threshold, inclusive.
	MaxDistance float64
	// Unit is the unit of MaxDistance and of the resulting radii.
	Unit geo.Unit
}

// DefaultOptions returns a 100 km clustering radius.
func DefaultOptions() Options {
	return Options{MaxDistance: DefaultMaxDistanceKm, Unit: geo.Kilometers}
}

// New returns validated Options. An empty unit means kilometers.
func New(maxDistance float64, unit geo.Unit) (Options, error) {
	if unit == "" {
		unit = geo.Kilometers
	}
	opts := Options{MaxDistance: maxDistance, Unit: unit}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate rejects a negative or non-finite MaxDistance and unknown units.
func (o Options) Validate() error {
	if math.IsNaN(o.MaxDistance) || math.IsInf(o.MaxDistance, 0) || o.MaxDistance < 0 {
		return fmt.Errorf("cluster: max distance must be a non-negative finite number, got %v", o.MaxDistance)
	}
	switch o.Unit {
	case "", geo.Kilometers, geo.Miles:
		return nil
	default:
		return fmt.Errorf("cluster: unsupported unit %q", o.Unit)
	}
}

// Cluster partitions items into clusters. Every item appears in exactly
// one cluster; clusters are returned in seed order and members keep their
// input order. Items must already be valid coordinates (geo.Validate);
// they are not re-checked here. Empty input yields an empty slice.
func Cluster[T any](items []Item[T], opts Options) ([]GeoCluster[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	unit := opts.Unit
	if unit == "" {
		unit = geo.Kilometers
	}

	clusters := make([]GeoCluster[T], 0)
	assigned := make([]bool, len(items))

	for i, seed := range items {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []Item[T]{seed}

		// Every item before i is already assigned, so scanning forward
		// keeps members in input order.
		for j := i + 1; j < len(items); j++ {
			if assigned[j] {
				continue
			}
			if geo.Distance(seed.Coordinate, items[j].Coordinate, unit) <= opts.MaxDistance {
				members = append(members, items[j])
				assigned[j] = true
			}
		}

		clusters = append(clusters, newGeoCluster(members, unit))
	}

	return clusters, nil
}

// newGeoCluster computes centroid and radius for members. members[0] is
// the seed.
func newGeoCluster[T any](members []Item[T], unit geo.Unit) GeoCluster[T] {
	c := GeoCluster[T]{
		Centroid: members[0].Coordinate,
		Members:  members,
		Unit:     unit,
		Count:    len(members),
	}
	if len(members) == 1 {
		return c
	}

	coords := make([]geo.Coordinate, len(members))
	for i, m := range members {
		coords[i] = m.Coordinate
	}
	// Centroid only fails on empty input, which cannot happen here.
	if centroid, err := geo.Centroid(coords); err == nil {
		c.Centroid = centroid
	}

	for _, p := range coords {
		if d := geo.Distance(c.Centroid, p, unit); d > c.Radius {
			c.Radius = d
		}
	}
	return c
}

// Coordinates returns the member coordinates in cluster order.
func (c GeoCluster[T]) Coordinates() []geo.Coordinate {
	out := make([]geo.Coordinate, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Coordinate
	}
	return out
}

// IDs returns the member IDs in cluster order.
func (c GeoCluster[T]) IDs() []string {
	out := make([]string, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.ID
	}
	return out
}
