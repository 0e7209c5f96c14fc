package cluster

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

type meta struct {
	caption  string
	favorite bool
}

func (m meta) Caption() string  { return m.caption }
func (m meta) IsFavorite() bool { return m.favorite }

func item(id string, lat, lon float64) Item[meta] {
	return Item[meta]{ID: id, Coordinate: geo.Coordinate{Latitude: lat, Longitude: lon}}
}

func TestClusterNearbyPointsMerge(t *testing.T) {
	// ~10 km apart on the equator.
	items := []Item[meta]{item("a", 0, 0), item("b", 0, 0.0899)}

	opts, err := New(50, geo.Kilometers)
	require.NoError(t, err)

	clusters, err := Cluster(items, opts)
	require.NoError(t, err)
	require.Len(t, clusters, 1)

	c := clusters[0]
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.InDelta(t, 0.04495, c.Centroid.Longitude, 1e-6)
	assert.InDelta(t, 5.0, c.Radius, 0.05)
}

func TestClusterDistantPointsStayApart(t *testing.T) {
	items := []Item[meta]{item("a", 0, 0), item("b", 0, 0.9)}

	clusters, err := Cluster(items, Options{MaxDistance: 50, Unit: geo.Kilometers})
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	for i, c := range clusters {
		assert.Equal(t, 1, c.Count)
		assert.Zero(t, c.Radius)
		assert.Equal(t, items[i].Coordinate, c.Centroid, "singleton centroid is the member itself")
	}
}

func TestClusterEmptyInput(t *testing.T) {
	clusters, err := Cluster([]Item[meta]{}, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)

	clusters, err = Cluster[meta](nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestClusterIsPartition(t *testing.T) {
	var items []Item[meta]
	for i := 0; i < 60; i++ {
		lat := float64(i%7)*3.1 - 10
		lon := float64(i%11)*2.7 + 100
		items = append(items, item(fmt.Sprintf("p%02d", i), lat, lon))
	}

	clusters, err := Cluster(items, Options{MaxDistance: 400, Unit: geo.Kilometers})
	require.NoError(t, err)

	seen := make(map[string]int)
	total := 0
	for _, c := range clusters {
		assert.Equal(t, len(c.Members), c.Count)
		assert.GreaterOrEqual(t, c.Radius, 0.0)
		total += c.Count
		for _, id := range c.IDs() {
			seen[id]++
		}
	}
	assert.Equal(t, len(items), total)
	for _, it := range items {
		assert.Equal(t, 1, seen[it.ID], "item %s must be in exactly one cluster", it.ID)
	}
}

func TestClusterDistanceIsToSeed(t *testing.T) {
	// b is within 60 km of a, c is within 60 km of b but not of a. Only a
	// seeds, so c starts its own cluster.
	items := []Item[meta]{
		item("a", 0, 0),
		item("b", 0, 0.5),
		item("c", 0, 1.0),
	}

	clusters, err := Cluster(items, Options{MaxDistance: 60, Unit: geo.Kilometers})
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"a", "b"}, clusters[0].IDs())
	assert.Equal(t, []string{"c"}, clusters[1].IDs())
}

func TestClusterSeedOrderDependence(t *testing.T) {
	items := []Item[meta]{
		item("a", 0, 0),
		item("b", 0, 0.5),
		item("c", 0, 1.0),
	}
	opts := Options{MaxDistance: 60, Unit: geo.Kilometers}

	first, err := Cluster(items, opts)
	require.NoError(t, err)
	again, err := Cluster(items, opts)
	require.NoError(t, err)
	assert.Equal(t, first, again, "same order must give identical clusters")

	reordered := []Item[meta]{items[1], items[0], items[2]}
	other, err := Cluster(reordered, opts)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, []string{"b", "a", "c"}, other[0].IDs())
}

func TestClusterMiles(t *testing.T) {
	// ~69 miles apart.
	items := []Item[meta]{item("a", 0, 0), item("b", 0, 1)}

	clusters, err := Cluster(items, Options{MaxDistance: 70, Unit: geo.Miles})
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, geo.Miles, clusters[0].Unit)
	assert.InDelta(t, 34.55, clusters[0].Radius, 0.1)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	for _, d := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := New(d, geo.Kilometers)
		assert.Error(t, err, "max distance %v", d)
	}
	_, err := New(10, geo.Unit("furlongs"))
	assert.Error(t, err)

	opts, err := New(0, "")
	require.NoError(t, err)
	assert.Equal(t, geo.Kilometers, opts.Unit)

	_, err = Cluster([]Item[meta]{item("a", 0, 0)}, Options{MaxDistance: -5})
	assert.Error(t, err)
}

func TestRepresentative(t *testing.T) {
	tests := []struct {
		name    string
		members []Item[meta]
		want    string
	}{
		{
			name: "caption wins",
			members: []Item[meta]{
				{ID: "1", Payload: meta{favorite: true}},
				{ID: "2", Payload: meta{caption: "Sunset"}},
			},
			want: "2",
		},
		{
			name: "name counts as label",
			members: []Item[meta]{
				{ID: "1", Payload: meta{favorite: true}},
				{ID: "2", Name: "Harbour"},
			},
			want: "2",
		},
		{
			name: "blank caption ignored",
			members: []Item[meta]{
				{ID: "1", Payload: meta{caption: "   "}},
				{ID: "2", Payload: meta{favorite: true}},
			},
			want: "2",
		},
		{
			name: "first member fallback",
			members: []Item[meta]{
				{ID: "1"},
				{ID: "2"},
			},
			want: "1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep, ok := Representative(GeoCluster[meta]{Members: tc.members, Count: len(tc.members)})
			require.True(t, ok)
			assert.Equal(t, tc.want, rep.ID)
		})
	}

	_, ok := Representative(GeoCluster[meta]{})
	assert.False(t, ok)
}

func TestRepresentativePlainPayload(t *testing.T) {
	c := GeoCluster[int]{Members: []Item[int]{{ID: "x", Payload: 1}, {ID: "y", Payload: 2}}, Count: 2}
	rep, ok := Representative(c)
	require.True(t, ok)
	assert.Equal(t, "x", rep.ID)
}

func TestStableID(t *testing.T) {
	a := GeoCluster[meta]{Members: []Item[meta]{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	b := GeoCluster[meta]{Members: []Item[meta]{{ID: "3"}, {ID: "1"}, {ID: "2"}}}
	c := GeoCluster[meta]{Members: []Item[meta]{{ID: "1"}, {ID: "2"}}}

	assert.Equal(t, StableID(a), StableID(b), "order must not matter")
	assert.NotEqual(t, StableID(a), StableID(c))
	assert.Len(t, StableID(a), 36)
}

func TestToFeatureCollection(t *testing.T) {
	items := []Item[meta]{
		item("a", 48.85, 2.35),
		{ID: "b", Coordinate: geo.Coordinate{Latitude: 48.86, Longitude: 2.34}, Payload: meta{caption: "Louvre"}},
		item("c", 51.5, -0.12),
	}
	clusters, err := Cluster(items, Options{MaxDistance: 10, Unit: geo.Kilometers})
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	fc := ToFeatureCollection(clusters)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	paris := fc.Features[0]
	assert.Equal(t, "Feature", paris.Type)
	assert.Equal(t, "Point", paris.Geometry.Type)
	assert.InDelta(t, clusters[0].Centroid.Longitude, paris.Geometry.Coordinates[0], 1e-12)
	assert.InDelta(t, clusters[0].Centroid.Latitude, paris.Geometry.Coordinates[1], 1e-12)
	assert.Equal(t, true, paris.Properties["cluster"])
	assert.Equal(t, 2, paris.Properties["point_count"])
	assert.Equal(t, "b", paris.Properties["representative_id"])
	assert.Equal(t, StableID(clusters[0]), paris.Properties["cluster_id"])

	london := fc.Features[1]
	assert.Equal(t, false, london.Properties["cluster"])
	assert.Equal(t, 0.0, london.Properties["radius"])
	assert.Equal(t, []float64{-0.12, 51.5}, london.Geometry.Coordinates)
}
