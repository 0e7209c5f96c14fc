package cluster

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature with a Point geometry.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON Point.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

// ToFeatureCollection converts clusters to one Point feature each, placed
// at the cluster centroid.
func ToFeatureCollection[T any](clusters []GeoCluster[T]) *FeatureCollection {
	features := make([]Feature, len(clusters))
	for i, c := range clusters {
		properties := map[string]any{
			"cluster":     c.Count > 1,
			"cluster_id":  StableID(c),
			"point_count": c.Count,
			"radius":      c.Radius,
			"unit":        string(c.Unit),
			"member_ids":  c.IDs(),
		}
		if rep, ok := Representative(c); ok {
			properties["representative_id"] = rep.ID
		}

		features[i] = Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{c.Centroid.Longitude, c.Centroid.Latitude},
			},
			Properties: properties,
		}
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
