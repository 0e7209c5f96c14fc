package viewport

import "github.com/NERVsystems/photogeo/pkg/geo"

// Locatable is anything with a position. geo.Coordinate and cluster.Item
// both satisfy it.
type Locatable interface {
	Location() geo.Coordinate
}

// FilterByBounds keeps the points inside box expanded by padding degrees
// on every side. Containment is wrap-aware, so a box with West > East
// selects across the antimeridian. Input order is preserved.
func FilterByBounds[P Locatable](points []P, box geo.BoundingBox, padding float64) []P {
	if padding > 0 {
		box = box.Expand(padding)
	}

	out := make([]P, 0, len(points))
	for _, p := range points {
		if geo.IsPointInBounds(p.Location(), box) {
			out = append(out, p)
		}
	}
	return out
}

// Chunks splits points into consecutive batches of at most size elements
// for progressive loading. A non-positive size uses DefaultChunkSize. The
// batches share the input's backing array.
func Chunks[P any](points []P, size int) [][]P {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]P, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		chunks = append(chunks, points[start:end:end])
	}
	return chunks
}
