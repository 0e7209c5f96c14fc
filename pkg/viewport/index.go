package viewport

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// R-tree node fan-out.
const (
	minChildren = 25
	maxChildren = 50
)

// indexTolerance pads stored points and search rectangles. rtreego treats
// rectangles that only touch as disjoint, so a zero-size point on a box
// edge would never match. Hits are re-checked against the exact box.
const indexTolerance = 1e-9

// Index is a static R-tree over a point set, keyed on (longitude,
// latitude). Build it once per data set and query it per view change;
// Query returns exactly what FilterByBounds would, in input order.
type Index[P Locatable] struct {
	tree *rtreego.Rtree
	size int
}

type indexEntry[P Locatable] struct {
	seq   int
	point P
	rect  rtreego.Rect
}

func (e *indexEntry[P]) Bounds() rtreego.Rect { return e.rect }

// NewIndex bulk-loads points into an R-tree.
func NewIndex[P Locatable](points []P) *Index[P] {
	objs := make([]rtreego.Spatial, len(points))
	for i, p := range points {
		c := p.Location()
		objs[i] = &indexEntry[P]{
			seq:   i,
			point: p,
			rect:  rtreego.Point{c.Longitude, c.Latitude}.ToRect(indexTolerance),
		}
	}
	return &Index[P]{
		tree: rtreego.NewTree(2, minChildren, maxChildren, objs...),
		size: len(points),
	}
}

// Len returns the number of indexed points.
func (ix *Index[P]) Len() int { return ix.size }

// Query returns the points inside box expanded by padding degrees. A
// wrapped box is searched as two rectangles, one each side of the
// antimeridian.
func (ix *Index[P]) Query(box geo.BoundingBox, padding float64) []P {
	if padding > 0 {
		box = box.Expand(padding)
	}

	var hits []rtreego.Spatial
	if box.Wraps() {
		hits = append(hits, ix.search(box.West, 180, box.South, box.North)...)
		hits = append(hits, ix.search(-180, box.East, box.South, box.North)...)
	} else {
		hits = ix.search(box.West, box.East, box.South, box.North)
	}

	entries := make([]*indexEntry[P], 0, len(hits))
	for _, h := range hits {
		e := h.(*indexEntry[P])
		if geo.IsPointInBounds(e.point.Location(), box) {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b *indexEntry[P]) int { return a.seq - b.seq })
	// A point on the antimeridian can match both halves of a wrapped box.
	entries = slices.CompactFunc(entries, func(a, b *indexEntry[P]) bool { return a.seq == b.seq })

	out := make([]P, len(entries))
	for i, e := range entries {
		out[i] = e.point
	}
	return out
}

func (ix *Index[P]) search(west, east, south, north float64) []rtreego.Spatial {
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{west - indexTolerance, south - indexTolerance},
		rtreego.Point{east + indexTolerance, north + indexTolerance},
	)
	if err != nil {
		// Both points are two-dimensional, so this cannot happen.
		return nil
	}
	return ix.tree.SearchIntersect(rect)
}
