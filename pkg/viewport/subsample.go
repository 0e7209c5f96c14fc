package viewport

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// Subsample keeps every Nth point, where N = floor(count/target) and
// target = ceil(count*rate) for the level's sample rate. The first point
// is always kept and the result is identical for identical input order.
// Because N is an integer the effective rate is quantized: medium and low
// keep more than their nominal share on small inputs.
func Subsample[P any](points []P, lod LOD) []P {
	rate := lod.SampleRate()
	if rate >= 1 || len(points) == 0 {
		return append([]P(nil), points...)
	}

	target := max(1, int(math.Ceil(float64(len(points))*rate)))
	step := max(1, len(points)/target)

	out := make([]P, 0, (len(points)+step-1)/step)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	return out
}

// gridPrecision is the geohash length used as the sampling cell at each
// level: 5 chars is roughly 5 km, 4 is 40 km, 3 is 150 km.
func gridPrecision(lod LOD) uint {
	switch lod {
	case Medium:
		return 5
	case Low:
		return 4
	default:
		return 3
	}
}

// GridSubsample keeps the first point of every geohash cell, with cells
// that grow as detail drops. Unlike Subsample it is insensitive to how the
// input is sorted, at the cost of not hitting a fixed rate. High keeps
// every point.
func GridSubsample[P Locatable](points []P, lod LOD) []P {
	if lod == High || len(points) == 0 {
		return append([]P(nil), points...)
	}

	precision := gridPrecision(lod)
	seen := make(map[string]struct{}, len(points))
	out := make([]P, 0, len(points))
	for _, p := range points {
		c := p.Location()
		cell := geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
		if _, dup := seen[cell]; dup {
			continue
		}
		seen[cell] = struct{}{}
		out = append(out, p)
	}
	return out
}
