package geo

import "math"

// Centroid returns the geographic center of points. Each point is mapped
// to a unit vector on the sphere, the vectors are averaged and the mean is
// projected back to latitude/longitude. This avoids the discontinuity of
// averaging longitudes across the antimeridian or near the poles.
//
// A single point is returned unchanged. Points whose vectors cancel out
// (for example two antipodes) have no meaningful center; the first point
// is returned in that case.
func Centroid(points []Coordinate) (Coordinate, error) {
	switch len(points) {
	case 0:
		return Coordinate{}, ErrEmptyInput
	case 1:
		return points[0], nil
	}

	var x, y, z float64
	for _, p := range points {
		lat := toRadians(p.Latitude)
		lon := toRadians(p.Longitude)
		x += math.Cos(lat) * math.Cos(lon)
		y += math.Cos(lat) * math.Sin(lon)
		z += math.Sin(lat)
	}

	n := float64(len(points))
	x, y, z = x/n, y/n, z/n

	if math.Sqrt(x*x+y*y+z*z) < 1e-12 {
		return points[0], nil
	}

	return Coordinate{
		Latitude:  toDegrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Longitude: toDegrees(math.Atan2(y, x)),
	}, nil
}

// BoundingBoxAround returns a box containing every point within radiusKm
// of center. Longitude half-width is asin(sin(r)/cos(lat)), which grows
// towards the poles; when the circle reaches a pole the box spans every
// longitude. East/West wrap across the antimeridian when needed.
func BoundingBoxAround(center Coordinate, radiusKm float64) BoundingBox {
	if radiusKm <= 0 {
		return BoundingBox{
			North: center.Latitude,
			South: center.Latitude,
			East:  center.Longitude,
			West:  center.Longitude,
		}
	}

	angular := radiusKm / EarthRadiusKm
	latDelta := toDegrees(angular) + degreeEpsilon

	bb := BoundingBox{
		North: center.Latitude + latDelta,
		South: center.Latitude - latDelta,
	}

	if bb.North >= 90 || bb.South <= -90 || angular >= math.Pi/2 {
		bb.North = math.Min(90, bb.North)
		bb.South = math.Max(-90, bb.South)
		bb.West, bb.East = -180, 180
		return bb
	}

	ratio := math.Sin(angular) / math.Cos(toRadians(center.Latitude))
	if ratio >= 1 {
		bb.West, bb.East = -180, 180
		return bb
	}
	lonDelta := toDegrees(math.Asin(ratio)) + degreeEpsilon

	bb.West = NormalizeLongitude(center.Longitude - lonDelta)
	bb.East = NormalizeLongitude(center.Longitude + lonDelta)
	return bb
}

// IsPointInBounds reports whether p lies inside bb. Longitude containment
// is wrap-aware: for a box with West > East a point is inside when its
// longitude is >= West or <= East.
func IsPointInBounds(p Coordinate, bb BoundingBox) bool {
	if p.Latitude < bb.South || p.Latitude > bb.North {
		return false
	}
	if bb.Wraps() {
		return p.Longitude >= bb.West || p.Longitude <= bb.East
	}
	return p.Longitude >= bb.West && p.Longitude <= bb.East
}

// BoundsOf returns the smallest non-wrapping box enclosing points.
func BoundsOf(points []Coordinate) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, ErrEmptyInput
	}

	// Start inverted so the first point sets every edge.
	bb := BoundingBox{North: -90, South: 90, East: -180, West: 180}
	for _, p := range points {
		bb.extend(p)
	}
	return bb, nil
}

func (bb *BoundingBox) extend(p Coordinate) {
	if p.Latitude < bb.South {
		bb.South = p.Latitude
	}
	if p.Latitude > bb.North {
		bb.North = p.Latitude
	}
	if p.Longitude < bb.West {
		bb.West = p.Longitude
	}
	if p.Longitude > bb.East {
		bb.East = p.Longitude
	}
}
