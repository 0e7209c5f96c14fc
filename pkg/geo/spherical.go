package geo

import "math"

// degreeEpsilon pads computed box edges so points lying exactly on the
// search circle survive floating-point round-off.
const degreeEpsilon = 1e-9

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// angularDistance returns the central angle between a and b in radians
// using the haversine formula.
func angularDistance(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair outside [0, 1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * math.Asin(math.Sqrt(h))
}

// Distance returns the great-circle (haversine) distance between a and b
// in the given unit. It is symmetric and returns 0 when a == b.
func Distance(a, b Coordinate, unit Unit) float64 {
	if a == b {
		return 0
	}
	return angularDistance(a, b) * unit.Radius()
}

// DistanceKm is Distance in kilometers.
func DistanceKm(a, b Coordinate) float64 {
	return Distance(a, b, Kilometers)
}

// Bearing returns the initial compass bearing from a to b in [0, 360).
// The direction between identical points is undefined; 0 is returned.
func Bearing(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return wrap360(toDegrees(math.Atan2(y, x)))
}

// Destination returns the point reached by travelling distance (in unit)
// from start along the initial bearing (degrees).
func Destination(start Coordinate, distance, bearing float64, unit Unit) Coordinate {
	if distance == 0 {
		return start
	}

	delta := distance / unit.Radius()
	theta := toRadians(bearing)
	lat1 := toRadians(start.Latitude)
	lon1 := toRadians(start.Longitude)

	sinLat2 := math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta)
	lat2 := math.Asin(math.Min(1, math.Max(-1, sinLat2)))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Coordinate{
		Latitude:  toDegrees(lat2),
		Longitude: NormalizeLongitude(toDegrees(lon2)),
	}
}

// Midpoint returns the point halfway along the great circle from a to b.
// This is not the arithmetic mean of the degree values.
func Midpoint(a, b Coordinate) Coordinate {
	if a == b {
		return a
	}

	lat1 := toRadians(a.Latitude)
	lon1 := toRadians(a.Longitude)
	lat2 := toRadians(b.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	bx := math.Cos(lat2) * math.Cos(dLon)
	by := math.Cos(lat2) * math.Sin(dLon)

	lat := math.Atan2(
		math.Sin(lat1)+math.Sin(lat2),
		math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by),
	)
	lon := lon1 + math.Atan2(by, math.Cos(lat1)+bx)

	return Coordinate{
		Latitude:  toDegrees(lat),
		Longitude: NormalizeLongitude(toDegrees(lon)),
	}
}

// InterpolateGreatCircle returns the point a fraction of the way along the
// great-circle arc from start to end. fraction is clamped to [0, 1];
// 0 yields start and 1 yields end exactly. A zero-length arc yields start.
func InterpolateGreatCircle(start, end Coordinate, fraction float64) Coordinate {
	if fraction <= 0 || start == end {
		return start
	}
	if fraction >= 1 {
		return end
	}

	delta := angularDistance(start, end)
	if delta == 0 {
		return start
	}

	sinDelta := math.Sin(delta)
	if sinDelta < 1e-12 {
		// Antipodal endpoints: every meridian-like great circle is shortest.
		// Follow the initial bearing instead of dividing by ~0.
		return Destination(start, fraction*delta*EarthRadiusKm, Bearing(start, end), Kilometers)
	}

	a := math.Sin((1-fraction)*delta) / sinDelta
	b := math.Sin(fraction*delta) / sinDelta

	lat1, lon1 := toRadians(start.Latitude), toRadians(start.Longitude)
	lat2, lon2 := toRadians(end.Latitude), toRadians(end.Longitude)

	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	return Coordinate{
		Latitude:  toDegrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Longitude: toDegrees(math.Atan2(y, x)),
	}
}

// GreatCirclePath samples the arc from start to end into segments equal
// parts and returns segments+1 points, including both endpoints.
func GreatCirclePath(start, end Coordinate, segments int) []Coordinate {
	if segments < 1 {
		segments = 1
	}
	path := make([]Coordinate, 0, segments+1)
	for i := 0; i <= segments; i++ {
		path = append(path, InterpolateGreatCircle(start, end, float64(i)/float64(segments)))
	}
	return path
}

func wrap360(deg float64) float64 {
	d := math.Mod(deg+360, 360)
	if d >= 360 {
		d -= 360
	}
	return d
}
