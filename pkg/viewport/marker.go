package viewport

import (
	"math"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

// MarkerSize scales baseSize down as altitude increases, stepping at the
// DefaultThresholds: full size close in, half size at Minimal.
func MarkerSize(altitude, baseSize float64) float64 {
	return DefaultThresholds.MarkerSize(altitude, baseSize)
}

// MarkerSize is MarkerSize with t as the step table.
func (t Thresholds) MarkerSize(altitude, baseSize float64) float64 {
	return baseSize * t.LOD(altitude).markerScale()
}

// VisibleRadiusKm is the great-circle radius of the cap visible from
// altitude Earth radii above the surface: R * acos(1/(1+altitude)).
func VisibleRadiusKm(altitude float64) float64 {
	if altitude <= 0 || math.IsNaN(altitude) {
		return 0
	}
	return geo.EarthRadiusKm * math.Acos(1/(1+altitude))
}
