// Package viewport reduces large point sets to what is worth rendering for
// the current view: a wrap-aware bounds filter, altitude-driven level of
// detail, deterministic subsampling and marker scaling.
package viewport

import (
	"fmt"
	"strings"
)

// LOD is a level of detail. Levels are ordered by decreasing density:
// High < Medium < Low < Minimal.
type LOD int

const (
	High LOD = iota
	Medium
	Low
	Minimal
)

var lodNames = [...]string{"high", "medium", "low", "minimal"}

func (l LOD) String() string {
	if l < High || l > Minimal {
		return fmt.Sprintf("LOD(%d)", int(l))
	}
	return lodNames[l]
}

// MarshalText encodes the level by name.
func (l LOD) MarshalText() ([]byte, error) {
	if l < High || l > Minimal {
		return nil, fmt.Errorf("viewport: invalid level of detail %d", int(l))
	}
	return []byte(lodNames[l]), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (l *LOD) UnmarshalText(text []byte) error {
	v, err := ParseLOD(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLOD parses a level name, case-insensitively.
func ParseLOD(s string) (LOD, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range lodNames {
		if n == name {
			return LOD(i), nil
		}
	}
	return High, fmt.Errorf("viewport: unknown level of detail %q", s)
}

// SampleRate is the fraction of points kept at each level.
func (l LOD) SampleRate() float64 {
	switch l {
	case High:
		return 1.0
	case Medium:
		return 0.7
	case Low:
		return 0.4
	default:
		return 0.2
	}
}

// markerScale is the marker size multiplier at each level.
func (l LOD) markerScale() float64 {
	switch l {
	case High:
		return 1.0
	case Medium:
		return 0.85
	case Low:
		return 0.7
	default:
		return 0.5
	}
}

// Thresholds are the altitude cut-offs between levels, in Earth radii
// above the surface. An altitude below High renders at High, below Medium
// at Medium, below Low at Low, and anything else at Minimal.
type Thresholds struct {
	High   float64 `json:"high" mapstructure:"high"`
	Medium float64 `json:"medium" mapstructure:"medium"`
	Low    float64 `json:"low" mapstructure:"low"`
}

// DefaultThresholds are 1.5, 2.5 and 4.
var DefaultThresholds = Thresholds{High: 1.5, Medium: 2.5, Low: 4}

// Validate requires positive, strictly ascending thresholds.
func (t Thresholds) Validate() error {
	if !(t.High > 0 && t.High < t.Medium && t.Medium < t.Low) {
		return fmt.Errorf("viewport: thresholds must be positive and ascending, got %v/%v/%v", t.High, t.Medium, t.Low)
	}
	return nil
}

// LOD maps an altitude to a level.
func (t Thresholds) LOD(altitude float64) LOD {
	switch {
	case altitude < t.High:
		return High
	case altitude < t.Medium:
		return Medium
	case altitude < t.Low:
		return Low
	default:
		return Minimal
	}
}

// LODForAltitude maps an altitude to a level using DefaultThresholds.
func LODForAltitude(altitude float64) LOD {
	return DefaultThresholds.LOD(altitude)
}
