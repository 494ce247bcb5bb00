package srf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/slipstate/errs"
)

// Version is the point-source file format version.
type Version uint8

const (
	V1 Version = 1 // V1 omits vs and density.
	V2 Version = 2 // V2 carries vs and density on the first point line.
)

func (v Version) String() string {
	switch v {
	case V1:
		return "1.0"
	case V2:
		return "2.0"
	default:
		return "unknown"
	}
}

// ParseVersion parses a version line such as "1.0" or "2".
func ParseVersion(s string) (Version, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidVersion, s)
	}

	switch f {
	case 1:
		return V1, nil
	case 2:
		return V2, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidVersion, s)
	}
}

// Component is the slip of one point along one direction.
type Component struct {
	// TotalSlip in m.
	TotalSlip float64
	// Velocities are slip rate samples in m/s, Dt apart, starting at TInit.
	Velocities []float64
}

// Point is one point source.
type Point struct {
	Lon    float64
	Lat    float64
	Depth  float64 // km
	Strike float64
	Dip    float64
	Rake   float64
	Area   float64 // m²
	TInit  float64
	Dt     float64
	// Vs in m/s and Density in kg/m³ are written by V2 only.
	Vs      float64
	Density float64

	Components [3]Component
}

// SampleCount returns the total number of velocity samples over all components.
func (p *Point) SampleCount() int {
	n := 0
	for _, c := range p.Components {
		n += len(c.Velocities)
	}

	return n
}

// Duration returns how long the longest component slips.
func (p *Point) Duration() float64 {
	n := 0
	for _, c := range p.Components {
		n = max(n, len(c.Velocities))
	}

	return float64(n) * p.Dt
}
