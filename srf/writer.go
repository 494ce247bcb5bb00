package srf

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arloliu/slipstate/errs"
)

// Unit conversions between in-memory SI values and file units.
const (
	cmPerM         = 100.0
	cm2PerM2       = 1e4
	gcm3PerKgm3    = 1e-3
	samplesPerLine = 6
)

// Write encodes points in the given format version.
//
// Parameters:
//   - w: destination, buffered internally
//   - version: V1 or V2
//   - points: points in SI units
//
// Returns:
//   - error: errs.ErrInvalidVersion for unknown versions, or the write error
func Write(w io.Writer, version Version, points []Point) error {
	if version != V1 && version != V2 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidVersion, version)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, version.String())
	fmt.Fprintf(bw, "POINTS %d\n", len(points))

	for i := range points {
		writePoint(bw, version, &points[i])
	}

	return bw.Flush()
}

// writePoint relies on bufio.Writer keeping the first error, which Flush reports.
func writePoint(bw *bufio.Writer, version Version, p *Point) {
	fmt.Fprintf(bw, "%.6f %.6f %.6e %.6f %.6f %.6e %.6f %.6f",
		p.Lon, p.Lat, p.Depth, p.Strike, p.Dip, p.Area*cm2PerM2, p.TInit, p.Dt)
	if version == V2 {
		fmt.Fprintf(bw, " %.6e %.6e", p.Vs*cmPerM, p.Density*gcm3PerKgm3)
	}
	bw.WriteByte('\n')

	fmt.Fprintf(bw, "%.6f", p.Rake)
	for _, c := range p.Components {
		fmt.Fprintf(bw, " %.6f %d", c.TotalSlip*cmPerM, len(c.Velocities))
	}
	bw.WriteByte('\n')

	for _, c := range p.Components {
		for i, v := range c.Velocities {
			fmt.Fprintf(bw, "  %.6e", v*cmPerM)
			if (i+1)%samplesPerLine == 0 || i == len(c.Velocities)-1 {
				bw.WriteByte('\n')
			}
		}
	}
}
