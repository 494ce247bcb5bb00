package srf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/slipstate/errs"
)

const (
	maxLineSize = 1 << 20
	// maxPrealloc caps the capacity taken from a declared count. Longer slices grow by append.
	maxPrealloc = 1 << 16
)

// lineScanner yields the fields of non-blank, non-comment lines.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &lineScanner{sc: sc}
}

// next returns io.EOF once the input is exhausted.
func (s *lineScanner) next() ([]string, error) {
	for s.sc.Scan() {
		s.line++
		text := strings.TrimSpace(s.sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		return strings.Fields(text), nil
	}

	if err := s.sc.Err(); err != nil {
		return nil, err
	}

	return nil, io.EOF
}

func (s *lineScanner) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", errs.ErrMalformedPoint, s.line, fmt.Sprintf(format, args...))
}

func (s *lineScanner) floats(fields []string, dst ...*float64) error {
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return s.malformed("field %d: %q is not a number", i+1, f)
		}
		*dst[i] = v
	}

	return nil
}

// Read decodes a point-source file, converting values back to SI units.
//
// An optional PLANE block before POINTS is skipped. The number of points
// must match the POINTS header exactly.
//
// Returns:
//   - Version: format version of the file
//   - []Point: decoded points
//   - error: errs.ErrInvalidVersion, errs.ErrMalformedPoint or errs.ErrPointCountMismatch
func Read(r io.Reader) (Version, []Point, error) {
	s := newLineScanner(r)

	fields, err := s.next()
	if err == io.EOF {
		return 0, nil, fmt.Errorf("%w: empty file", errs.ErrInvalidVersion)
	}
	if err != nil {
		return 0, nil, err
	}
	if len(fields) != 1 {
		return 0, nil, fmt.Errorf("%w: %q", errs.ErrInvalidVersion, strings.Join(fields, " "))
	}
	version, err := ParseVersion(fields[0])
	if err != nil {
		return 0, nil, err
	}

	n, err := readPointsHeader(s)
	if err != nil {
		return version, nil, err
	}

	points := make([]Point, 0, min(n, maxPrealloc))
	for len(points) < n {
		p, err := readPoint(s, version)
		if err == io.EOF {
			return version, nil, fmt.Errorf("%w: declared %d, found %d", errs.ErrPointCountMismatch, n, len(points))
		}
		if err != nil {
			return version, nil, err
		}
		points = append(points, p)
	}

	if _, err := s.next(); err != io.EOF {
		if err != nil {
			return version, nil, err
		}

		return version, nil, fmt.Errorf("%w: declared %d, found more data at line %d", errs.ErrPointCountMismatch, n, s.line)
	}

	return version, points, nil
}

func readPointsHeader(s *lineScanner) (int, error) {
	for {
		fields, err := s.next()
		if err == io.EOF {
			return 0, s.malformed("missing POINTS header")
		}
		if err != nil {
			return 0, err
		}
		if len(fields) != 2 {
			return 0, s.malformed("expected PLANE or POINTS header, got %q", strings.Join(fields, " "))
		}

		count, err := strconv.Atoi(fields[1])
		if err != nil || count < 0 {
			return 0, s.malformed("invalid %s count %q", fields[0], fields[1])
		}

		switch fields[0] {
		case "POINTS":
			return count, nil
		case "PLANE":
			// two header lines per plane segment
			for range 2 * count {
				if _, err := s.next(); err != nil {
					if err == io.EOF {
						return 0, s.malformed("truncated PLANE block")
					}

					return 0, err
				}
			}
		default:
			return 0, s.malformed("unknown header %q", fields[0])
		}
	}
}

// readPoint returns io.EOF only when the input ends before a point starts.
func readPoint(s *lineScanner, version Version) (Point, error) {
	var p Point

	fields, err := s.next()
	if err != nil {
		return p, err
	}

	want := 8
	if version == V2 {
		want = 10
	}
	if len(fields) != want {
		return p, s.malformed("expected %d fields, got %d", want, len(fields))
	}
	if err := s.floats(fields[:8], &p.Lon, &p.Lat, &p.Depth, &p.Strike, &p.Dip, &p.Area, &p.TInit, &p.Dt); err != nil {
		return p, err
	}
	p.Area /= cm2PerM2
	if version == V2 {
		if err := s.floats(fields[8:], &p.Vs, &p.Density); err != nil {
			return p, err
		}
		p.Vs /= cmPerM
		p.Density /= gcm3PerKgm3
	}

	fields, err = s.next()
	if err == io.EOF {
		return p, s.malformed("truncated point")
	}
	if err != nil {
		return p, err
	}
	if len(fields) != 7 {
		return p, s.malformed("expected 7 fields, got %d", len(fields))
	}
	if err := s.floats(fields[:1], &p.Rake); err != nil {
		return p, err
	}

	var counts [3]int
	for i := range p.Components {
		if err := s.floats(fields[1+2*i:2+2*i], &p.Components[i].TotalSlip); err != nil {
			return p, err
		}
		p.Components[i].TotalSlip /= cmPerM

		nt, err := strconv.Atoi(fields[2+2*i])
		if err != nil || nt < 0 {
			return p, s.malformed("invalid sample count %q", fields[2+2*i])
		}
		counts[i] = nt
	}

	for i, nt := range counts {
		if nt == 0 {
			continue
		}
		vels, err := readSamples(s, nt)
		if err != nil {
			return p, err
		}
		p.Components[i].Velocities = vels
	}

	return p, nil
}

// readSamples reads n velocity samples spread over as many lines as needed.
func readSamples(s *lineScanner, n int) ([]float64, error) {
	out := make([]float64, 0, min(n, maxPrealloc))
	for len(out) < n {
		fields, err := s.next()
		if err == io.EOF {
			return nil, s.malformed("expected %d velocity samples, got %d", n, len(out))
		}
		if err != nil {
			return nil, err
		}
		if len(out)+len(fields) > n {
			return nil, s.malformed("too many velocity samples, expected %d", n)
		}

		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, s.malformed("velocity sample %q is not a number", f)
			}
			out = append(out, v/cmPerM)
		}
	}

	return out, nil
}
