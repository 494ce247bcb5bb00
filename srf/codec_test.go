package srf

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/slipstate/errs"
	"github.com/stretchr/testify/require"
)

func simplePoint() Point {
	p := Point{
		Lon:    -118.5,
		Lat:    34.25,
		Depth:  5.5,
		Strike: 90,
		Dip:    60,
		Rake:   180,
		Area:   1e6,
		TInit:  0,
		Dt:     0.1,
	}
	p.Components[0] = Component{TotalSlip: 0.02, Velocities: []float64{0.01, 0.01}}

	return p
}

func requirePointsInDelta(t *testing.T, expected, actual []Point) {
	t.Helper()

	require.Len(t, actual, len(expected))
	for i := range expected {
		e, a := expected[i], actual[i]
		require.InDelta(t, e.Lon, a.Lon, 1e-6)
		require.InDelta(t, e.Lat, a.Lat, 1e-6)
		require.InDelta(t, e.Depth, a.Depth, 1e-6)
		require.InDelta(t, e.Strike, a.Strike, 1e-6)
		require.InDelta(t, e.Dip, a.Dip, 1e-6)
		require.InDelta(t, e.Rake, a.Rake, 1e-6)
		require.InEpsilon(t, e.Area, a.Area, 1e-6)
		require.InDelta(t, e.TInit, a.TInit, 1e-6)
		require.InDelta(t, e.Dt, a.Dt, 1e-6)
		require.InDelta(t, e.Vs, a.Vs, 1e-3)
		require.InDelta(t, e.Density, a.Density, 1e-3)

		for c := range e.Components {
			require.InDelta(t, e.Components[c].TotalSlip, a.Components[c].TotalSlip, 1e-6)
			require.Len(t, a.Components[c].Velocities, len(e.Components[c].Velocities))
			for k, v := range e.Components[c].Velocities {
				require.InDelta(t, v, a.Components[c].Velocities[k], 1e-6)
			}
		}
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, V1, []Point{simplePoint()}))

	expected := "1.0\n" +
		"POINTS 1\n" +
		"-118.500000 34.250000 5.500000e+00 90.000000 60.000000 1.000000e+10 0.000000 0.100000\n" +
		"180.000000 2.000000 2 0.000000 0 0.000000 0\n" +
		"  1.000000e+00  1.000000e+00\n"
	require.Equal(t, expected, buf.String())
}

func TestWrite_V2AndWrapping(t *testing.T) {
	p := simplePoint()
	p.Vs = 3500
	p.Density = 2700
	p.Components[0].Velocities = []float64{1, 1, 1, 1, 1, 1, 1}
	p.Components[2] = Component{TotalSlip: 0.5, Velocities: []float64{0.5}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, V2, []Point{p}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, "2.0", lines[0])
	require.True(t, strings.HasSuffix(lines[2], " 3.500000e+05 2.700000e+00"), lines[2])
	require.Equal(t, "180.000000 2.000000 7 0.000000 0 50.000000 1", lines[3])
	require.Len(t, strings.Fields(lines[4]), 6)
	require.Len(t, strings.Fields(lines[5]), 1)
	require.Equal(t, "  5.000000e+01", lines[6])
	require.Len(t, lines, 7)
}

func TestWrite_InvalidVersion(t *testing.T) {
	err := Write(&bytes.Buffer{}, Version(3), nil)
	require.ErrorIs(t, err, errs.ErrInvalidVersion)
}

func TestRoundTrip(t *testing.T) {
	t.Run("V1", func(t *testing.T) {
		points := []Point{simplePoint()}

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, V1, points))

		version, got, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, V1, version)
		requirePointsInDelta(t, points, got)
		require.InDelta(t, 0.02, got[0].Components[0].TotalSlip, 1e-6)
		require.InDelta(t, 0.01, got[0].Components[0].Velocities[1], 1e-6)
	})

	t.Run("V2", func(t *testing.T) {
		a := simplePoint()
		a.Vs = 3464.1
		a.Density = 2670
		b := simplePoint()
		b.Lon, b.TInit = -118.4, 1.25
		b.Components[0].Velocities = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
		b.Components[1] = Component{TotalSlip: 0.1, Velocities: []float64{0.05, 0.05}}
		points := []Point{a, b}

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, V2, points))

		version, got, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, V2, version)
		requirePointsInDelta(t, points, got)
	})

	t.Run("NoPoints", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, V1, nil))

		_, got, err := Read(&buf)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestRead_SkipsCommentsAndPlaneBlock(t *testing.T) {
	input := `# generated for a test
2.0

PLANE 1
 -118.50000 34.25000 10 5 10.00 5.00
  90 60 0.00 0.00 0.00
# points follow
POINTS 1
-118.500000 34.250000 5.500000e+00 90.000000 60.000000 1.000000e+10 0.000000 0.100000 3.500000e+05 2.700000e+00
180.000000 2.000000 2 0.000000 0 0.000000 0
  1.000000e+00
  1.000000e+00
`
	version, points, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, V2, version)
	require.Len(t, points, 1)
	require.InDelta(t, 3500, points[0].Vs, 1e-9)
	require.InDelta(t, 2700, points[0].Density, 1e-9)
	require.Equal(t, []float64{0.01, 0.01}, points[0].Components[0].Velocities)
}

func TestRead_Errors(t *testing.T) {
	pointLines := "-118.5 34.25 5.5 90 60 1e10 0 0.1\n180 2 2 0 0 0 0\n1 1\n"

	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"Empty", "", errs.ErrInvalidVersion},
		{"OnlyComments", "# nothing\n\n", errs.ErrInvalidVersion},
		{"BadVersion", "3.0\nPOINTS 0\n", errs.ErrInvalidVersion},
		{"VersionNotNumber", "srf\nPOINTS 0\n", errs.ErrInvalidVersion},
		{"MissingPoints", "1.0\n", errs.ErrMalformedPoint},
		{"UnknownHeader", "1.0\nSEGMENTS 1\n", errs.ErrMalformedPoint},
		{"TooFewPoints", "1.0\nPOINTS 2\n" + pointLines, errs.ErrPointCountMismatch},
		{"TooManyPoints", "1.0\nPOINTS 1\n" + pointLines + pointLines, errs.ErrPointCountMismatch},
		{"ZeroDeclared", "1.0\nPOINTS 0\n" + pointLines, errs.ErrPointCountMismatch},
		{"V2FieldsInV1", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1 3.5e5 2.7\n", errs.ErrMalformedPoint},
		{"NotANumber", "1.0\nPOINTS 1\n-118.5 north 5.5 90 60 1e10 0 0.1\n", errs.ErrMalformedPoint},
		{"ShortSecondLine", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1\n180 2 2\n", errs.ErrMalformedPoint},
		{"MissingSecondLine", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1\n", errs.ErrMalformedPoint},
		{"MissingSamples", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1\n180 2 3 0 0 0 0\n1 1\n", errs.ErrMalformedPoint},
		{"ExtraSamples", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1\n180 2 1 0 0 0 0\n1 1\n", errs.ErrMalformedPoint},
		{"NegativeCount", "1.0\nPOINTS -1\n", errs.ErrMalformedPoint},
		{"HugePointCount", "1.0\nPOINTS 99999999999999\n", errs.ErrPointCountMismatch},
		{"HugePointCountWithPoint", "1.0\nPOINTS 99999999999999\n" + pointLines, errs.ErrPointCountMismatch},
		{"HugeSampleCount", "1.0\nPOINTS 1\n-118.5 34.25 5.5 90 60 1e10 0 0.1\n180 2 99999999999999 0 0 0 0\n1 1\n", errs.ErrMalformedPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseVersion(t *testing.T) {
	for input, expected := range map[string]Version{"1.0": V1, "1": V1, " 2.0 ": V2, "2": V2} {
		v, err := ParseVersion(input)
		require.NoError(t, err)
		require.Equal(t, expected, v)
	}

	_, err := ParseVersion("1.5")
	require.ErrorIs(t, err, errs.ErrInvalidVersion)

	require.Equal(t, "1.0", V1.String())
	require.Equal(t, "2.0", V2.String())
}

func TestFileRoundTrip(t *testing.T) {
	p := simplePoint()
	p.Components[0].Velocities = make([]float64, 500)
	for i := range p.Components[0].Velocities {
		p.Components[0].Velocities[i] = 0.01
	}
	points := []Point{p, simplePoint()}

	for _, name := range []string{"event.srf", "event.srf.zst", "event.srf.s2", "event.srf.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, V2, points))

			version, got, err := ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, V2, version)
			requirePointsInDelta(t, points, got)
		})
	}

	t.Run("Missing", func(t *testing.T) {
		_, _, err := ReadFile(filepath.Join(t.TempDir(), "absent.srf"))
		require.Error(t, err)
	})
}

func TestPointSampleCountAndDuration(t *testing.T) {
	p := simplePoint()
	p.Components[1].Velocities = []float64{1, 2, 3}

	require.Equal(t, 5, p.SampleCount())
	require.InDelta(t, 0.3, p.Duration(), 1e-12)
}
