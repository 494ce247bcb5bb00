package srf

import (
	"math"
	"testing"

	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/format"
	"github.com/arloliu/slipstate/record"
	"github.com/arloliu/slipstate/slip"
	"github.com/stretchr/testify/require"
)

// eventFunc starts at t=100. Patch 1 nucleates for 0.5s then slips for 1.5s,
// patch 2 slips for 1s and patch 3 is tracked but never slips.
func eventFunc(t *testing.T) *slip.Func {
	t.Helper()

	fn, err := slip.New(record.PatchIntervals{
		1: {
			record.NewInterval(1, 100, 100.5, format.NucleatingSlip),
			record.NewInterval(1, 100.5, 102, format.EarthquakeSlip),
		},
		2: {record.NewInterval(2, 100.2, 101.2, format.EarthquakeSlip)},
		3: {},
	}, 1.0)
	require.NoError(t, err)

	return fn
}

func integrate(vels []float64, dt float64) []float64 {
	out := make([]float64, len(vels)+1)
	for i, v := range vels {
		out[i+1] = out[i] + v*dt
	}

	return out
}

func TestVelocitySeries_None(t *testing.T) {
	tStart, vels, err := VelocitySeries(eventFunc(t), 1, 0.25, ModeNone)
	require.NoError(t, err)
	require.Equal(t, 0.0, tStart)
	require.Equal(t, []float64{0, 0, 1, 1, 1, 1, 1, 1}, vels)
}

func TestVelocitySeries_AdjustedVelocityMatchesCurve(t *testing.T) {
	fn := eventFunc(t)
	rel := fn.AsEventRelative()

	for _, tc := range []struct {
		patch int32
		dt    float64
	}{
		{1, 0.25},
		{1, 0.1},
		{2, 0.3},
		{2, 0.07},
	} {
		tStart, vels, err := VelocitySeries(fn, tc.patch, tc.dt, ModeAdjustedVelocity)
		require.NoError(t, err)

		steps := int(math.Ceil((rel.EndTime() - tStart) / tc.dt))
		require.LessOrEqual(t, len(vels), steps)

		for i, s := range integrate(vels, tc.dt) {
			expected, ok := rel.CumulativeSlipAt(tc.patch, tStart+float64(i)*tc.dt)
			require.True(t, ok)
			require.InDelta(t, expected, s, 1e-9, "patch %d dt %v step %d", tc.patch, tc.dt, i)
		}
	}
}

func TestVelocitySeries_ConstantVelocityAdjustedLength(t *testing.T) {
	_, vels, err := VelocitySeries(eventFunc(t), 1, 0.25, ModeConstantVelocityAdjustedLength)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1, 1, 1, 1, 1, 1}, vels)

	_, vels, err = VelocitySeries(eventFunc(t), 2, 0.3, ModeConstantVelocityAdjustedLength)
	require.NoError(t, err)
	for _, v := range vels {
		require.True(t, v == 0 || v == 1, "velocity %v", v)
	}
	total := integrate(vels, 0.3)
	require.InDelta(t, 1.0, total[len(total)-1], 0.3)
}

func TestVelocitySeries_LinearTaper(t *testing.T) {
	t.Run("NucleationKeepsStart", func(t *testing.T) {
		tStart, vels, err := VelocitySeries(eventFunc(t), 1, 0.25, ModeLinearTaper)
		require.NoError(t, err)
		require.Equal(t, 0.0, tStart)
		// slip ends at 2.0 and the ramp out reaches 2.075
		require.Len(t, vels, 9)
		require.Equal(t, 0.0, vels[0])
		require.InDelta(t, 0.5, vels[2], 1e-9)
		require.InDelta(t, 1.0, vels[4], 1e-9)
		require.InDelta(t, 0.5, vels[8], 1e-9)
	})

	t.Run("RampWidensStart", func(t *testing.T) {
		tStart, vels, err := VelocitySeries(eventFunc(t), 2, 0.05, ModeLinearTaper)
		require.NoError(t, err)
		require.InDelta(t, 0.15, tStart, 1e-9)
		require.InDelta(t, 22, len(vels), 1)

		// the ramps are symmetric, so the area under the series is the slip
		total := integrate(vels, 0.05)
		require.InDelta(t, 1.0, total[len(total)-1], 1e-6)
	})
}

func TestVelocitySeries_Errors(t *testing.T) {
	fn := eventFunc(t)

	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, _, err := VelocitySeries(fn, 1, dt, ModeNone)
		require.ErrorIs(t, err, errs.ErrInvalidTimestep)
	}

	_, _, err := VelocitySeries(fn, 1, 0.1, Mode(42))
	require.ErrorIs(t, err, errs.ErrInvalidMode)

	_, _, err = VelocitySeries(fn, 9, 0.1, ModeNone)
	require.ErrorIs(t, err, errs.ErrUnknownPatch)

	_, _, err = VelocitySeries(fn, 3, 0.1, ModeNone)
	require.ErrorIs(t, err, errs.ErrNoSlip)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeNone, ModeAdjustedVelocity, ModeConstantVelocityAdjustedLength, ModeLinearTaper} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}

	for alias, expected := range map[string]Mode{"adj-vel": ModeAdjustedVelocity, "CONST-VEL": ModeConstantVelocityAdjustedLength, " taper": ModeLinearTaper} {
		parsed, err := ParseMode(alias)
		require.NoError(t, err)
		require.Equal(t, expected, parsed)
	}

	_, err := ParseMode("cubic")
	require.ErrorIs(t, err, errs.ErrInvalidMode)
	require.Equal(t, "unknown", Mode(9).String())
}

func testGeometry(t *testing.T, ids ...int32) *catalog.StaticGeometry {
	t.Helper()

	patches := make([]catalog.Patch, 0, len(ids))
	for _, id := range ids {
		patches = append(patches, catalog.Patch{
			ID:      id,
			Lon:     -118 + float64(id)*0.01,
			Lat:     34,
			Depth:   float64(id),
			Strike:  90,
			Dip:     60,
			Rake:    180,
			Area:    1e6,
			Vs:      3500,
			Density: 2700,
		})
	}

	g, err := catalog.NewStaticGeometry(patches)
	require.NoError(t, err)

	return g
}

func TestBuildPoint(t *testing.T) {
	g := testGeometry(t, 1)
	patch, _ := g.Patch(1)

	p, err := BuildPoint(eventFunc(t), patch, 0.25, ModeAdjustedVelocity)
	require.NoError(t, err)
	require.Equal(t, patch.Lon, p.Lon)
	require.Equal(t, 1.0, p.Depth)
	require.Equal(t, 1e6, p.Area)
	require.Equal(t, 3500.0, p.Vs)
	require.Equal(t, 0.0, p.TInit)
	require.Equal(t, 0.25, p.Dt)
	require.InDelta(t, 1.5, p.Components[0].TotalSlip, 1e-12)
	require.Len(t, p.Components[0].Velocities, 8)
	require.Empty(t, p.Components[1].Velocities)
	require.Empty(t, p.Components[2].Velocities)
}

func TestBuildPoints(t *testing.T) {
	points, err := BuildPoints(eventFunc(t), testGeometry(t, 1, 2, 3), 0.25, ModeNone)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 1.0, points[0].Depth)
	require.Equal(t, 2.0, points[1].Depth)
	require.InDelta(t, 0.2, points[1].TInit, 1e-9)

	_, err = BuildPoints(eventFunc(t), testGeometry(t, 1), 0.25, ModeNone)
	require.ErrorIs(t, err, errs.ErrUnknownPatch)
}
