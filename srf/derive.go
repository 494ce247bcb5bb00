package srf

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/format"
	"github.com/arloliu/slipstate/slip"
)

// Mode selects how a slip-time function is discretized into velocity samples.
type Mode uint8

const (
	// ModeNone samples the instantaneous velocity at each step.
	ModeNone Mode = iota
	// ModeAdjustedVelocity uses the average slip rate over each step, so the
	// integrated samples match the cumulative slip curve at every step boundary.
	ModeAdjustedVelocity
	// ModeConstantVelocityAdjustedLength emits either 0 or the patch velocity
	// per step, whichever keeps the running slip closest to the curve.
	ModeConstantVelocityAdjustedLength
	// ModeLinearTaper ramps velocity linearly in and out of every slip
	// interval over 10% of its duration.
	ModeLinearTaper
)

// taperFraction is the share of a slip interval covered by each ramp.
const taperFraction = 0.1

var modeNames = map[Mode]string{
	ModeNone:                           "none",
	ModeAdjustedVelocity:               "adjusted-velocity",
	ModeConstantVelocityAdjustedLength: "constant-velocity-adjusted-length",
	ModeLinearTaper:                    "linear-taper",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}

	return "unknown"
}

// ParseMode resolves a mode by name. Short forms "adj-vel", "const-vel" and
// "taper" are accepted too.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "adj-vel":
		return ModeAdjustedVelocity, nil
	case "const-vel":
		return ModeConstantVelocityAdjustedLength, nil
	case "taper":
		return ModeLinearTaper, nil
	}

	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrInvalidMode, name)
}

type taper struct {
	upStart, upEnd, downStart, downEnd float64
	velocity                           float64
}

func (tp taper) at(t float64) float64 {
	switch {
	case t < tp.upStart || t > tp.downEnd:
		return 0
	case t < tp.upEnd:
		return tp.velocity * (t - tp.upStart) / (tp.upEnd - tp.upStart)
	case t > tp.downStart:
		return tp.velocity * (1 - (t-tp.downStart)/(tp.downEnd-tp.downStart))
	default:
		return tp.velocity
	}
}

// VelocitySeries samples the slip velocity of one patch every dt seconds.
//
// The series runs over the event-relative slip window of the patch, from its
// first to its last slip time, widened by the ramps in ModeLinearTaper. It
// has ceil((tEnd-tStart)/dt) samples.
//
// Returns:
//   - float64: event-relative time of the first sample
//   - []float64: velocity samples in m/s
//   - error: errs.ErrInvalidTimestep, errs.ErrInvalidMode, errs.ErrUnknownPatch
//     or errs.ErrNoSlip
func VelocitySeries(fn *slip.Func, patchID int32, dt float64, mode Mode) (float64, []float64, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, nil, fmt.Errorf("%w: %v", errs.ErrInvalidTimestep, dt)
	}
	if _, ok := modeNames[mode]; !ok {
		return 0, nil, fmt.Errorf("%w: %d", errs.ErrInvalidMode, mode)
	}

	rel := fn.AsEventRelative()
	velocity, ok := rel.Velocity(patchID)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %d", errs.ErrUnknownPatch, patchID)
	}

	tStart, ok := rel.FirstSlipTime(patchID)
	if !ok {
		return 0, nil, fmt.Errorf("%w: patch %d", errs.ErrNoSlip, patchID)
	}
	tEnd, _ := rel.LastSlipTime(patchID)

	var tapers []taper
	if mode == ModeLinearTaper {
		for _, iv := range rel.Intervals(patchID) {
			d := iv.Duration()
			if iv.State != format.EarthquakeSlip || d <= 0 {
				continue
			}
			half := 0.5 * taperFraction * d
			tp := taper{
				upStart:   iv.Start - half,
				upEnd:     iv.Start + half,
				downStart: iv.End - half,
				downEnd:   iv.End + half,
				velocity:  velocity,
			}
			tStart = min(tStart, tp.upStart)
			tEnd = max(tEnd, tp.downEnd)
			tapers = append(tapers, tp)
		}
	}

	slipAt := func(t float64) float64 {
		s, _ := rel.CumulativeSlipAt(patchID, t)
		return s
	}

	steps := int(math.Ceil((tEnd - tStart) / dt))
	vels := make([]float64, max(steps, 0))
	running := 0.0
	for i := range vels {
		t := tStart + float64(i)*dt
		switch mode {
		case ModeNone:
			vels[i] = rel.VelocityAt(patchID, t)
		case ModeAdjustedVelocity:
			vels[i] = (slipAt(t+dt) - slipAt(t)) / dt
		case ModeConstantVelocityAdjustedLength:
			target := slipAt(t + dt)
			if on := running + velocity*dt; math.Abs(target-on) < math.Abs(target-running) {
				vels[i] = velocity
			}
		case ModeLinearTaper:
			for _, tp := range tapers {
				vels[i] += tp.at(t)
			}
		}
		running += vels[i] * dt
	}

	return tStart, vels, nil
}

// BuildPoint derives the point source of one patch. The velocity series goes
// into the first component together with the total slip of the patch.
func BuildPoint(fn *slip.Func, patch catalog.Patch, dt float64, mode Mode) (Point, error) {
	tStart, vels, err := VelocitySeries(fn, patch.ID, dt, mode)
	if err != nil {
		return Point{}, err
	}

	total, _ := fn.TotalSlip(patch.ID)

	p := Point{
		Lon:     patch.Lon,
		Lat:     patch.Lat,
		Depth:   patch.Depth,
		Strike:  patch.Strike,
		Dip:     patch.Dip,
		Rake:    patch.Rake,
		Area:    patch.Area,
		TInit:   tStart,
		Dt:      dt,
		Vs:      patch.Vs,
		Density: patch.Density,
	}
	p.Components[0] = Component{TotalSlip: total, Velocities: vels}

	return p, nil
}

// BuildPoints derives a point for every patch of fn in ascending id order.
// Patches that never slip are left out.
func BuildPoints(fn *slip.Func, geometry catalog.Geometry, dt float64, mode Mode) ([]Point, error) {
	ids := fn.PatchIDs()
	points := make([]Point, 0, len(ids))
	for _, id := range ids {
		patch, ok := geometry.Patch(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d not in geometry", errs.ErrUnknownPatch, id)
		}

		p, err := BuildPoint(fn, patch, dt, mode)
		if errors.Is(err, errs.ErrNoSlip) {
			continue
		}
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, nil
}
