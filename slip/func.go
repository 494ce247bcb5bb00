// Package slip turns assembled event intervals into continuous cumulative
// slip curves.
//
// Slip accrues only while a patch is in EarthquakeSlip, at a constant
// velocity per patch. The curve of each patch is piecewise linear, with a
// knot at every slip interval boundary.
package slip

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/arloliu/slipstate/format"
	"github.com/arloliu/slipstate/internal/options"
	"github.com/arloliu/slipstate/record"
)

// Knot is a point on a cumulative slip curve. Slip is in meters.
type Knot struct {
	Time float64
	Slip float64
}

type patchCurve struct {
	intervals []record.Interval
	knots     []Knot
	velocity  float64
}

type config struct {
	velocities map[int32]float64
}

// Option configures a Func.
type Option = options.Option[*config]

// WithPatchVelocities overrides the slip velocity of individual patches, in m/s.
func WithPatchVelocities(velocities map[int32]float64) Option {
	return options.New(func(c *config) error {
		for id, v := range velocities {
			if err := checkVelocity(v); err != nil {
				return fmt.Errorf("patch %d: %w", id, err)
			}
		}
		c.velocities = velocities

		return nil
	})
}

// Func is the slip-time function of one event.
//
// A Func is immutable after New and safe for concurrent use.
type Func struct {
	patches  map[int32]*patchCurve
	ids      []int32
	start    float64
	end      float64
	velocity float64

	relOnce sync.Once
	rel     *Func
}

// New builds a Func from assembled intervals and the slip velocity in m/s.
func New(intervals record.PatchIntervals, velocity float64, opts ...Option) (*Func, error) {
	if err := checkVelocity(velocity); err != nil {
		return nil, err
	}

	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	f := &Func{
		patches:  make(map[int32]*patchCurve, len(intervals)),
		ids:      intervals.PatchIDs(),
		velocity: velocity,
	}

	for _, id := range f.ids {
		v := velocity
		if pv, ok := cfg.velocities[id]; ok {
			v = pv
		}

		ivs := slices.Clone(intervals[id])
		for i := 1; i < len(ivs); i++ {
			if ivs[i].Start < ivs[i-1].Start {
				return nil, fmt.Errorf("patch %d: intervals are not in time order", id)
			}
		}
		f.patches[id] = &patchCurve{intervals: ivs, knots: buildKnots(ivs, v), velocity: v}
	}

	start, end, ok := intervals.Bounds()
	if ok {
		f.start, f.end = start, end
	}

	return f, nil
}

func checkVelocity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("slip velocity must be finite and non-negative, got %v", v)
	}

	return nil
}

func buildKnots(intervals []record.Interval, velocity float64) []Knot {
	var knots []Knot
	slip := 0.0
	for _, iv := range intervals {
		if iv.State != format.EarthquakeSlip {
			continue
		}

		if len(knots) == 0 || knots[len(knots)-1].Time != iv.Start {
			knots = append(knots, Knot{Time: iv.Start, Slip: slip})
		}
		slip += velocity * iv.Duration()
		knots = append(knots, Knot{Time: iv.End, Slip: slip})
	}

	return knots
}

// StartTime returns the earliest interval start over all patches.
func (f *Func) StartTime() float64 {
	return f.start
}

// EndTime returns the latest interval end over all patches.
func (f *Func) EndTime() float64 {
	return f.end
}

// PatchIDs returns the tracked patch ids in ascending order.
func (f *Func) PatchIDs() []int32 {
	return slices.Clone(f.ids)
}

// Intervals returns a copy of the intervals of a patch.
func (f *Func) Intervals(patchID int32) []record.Interval {
	pc, ok := f.patches[patchID]
	if !ok {
		return nil
	}

	return slices.Clone(pc.intervals)
}

// Knots returns a copy of the slip curve knots of a patch, nil when the patch
// never slipped.
func (f *Func) Knots(patchID int32) []Knot {
	pc, ok := f.patches[patchID]
	if !ok {
		return nil
	}

	return slices.Clone(pc.knots)
}

// HasSlip reports whether the patch has a slip curve.
func (f *Func) HasSlip(patchID int32) bool {
	pc, ok := f.patches[patchID]
	return ok && len(pc.knots) > 0
}

// Velocity returns the slip velocity of a patch.
func (f *Func) Velocity(patchID int32) (float64, bool) {
	pc, ok := f.patches[patchID]
	if !ok {
		return 0, false
	}

	return pc.velocity, true
}

// MaxVelocity returns the largest patch slip velocity.
func (f *Func) MaxVelocity() float64 {
	maxV := 0.0
	for _, pc := range f.patches {
		maxV = max(maxV, pc.velocity)
	}

	return maxV
}

// StateAt returns the state of a patch at time t. Outside its intervals a
// patch is Locked. ok is false when the patch is not tracked.
func (f *Func) StateAt(patchID int32, t float64) (state format.State, ok bool) {
	pc, ok := f.patches[patchID]
	if !ok {
		return 0, false
	}

	for _, iv := range pc.intervals {
		if iv.Contains(t) {
			return iv.State, true
		}
	}

	return format.Locked, true
}

// VelocityAt returns the slip velocity of a patch at time t: its velocity
// while in EarthquakeSlip and 0 otherwise. It returns NaN for untracked patches.
func (f *Func) VelocityAt(patchID int32, t float64) float64 {
	state, ok := f.StateAt(patchID, t)
	if !ok {
		return math.NaN()
	}

	if state != format.EarthquakeSlip {
		return 0
	}

	return f.patches[patchID].velocity
}

// CumulativeSlipAt returns the slip accumulated by a patch up to time t, in
// meters. It is 0 before the first knot, the final slip after the last knot,
// and linearly interpolated in between. ok is false when the patch has no
// slip curve.
func (f *Func) CumulativeSlipAt(patchID int32, t float64) (float64, bool) {
	pc, ok := f.patches[patchID]
	if !ok || len(pc.knots) == 0 {
		return 0, false
	}

	knots := pc.knots
	if t <= knots[0].Time {
		return knots[0].Slip, true
	}
	last := knots[len(knots)-1]
	if t >= last.Time {
		return last.Slip, true
	}

	i := sort.Search(len(knots), func(k int) bool {
		return knots[k].Time > t
	})
	a, b := knots[i-1], knots[i]
	frac := (t - a.Time) / (b.Time - a.Time)

	return a.Slip + frac*(b.Slip-a.Slip), true
}

// TotalSlip returns the final cumulative slip of a patch.
func (f *Func) TotalSlip(patchID int32) (float64, bool) {
	return f.CumulativeSlipAt(patchID, math.Inf(1))
}

// FirstSlipTime returns the start of the first NucleatingSlip or
// EarthquakeSlip interval of a patch.
func (f *Func) FirstSlipTime(patchID int32) (float64, bool) {
	pc, ok := f.patches[patchID]
	if !ok {
		return 0, false
	}

	for _, iv := range pc.intervals {
		if iv.State.IsSlipping() {
			return iv.Start, true
		}
	}

	return 0, false
}

// LastSlipTime returns the end of the last NucleatingSlip or EarthquakeSlip
// interval of a patch.
func (f *Func) LastSlipTime(patchID int32) (float64, bool) {
	pc, ok := f.patches[patchID]
	if !ok {
		return 0, false
	}

	for i := len(pc.intervals) - 1; i >= 0; i-- {
		if pc.intervals[i].State.IsSlipping() {
			return pc.intervals[i].End, true
		}
	}

	return 0, false
}

// AsEventRelative returns a copy of f with every time shifted by -StartTime().
// The copy is built on first use and shared afterwards.
func (f *Func) AsEventRelative() *Func {
	f.relOnce.Do(func() {
		f.rel = f.shifted(-f.start)
	})

	return f.rel
}

func (f *Func) shifted(offset float64) *Func {
	out := &Func{
		patches:  make(map[int32]*patchCurve, len(f.patches)),
		ids:      slices.Clone(f.ids),
		start:    f.start + offset,
		end:      f.end + offset,
		velocity: f.velocity,
	}

	for id, pc := range f.patches {
		shiftedPC := &patchCurve{
			intervals: make([]record.Interval, len(pc.intervals)),
			velocity:  pc.velocity,
		}
		for i, iv := range pc.intervals {
			iv.Start += offset
			iv.End += offset
			shiftedPC.intervals[i] = iv
		}
		if pc.knots != nil {
			shiftedPC.knots = make([]Knot, len(pc.knots))
			for i, k := range pc.knots {
				shiftedPC.knots[i] = Knot{Time: k.Time + offset, Slip: k.Slip}
			}
		}
		out.patches[id] = shiftedPC
	}

	return out
}
