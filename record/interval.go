package record

import (
	"math"
	"slices"

	"github.com/arloliu/slipstate/format"
)

// Interval is a closed span [Start, End] during which a patch stayed in State.
type Interval struct {
	PatchID int32
	Start   float64
	End     float64
	State   format.State
	// Velocity is the slip velocity carried by the log, NaN when absent.
	// The 13-byte layout never carries one.
	Velocity float64
}

// NewInterval creates an interval with no recorded velocity.
func NewInterval(patchID int32, start, end float64, state format.State) Interval {
	return Interval{
		PatchID:  patchID,
		Start:    start,
		End:      end,
		State:    state,
		Velocity: math.NaN(),
	}
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Contains reports whether t lies in [Start, End).
func (iv Interval) Contains(t float64) bool {
	return t >= iv.Start && t < iv.End
}

// HasVelocity reports whether the interval carries a velocity.
func (iv Interval) HasVelocity() bool {
	return !math.IsNaN(iv.Velocity)
}

// PatchIntervals maps a patch id to its ordered, contiguous intervals for one event.
type PatchIntervals map[int32][]Interval

// PatchIDs returns the patch ids in ascending order.
func (pi PatchIntervals) PatchIDs() []int32 {
	ids := make([]int32, 0, len(pi))
	for id := range pi {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Bounds returns the earliest start and latest end over all intervals.
// ok is false when there are no intervals at all.
func (pi PatchIntervals) Bounds() (start, end float64, ok bool) {
	start, end = math.Inf(1), math.Inf(-1)
	for _, ivs := range pi {
		if len(ivs) == 0 {
			continue
		}
		ok = true
		start = min(start, ivs[0].Start)
		end = max(end, ivs[len(ivs)-1].End)
	}

	if !ok {
		return 0, 0, false
	}

	return start, end, true
}

// Count returns the total number of intervals across all patches.
func (pi PatchIntervals) Count() int {
	n := 0
	for _, ivs := range pi {
		n += len(ivs)
	}

	return n
}
