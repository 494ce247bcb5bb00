// Package catalog describes the fault model and event catalog that a
// transition log is read against.
//
// The core packages only depend on the Geometry and Event interfaces. The
// concrete types here back them with plain Go values, optionally loaded
// from a YAML file.
package catalog

import (
	"fmt"
	"slices"

	"github.com/arloliu/slipstate/errs"
)

// Patch is one element of the fault model.
type Patch struct {
	ID int32 `yaml:"id"`
	// Lon and Lat locate the patch center in degrees.
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
	// Depth of the patch center in km, positive down.
	Depth  float64 `yaml:"depth"`
	Strike float64 `yaml:"strike"`
	Dip    float64 `yaml:"dip"`
	Rake   float64 `yaml:"rake"`
	// Area in m².
	Area float64 `yaml:"area"`
	// Vs is the shear wave velocity in m/s, zero when unknown.
	Vs float64 `yaml:"vs,omitempty"`
	// Density in kg/m³, zero when unknown.
	Density float64 `yaml:"density,omitempty"`
}

// Geometry resolves patch ids to their physical description.
type Geometry interface {
	// ElementCount returns the number of patches N. Valid ids are 1..N.
	ElementCount() int
	// Patch returns the patch with the given id.
	Patch(id int32) (Patch, bool)
}

// Event is the part of an event catalog entry needed to assemble its
// transitions.
type Event interface {
	StartTime() float64
	PatchIDs() []int32
	// NextTransitionTime returns the time of the patch's first transition
	// after this event, if one is scheduled.
	NextTransitionTime(patchID int32) (float64, bool)
}

// StaticGeometry is an in-memory Geometry.
type StaticGeometry struct {
	patches map[int32]Patch
	count   int
}

var _ Geometry = (*StaticGeometry)(nil)

// NewStaticGeometry indexes patches by id. The element count is the highest
// patch id, so ids must be 1-based and unique.
func NewStaticGeometry(patches []Patch) (*StaticGeometry, error) {
	g := &StaticGeometry{patches: make(map[int32]Patch, len(patches))}
	for _, p := range patches {
		if p.ID < 1 {
			return nil, fmt.Errorf("%w: patch id %d is not 1-based", errs.ErrUnknownPatch, p.ID)
		}
		if _, dup := g.patches[p.ID]; dup {
			return nil, fmt.Errorf("duplicate patch id %d", p.ID)
		}
		g.patches[p.ID] = p
		g.count = max(g.count, int(p.ID))
	}

	return g, nil
}

func (g *StaticGeometry) ElementCount() int {
	return g.count
}

func (g *StaticGeometry) Patch(id int32) (Patch, bool) {
	p, ok := g.patches[id]
	return p, ok
}

// EventPatchSet is an in-memory Event.
type EventPatchSet struct {
	ID    int
	Start float64
	// SlipVelocity is the constant slip velocity for the event in m/s.
	SlipVelocity float64

	ids      []int32
	next     map[int32]float64
	expected map[int32]float64
}

var _ Event = (*EventPatchSet)(nil)

// NewEventPatchSet creates an event with no patches.
func NewEventPatchSet(id int, start float64) *EventPatchSet {
	return &EventPatchSet{
		ID:       id,
		Start:    start,
		next:     make(map[int32]float64),
		expected: make(map[int32]float64),
	}
}

// Add registers a patch and the time of its next scheduled transition.
func (e *EventPatchSet) Add(patchID int32, nextTransition float64) *EventPatchSet {
	if !slices.Contains(e.ids, patchID) {
		e.ids = append(e.ids, patchID)
	}
	e.next[patchID] = nextTransition

	return e
}

// AddUnscheduled registers a patch with no known next transition.
func (e *EventPatchSet) AddUnscheduled(patchID int32) *EventPatchSet {
	if !slices.Contains(e.ids, patchID) {
		e.ids = append(e.ids, patchID)
	}
	delete(e.next, patchID)

	return e
}

// SetExpectedSlip records the catalog's total slip for a patch, in m.
func (e *EventPatchSet) SetExpectedSlip(patchID int32, slip float64) *EventPatchSet {
	e.expected[patchID] = slip
	return e
}

// ExpectedSlip returns the recorded total slips, keyed by patch id.
func (e *EventPatchSet) ExpectedSlip() map[int32]float64 {
	out := make(map[int32]float64, len(e.expected))
	for id, s := range e.expected {
		out[id] = s
	}

	return out
}

func (e *EventPatchSet) StartTime() float64 {
	return e.Start
}

func (e *EventPatchSet) PatchIDs() []int32 {
	return slices.Clone(e.ids)
}

func (e *EventPatchSet) NextTransitionTime(patchID int32) (float64, bool) {
	t, ok := e.next[patchID]
	return t, ok
}
