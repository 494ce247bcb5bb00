package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a catalog.
//
//	patches:
//	  - {id: 1, lon: -118.1, lat: 34.2, depth: 5.5, strike: 90, dip: 60, rake: 180, area: 1.0e6}
//	events:
//	  - id: 12
//	    start: 1.5e9
//	    slip_velocity: 1.0
//	    patches:
//	      - {id: 1, next: 1.6e9, expected_slip: 2.4}
type File struct {
	Patches []Patch     `yaml:"patches"`
	Events  []EventFile `yaml:"events"`
}

// EventFile is one event entry of a catalog file.
type EventFile struct {
	ID           int              `yaml:"id"`
	Start        float64          `yaml:"start"`
	SlipVelocity float64          `yaml:"slip_velocity"`
	Patches      []EventPatchFile `yaml:"patches"`
}

// EventPatchFile is one patch of an event entry. Next is omitted when the
// patch has no scheduled transition after the event.
type EventPatchFile struct {
	ID           int32    `yaml:"id"`
	Next         *float64 `yaml:"next,omitempty"`
	ExpectedSlip *float64 `yaml:"expected_slip,omitempty"`
}

// Catalog holds a loaded geometry and its events.
type Catalog struct {
	Geometry *StaticGeometry
	Events   []*EventPatchSet
}

// Event returns the event with the given id.
func (c *Catalog) Event(id int) (*EventPatchSet, bool) {
	for _, ev := range c.Events {
		if ev.ID == id {
			return ev, true
		}
	}

	return nil, false
}

// Load decodes a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	geometry, err := NewStaticGeometry(f.Patches)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Geometry: geometry, Events: make([]*EventPatchSet, 0, len(f.Events))}
	for _, ef := range f.Events {
		ev := NewEventPatchSet(ef.ID, ef.Start)
		ev.SlipVelocity = ef.SlipVelocity
		for _, p := range ef.Patches {
			if _, ok := geometry.Patch(p.ID); !ok && len(f.Patches) > 0 {
				return nil, fmt.Errorf("event %d: patch %d is not in the geometry", ef.ID, p.ID)
			}
			if p.Next != nil {
				ev.Add(p.ID, *p.Next)
			} else {
				ev.AddUnscheduled(p.ID)
			}
			if p.ExpectedSlip != nil {
				ev.SetExpectedSlip(p.ID, *p.ExpectedSlip)
			}
		}
		cat.Events = append(cat.Events, ev)
	}

	return cat, nil
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}
