// Package slipstate reads the binary state-transition logs of an earthquake
// simulator and turns the events in them into slip-time functions and
// point-source slip files.
//
// # Core Features
//
//   - Byte order detection for logs written on either endianness
//   - Sparse time index for range and event queries over large logs
//   - Event assembly into closed per-patch state intervals
//   - Piecewise linear cumulative slip curves
//   - Point-source files (v1.0, v2.0) with four velocity derivation modes
//   - Optional zstd, S2 or LZ4 compression of point-source files
//
// # Basic Usage
//
// Opening a log and reading a time range:
//
//	log, _ := slipstate.Open("transitions.bin", translog.WithPatchCount(cat.Geometry.ElementCount()))
//	defer log.Close()
//
//	for tr, err := range log.Range(1000, 2000) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(tr)
//	}
//
// Extracting an event and writing its point sources:
//
//	ev, _ := cat.Event(42)
//	fn, _ := slipstate.ExtractEvent(log, ev, ev.SlipVelocity)
//	points, _ := slipstate.BuildSRF(fn, cat.Geometry, 0.05, srf.ModeAdjustedVelocity)
//	_ = srf.WriteFile("event42.srf.zst", srf.V2, points)
//
// # Package Structure
//
// This package wraps the most common paths through the translog, slip and
// srf packages. Use those packages directly for finer control.
package slipstate

import (
	"fmt"

	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/slip"
	"github.com/arloliu/slipstate/srf"
	"github.com/arloliu/slipstate/translog"
)

// Open opens a transition log. See translog.Open.
func Open(path string, opts ...translog.Option) (*translog.Log, error) {
	return translog.Open(path, opts...)
}

// ExtractEvent assembles the intervals of ev from log and builds its
// slip-time function with the given slip velocity in m/s.
func ExtractEvent(log *translog.Log, ev catalog.Event, velocity float64, opts ...slip.Option) (*slip.Func, error) {
	intervals, err := log.TransitionsForEvent(ev)
	if err != nil {
		return nil, err
	}

	fn, err := slip.New(intervals, velocity, opts...)
	if err != nil {
		return nil, fmt.Errorf("build slip-time function: %w", err)
	}

	return fn, nil
}

// BuildSRF derives one point source per slipping patch of fn, sampled every
// dt seconds.
func BuildSRF(fn *slip.Func, geometry catalog.Geometry, dt float64, mode srf.Mode) ([]srf.Point, error) {
	return srf.BuildPoints(fn, geometry, dt, mode)
}

// WriteEventSRF extracts an event and writes its point sources to path,
// compressed according to the file extension.
func WriteEventSRF(path string, log *translog.Log, ev catalog.Event, velocity float64,
	geometry catalog.Geometry, dt float64, mode srf.Mode, version srf.Version,
) error {
	fn, err := ExtractEvent(log, ev, velocity)
	if err != nil {
		return err
	}

	points, err := BuildSRF(fn, geometry, dt, mode)
	if err != nil {
		return err
	}

	return srf.WriteFile(path, version, points)
}
