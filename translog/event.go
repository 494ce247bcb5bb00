package translog

import (
	"fmt"
	"math"

	"github.com/arloliu/slipstate/catalog"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/format"
	"github.com/arloliu/slipstate/record"
)

type openInterval struct {
	start float64
	state format.State
}

// MaxEventDuration returns the scan ceiling used by TransitionsForEvent, in seconds.
func (l *Log) MaxEventDuration() float64 {
	return l.maxEventDuration
}

// TransitionsForEvent reconstructs the closed state intervals of every patch
// taking part in ev.
//
// Records from ev.StartTime() up to StartTime()+MaxEventDuration() are scanned.
// A record on one of the event's patches belongs to this event when its time
// is before the patch's next scheduled transition, or equal to it and the
// record returns the patch to Locked. A Locked record on a patch that is not
// slipping is dropped. A patch without a next scheduled transition owns every
// record up to the scan ceiling.
//
// Every patch that slipped must be Locked again by the end of the scan,
// otherwise errs.ErrEventNotClosed is returned. The final Locked state is not
// part of the result. Patches that never changed state map to an empty slice.
func (l *Log) TransitionsForEvent(ev catalog.Event) (record.PatchIntervals, error) {
	start := ev.StartTime()
	end := start + l.maxEventDuration
	ids := ev.PatchIDs()

	result := make(record.PatchIntervals, len(ids))
	next := make(map[int32]float64, len(ids))
	lastNext := math.Inf(-1)
	for _, id := range ids {
		t, ok := ev.NextTransitionTime(id)
		if !ok {
			t = math.Inf(1)
		}
		next[id] = t
		lastNext = max(lastNext, t)
		result[id] = []record.Interval{}
	}

	open := make(map[int32]openInterval, len(ids))
	scanned := int64(0)
	for i := l.index.ScanStart(start); i < l.count; i++ {
		tr, err := l.Transition(i)
		if err != nil {
			return nil, err
		}
		scanned++

		if tr.Time < start {
			continue
		}
		if tr.Time >= end || tr.Time > lastNext {
			break
		}

		nextTime, ok := next[tr.PatchID]
		if !ok {
			continue
		}
		if tr.Time > nextTime || (tr.Time == nextTime && tr.State != format.Locked) {
			continue
		}

		cur, isOpen := open[tr.PatchID]
		if tr.State == format.Locked && (!isOpen || cur.state == format.Locked) {
			continue
		}

		if isOpen {
			result[tr.PatchID] = append(result[tr.PatchID],
				record.NewInterval(tr.PatchID, cur.start, tr.Time, cur.state))
		}
		open[tr.PatchID] = openInterval{start: tr.Time, state: tr.State}
	}

	for _, id := range ids {
		cur, isOpen := open[id]
		if isOpen && cur.state != format.Locked {
			return nil, fmt.Errorf("%w: patch %d still in %s since %v (scan ceiling %v)",
				errs.ErrEventNotClosed, id, cur.state, cur.start, end)
		}
	}

	l.logger.Debug().
		Float64("start", start).
		Int("patches", len(ids)).
		Int("intervals", result.Count()).
		Int64("scanned", scanned).
		Msg("assembled event")

	return result, nil
}
