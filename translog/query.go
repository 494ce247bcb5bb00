package translog

import (
	"fmt"
	"iter"

	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/record"
)

// Range streams every transition with t0 <= time <= t1 in file order.
//
// The scan starts at the index marker before t0 and ends at the first record
// later than t1. Iteration stops after the first error is yielded.
func (l *Log) Range(t0, t1 float64) iter.Seq2[record.Transition, error] {
	return func(yield func(record.Transition, error) bool) {
		if t1 < t0 {
			return
		}

		for i := l.index.ScanStart(t0); i < l.count; i++ {
			tr, err := l.Transition(i)
			if err != nil {
				yield(record.Transition{}, err)
				return
			}

			if tr.Time < t0 {
				continue
			}
			if tr.Time > t1 {
				return
			}

			if !yield(tr, nil) {
				return
			}
		}
	}
}

// TransitionsInRange returns every transition with t0 <= time <= t1.
// The results carry no end times; use TransitionsForEvent for closed intervals.
func (l *Log) TransitionsInRange(t0, t1 float64) ([]record.Transition, error) {
	var out []record.Transition
	for tr, err := range l.Range(t0, t1) {
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}

	return out, nil
}

// FirstTime returns the time of the first record.
func (l *Log) FirstTime() (float64, error) {
	if l.count == 0 {
		return 0, fmt.Errorf("first time: %w", errs.ErrNotEnoughRecords)
	}

	tr, err := l.Transition(0)
	if err != nil {
		return 0, err
	}

	return tr.Time, nil
}

// LastTime returns the time of the last record.
func (l *Log) LastTime() (float64, error) {
	if l.count == 0 {
		return 0, fmt.Errorf("last time: %w", errs.ErrNotEnoughRecords)
	}

	tr, err := l.Transition(l.count - 1)
	if err != nil {
		return 0, err
	}

	return tr.Time, nil
}
