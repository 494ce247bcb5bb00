package translog

import (
	"fmt"
	"io"
	"sort"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/record"
)

// Marker is a checkpoint in the time index: the record at Index has time Time.
type Marker struct {
	Time  float64
	Index int64
}

// TimeIndex is a sparse, immutable index of record times.
//
// Markers are evenly spaced: marker i points at record i*BucketWidth().
// Both fields are non-decreasing across markers.
type TimeIndex struct {
	markers []Marker
	width   int64
}

// BuildTimeIndex reads one record per bucket and returns the resulting index.
//
// The count records are split into K = min(size, count) buckets of
// count/K records each. A marker time lower than its predecessor means the
// log is not time-sorted and fails with errs.ErrNonMonotonicIndex.
//
// Parameters:
//   - r: source of the raw records
//   - count: number of complete records in r
//   - engine: byte order of the log
//   - size: maximum number of markers
//
// Returns:
//   - *TimeIndex: the index, empty when count is zero
//   - error: read or monotonicity errors
func BuildTimeIndex(r io.ReaderAt, count int64, engine endian.EndianEngine, size int) (*TimeIndex, error) {
	if size <= 0 {
		return nil, fmt.Errorf("index size must be positive, got %d", size)
	}

	k := min(int64(size), count)
	if k == 0 {
		return &TimeIndex{width: 0}, nil
	}

	width := count / k
	markers := make([]Marker, k)

	var buf [8]byte
	for i := range k {
		idx := i * width
		if err := readFull(r, buf[:], idx*record.Size); err != nil {
			return nil, fmt.Errorf("read time marker %d: %w", i, err)
		}

		markers[i] = Marker{Time: record.TimeAt(buf[:], engine), Index: idx}
		if i > 0 && markers[i].Time < markers[i-1].Time {
			return nil, fmt.Errorf("%w: marker %d at record %d has time %v, previous %v",
				errs.ErrNonMonotonicIndex, i, idx, markers[i].Time, markers[i-1].Time)
		}
	}

	return &TimeIndex{markers: markers, width: width}, nil
}

// newTimeIndex validates and wraps markers loaded from elsewhere.
func newTimeIndex(markers []Marker, width int64) (*TimeIndex, error) {
	for i := 1; i < len(markers); i++ {
		if markers[i].Time < markers[i-1].Time || markers[i].Index < markers[i-1].Index {
			return nil, fmt.Errorf("%w: marker %d", errs.ErrNonMonotonicIndex, i)
		}
	}

	return &TimeIndex{markers: markers, width: width}, nil
}

// Len returns the number of markers.
func (ti *TimeIndex) Len() int {
	return len(ti.markers)
}

// BucketWidth returns the number of records between consecutive markers.
func (ti *TimeIndex) BucketWidth() int64 {
	return ti.width
}

// Marker returns the i-th marker.
func (ti *TimeIndex) Marker(i int) Marker {
	return ti.markers[i]
}

// Markers returns a copy of all markers.
func (ti *TimeIndex) Markers() []Marker {
	out := make([]Marker, len(ti.markers))
	copy(out, ti.markers)

	return out
}

// IndexBefore returns the record index of the greatest marker whose time is
// at most t, or 0 when t precedes every marker.
func (ti *TimeIndex) IndexBefore(t float64) int64 {
	idx := sort.Search(len(ti.markers), func(k int) bool {
		return ti.markers[k].Time > t
	})
	if idx == 0 {
		return 0
	}

	return ti.markers[idx-1].Index
}

// ScanStart returns the record index of the greatest marker whose time is
// strictly below t, or 0 when there is none.
//
// Scans for records at time t start here rather than at IndexBefore(t):
// when several records share time t across a bucket boundary, the marker
// at time t may sit after the first of them.
func (ti *TimeIndex) ScanStart(t float64) int64 {
	idx := sort.Search(len(ti.markers), func(k int) bool {
		return ti.markers[k].Time >= t
	})
	if idx == 0 {
		return 0
	}

	return ti.markers[idx-1].Index
}
