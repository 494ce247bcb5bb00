// Package translog reads simulator state-transition logs.
//
// A log is a headerless file of 13-byte records (see package record) sorted by
// time. Files routinely hold hundreds of millions of records, so nothing here
// loads a log into memory. Instead a Log keeps:
//
//   - the byte order, detected once at open time by sampling patch ids
//   - a sparse TimeIndex of at most DefaultIndexSize markers
//   - a single decoded window of consecutive records, replaced on every miss
//
// # Basic Usage
//
//	log, err := translog.Open("trans.out",
//	    translog.WithPatchCount(geometry.ElementCount()),
//	    translog.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	for tr, err := range log.Range(t0, t1) {
//	    ...
//	}
//
//	intervals, err := log.TransitionsForEvent(event)
//
// # Thread Safety
//
// A Log is not safe for concurrent use. Every read may replace the window,
// so callers sharing a Log across goroutines must serialize access. The
// TimeIndex is immutable and may be shared freely.
package translog
