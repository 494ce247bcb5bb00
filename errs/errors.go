// Package errs defines the sentinel errors returned by slipstate.
//
// Errors are wrapped with context using fmt.Errorf and %w, so callers should
// match them with errors.Is rather than comparing directly.
package errs

import "errors"

// Byte order detection errors.
var (
	ErrAmbiguousByteOrder    = errors.New("byte order is ambiguous: both orders yield valid patch ids")
	ErrUndetectableByteOrder = errors.New("byte order is undetectable: neither order yields valid patch ids")
	ErrNotEnoughRecords      = errors.New("not enough records to detect byte order")
	ErrPatchCountRequired    = errors.New("patch count is required to detect byte order")
)

// Log layout and decode errors.
var (
	ErrUnknownState      = errors.New("unknown state code")
	ErrInvalidRecordSize = errors.New("invalid transition record size")
	ErrTruncatedRecord   = errors.New("truncated transition record")
	ErrIndexOutOfRange   = errors.New("record index out of range")
	ErrOutOfOrder        = errors.New("transitions are out of time order")
	ErrNonMonotonicIndex = errors.New("time index markers are not monotonic")
	ErrInvalidIndexCache = errors.New("invalid time index cache")
)

// Event assembly and slip function errors.
var (
	ErrEventNotClosed = errors.New("event did not return to locked state within the maximum event duration")
	ErrNoSlip         = errors.New("patch has no slip")
	ErrUnknownPatch   = errors.New("unknown patch")
	ErrSlipMismatch   = errors.New("total slip differs from expected value")
)

// Point-source format errors.
var (
	ErrInvalidVersion     = errors.New("invalid point-source format version")
	ErrPointCountMismatch = errors.New("point count does not match declared count")
	ErrMalformedPoint     = errors.New("malformed point-source record")
	ErrInvalidTimestep    = errors.New("timestep must be positive and finite")
	ErrInvalidMode        = errors.New("invalid velocity derivation mode")
	ErrInvalidCompression = errors.New("invalid compression type")
)
