// Package record defines the on-disk transition record and the interval
// shapes assembled from it.
//
// # Transition Layout
//
// A transition log is a flat sequence of fixed-size records with no header
// and no footer. Each record is 13 bytes:
//
//	┌──────────────┬───────────────┬──────────┐
//	│ Time float64 │ PatchID int32 │ State u8 │
//	│   8 bytes    │    4 bytes    │  1 byte  │
//	└──────────────┴───────────────┴──────────┘
//	offset 0        offset 8        offset 12
//
// Every numeric field uses the same byte order, which is not recorded in the
// file. Callers pick it with an endian.EndianEngine. Records are ordered by
// non-decreasing time across the whole file.
//
// # Transitions and Intervals
//
// A Transition is one record: the moment a patch entered a state. It has no
// end time. An Interval is a closed span derived from two consecutive
// transitions of the same patch during one event. The two are kept as
// separate types so a flat range query can never be mistaken for assembled
// event output.
package record
