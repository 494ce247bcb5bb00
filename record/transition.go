package record

import (
	"fmt"
	"math"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/format"
)

const (
	// Size is the on-disk size of one transition record in bytes.
	Size = 13

	timeOffset    = 0
	patchIDOffset = 8
	stateOffset   = 12
)

// Transition is a single decoded record: patch PatchID entered State at Time.
type Transition struct {
	// Time is the simulation time in seconds.
	Time float64
	// PatchID is the 1-based patch identifier.
	PatchID int32
	// State is the state entered at Time.
	State format.State
}

// PatchIDAt decodes only the patch id field of the record starting at data[0].
// It does not validate the rest of the record, which makes it suitable for
// byte order probing.
func PatchIDAt(data []byte, engine endian.EndianEngine) int32 {
	return int32(engine.Uint32(data[patchIDOffset : patchIDOffset+4])) //nolint: gosec
}

// TimeAt decodes only the time field of the record starting at data[0].
func TimeAt(data []byte, engine endian.EndianEngine) float64 {
	return math.Float64frombits(engine.Uint64(data[timeOffset : timeOffset+8]))
}

// Parse decodes a transition from the first Size bytes of data.
//
// Parameters:
//   - data: at least Size bytes
//   - engine: byte order of the log
//
// Returns:
//   - error: errs.ErrInvalidRecordSize when data is short, errs.ErrUnknownState
//     when the state byte is not a known code
func (t *Transition) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < Size {
		return fmt.Errorf("%w: got %d bytes, need %d", errs.ErrInvalidRecordSize, len(data), Size)
	}

	state, err := format.ParseState(data[stateOffset])
	if err != nil {
		return err
	}

	t.Time = TimeAt(data, engine)
	t.PatchID = PatchIDAt(data, engine)
	t.State = state

	return nil
}

// Bytes encodes the transition into a new Size-byte slice.
func (t Transition) Bytes(engine endian.EndianEngine) []byte {
	var b [Size]byte
	t.put(b[:], engine)

	return b[:]
}

// AppendTo appends the encoded transition to buf and returns the extended slice.
func (t Transition) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint64(buf, math.Float64bits(t.Time))
	buf = engine.AppendUint32(buf, uint32(t.PatchID)) //nolint: gosec

	return append(buf, t.State.Code())
}

func (t Transition) put(b []byte, engine endian.EndianEngine) {
	engine.PutUint64(b[timeOffset:timeOffset+8], math.Float64bits(t.Time))
	engine.PutUint32(b[patchIDOffset:patchIDOffset+4], uint32(t.PatchID)) //nolint: gosec
	b[stateOffset] = t.State.Code()
}

func (t Transition) String() string {
	return fmt.Sprintf("%.6f patch=%d %s", t.Time, t.PatchID, t.State)
}
