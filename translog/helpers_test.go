package translog

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/format"
	"github.com/arloliu/slipstate/record"
	"github.com/stretchr/testify/require"
)

func tr(time float64, patchID int32, state format.State) record.Transition {
	return record.Transition{Time: time, PatchID: patchID, State: state}
}

func encodeLog(engine endian.EndianEngine, transitions []record.Transition) []byte {
	buf := make([]byte, 0, len(transitions)*record.Size)
	for _, t := range transitions {
		buf = t.AppendTo(buf, engine)
	}

	return buf
}

func newMemLog(t testing.TB, transitions []record.Transition, opts ...Option) *Log {
	t.Helper()

	data := encodeLog(endian.GetLittleEndianEngine(), transitions)
	opts = append([]Option{WithByteOrder(endian.GetLittleEndianEngine())}, opts...)
	l, err := NewLog(bytes.NewReader(data), int64(len(data)), opts...)
	require.NoError(t, err)

	return l
}

func writeLogFile(t testing.TB, engine endian.EndianEngine, transitions []record.Transition) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transitions.bin")
	require.NoError(t, os.WriteFile(path, encodeLog(engine, transitions), 0o600))

	return path
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11)) //nolint: gosec
}

// sequentialLog builds n records at times 0, 1, 2, ... cycling over patches 1..patches.
func sequentialLog(n int, patches int32) []record.Transition {
	out := make([]record.Transition, n)
	for i := range out {
		out[i] = tr(float64(i), int32(i)%patches+1, format.State(i%3)) //nolint: gosec
	}

	return out
}
