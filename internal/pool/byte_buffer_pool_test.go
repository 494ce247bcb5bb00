package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferResize(t *testing.T) {
	bb := NewByteBuffer(4)
	require.Equal(t, 0, bb.Len())

	b := bb.Resize(3)
	require.Len(t, b, 3)
	require.Equal(t, 4, cap(bb.B))

	b = bb.Resize(10)
	require.Len(t, b, 10)
	require.GreaterOrEqual(t, cap(bb.B), 10)

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 10)

	require.Panics(t, func() { bb.Resize(-1) })
}

func TestByteBufferWrite(t *testing.T) {
	bb := NewByteBuffer(0)
	n, err := bb.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("abc"), bb.Bytes())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(8, 32)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 8)

	bb.Resize(16)
	p.Put(bb)

	bb = p.Get()
	require.Equal(t, 0, bb.Len(), "pooled buffers come back empty")

	// Oversized buffers are dropped, Put must not panic.
	big := NewByteBuffer(64)
	p.Put(big)
	p.Put(nil)
}

func TestWindowBuffer(t *testing.T) {
	bb := GetWindowBuffer()
	require.NotNil(t, bb)
	bb.Resize(13 * 100)
	PutWindowBuffer(bb)
}

func TestTextBuffer(t *testing.T) {
	bb := GetTextBuffer()
	require.NotNil(t, bb)

	_, err := bb.Write([]byte("2.0\nPOINTS 0\n"))
	require.NoError(t, err)
	require.Equal(t, 13, bb.Len())
	PutTextBuffer(bb)
}
