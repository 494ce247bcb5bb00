// Package pool provides reusable byte buffers for the raw reads behind the
// transition log window and for encoding point-source text.
package pool

import "sync"

const (
	// WindowBufferDefaultSize is the capacity of a freshly allocated buffer.
	WindowBufferDefaultSize = 64 * 1024 // 64KiB
	// WindowBufferMaxThreshold caps the capacity of buffers kept in the pool.
	WindowBufferMaxThreshold = 16 * 1024 * 1024 // 16MiB

	TextBufferDefaultSize  = 256 * 1024       // 256KiB
	TextBufferMaxThreshold = 64 * 1024 * 1024 // 64MiB
)

// ByteBuffer is a growable byte slice that can be recycled through a pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates an empty buffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the buffer contents.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes in use.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Resize sets the length to n, reallocating when the capacity is too small.
// The contents are unspecified after a reallocation, which suits buffers
// that are about to be filled by ReadAt.
func (bb *ByteBuffer) Resize(n int) []byte {
	if n < 0 {
		panic("pool: negative buffer size")
	}

	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	}
	bb.B = bb.B[:n]

	return bb.B
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool recycles ByteBuffers. Buffers grown past maxThreshold are
// dropped on Put instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose new buffers start at defaultSize.
// A maxThreshold of zero disables the size cap.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns a buffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var windowPool = NewByteBufferPool(WindowBufferDefaultSize, WindowBufferMaxThreshold)

// GetWindowBuffer retrieves a buffer from the shared window pool.
func GetWindowBuffer() *ByteBuffer {
	return windowPool.Get()
}

// PutWindowBuffer returns a buffer to the shared window pool.
func PutWindowBuffer(bb *ByteBuffer) {
	windowPool.Put(bb)
}

var textPool = NewByteBufferPool(TextBufferDefaultSize, TextBufferMaxThreshold)

// GetTextBuffer retrieves a buffer for encoding a point-source file.
func GetTextBuffer() *ByteBuffer {
	return textPool.Get()
}

// PutTextBuffer returns a buffer to the text pool.
func PutTextBuffer(bb *ByteBuffer) {
	textPool.Put(bb)
}
