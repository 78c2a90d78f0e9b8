// Package pool provides reusable byte-slice buffers for the hot
// accumulation loops in the entity stream and SGML reader (text runs,
// CDATA payloads, scanned tokens).
package pool

import "sync"

const minByteSliceCap = 64

// ByteSlicePool hands out zero-length, pre-capacity byte slices and
// resets them to zero length on return so callers never observe stale
// bytes from a previous borrower.
type ByteSlicePool struct {
	pool sync.Pool
}

var byteSlicePool = &ByteSlicePool{
	pool: sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, minByteSliceCap)
			return &b
		},
	},
}

// ByteSlice returns the package-wide byte slice pool.
func ByteSlice() *ByteSlicePool {
	return byteSlicePool
}

func (p *ByteSlicePool) Get() []byte {
	b := p.pool.Get().(*[]byte)
	return (*b)[:0]
}

// GetCapacity returns a zero-length slice with at least the
// requested capacity, growing a pooled slice that came back too
// small rather than handing out one the caller would immediately
// have to reallocate.
func (p *ByteSlicePool) GetCapacity(capacity int) []byte {
	b := p.Get()
	if cap(b) < capacity {
		b = make([]byte, 0, capacity)
	}
	return b
}

func (p *ByteSlicePool) Put(b []byte) {
	b = b[:0]
	p.pool.Put(&b)
}
