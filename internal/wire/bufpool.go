package wire

import "sync"

// BufPool is a pool of reusable []byte scratch buffers, grounded on the
// teacher's internal/login/bufpool.go BytePool. Every connection goroutine
// borrows its read/send scratch from one of these pools instead of
// allocating fresh buffers per packet.
type BufPool struct {
	pool sync.Pool
}

// NewBufPool creates a pool whose buffers default to defaultCap capacity.
func NewBufPool(defaultCap int) *BufPool {
	p := &BufPool{}
	p.pool.New = func() any {
		b := make([]byte, defaultCap)
		return &b
	}
	return p
}

// Get returns a buffer of at least size bytes, reused from the pool when
// possible.
func (p *BufPool) Get(size int) []byte {
	b := *p.pool.Get().(*[]byte)
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:size]
}

// Put returns b to the pool for reuse. Callers must not touch b afterward.
func (p *BufPool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(&b)
}
