package animation

import "sync"

// FramePool recycles position buffers between frames.
type FramePool struct {
	pool sync.Pool
}

func NewFramePool() *FramePool {
	return &FramePool{
		pool: sync.Pool{
			New: func() interface{} {
				return new([]float64)
			},
		},
	}
}

// Frame evaluates a at t into a pooled buffer. Release the buffer with
// Put once drawn.
func (p *FramePool) Frame(a *Animation, t float64) *[]float64 {
	buf := p.pool.Get().(*[]float64)
	*buf = a.AtInto(*buf, t)
	return buf
}

func (p *FramePool) Put(buf *[]float64) {
	*buf = (*buf)[:0]
	p.pool.Put(buf)
}
