// Package bytering buffers bytes between exactly one producer goroutine
// and one consumer goroutine without locks. Neither side ever blocks in
// here: Try* calls move what fits and report the count, and the caller
// decides what to do with a shortfall. The Readable/Writable channels fire
// once per empty->non-empty (resp. full->non-full) transition, so a waiter
// must drain before sleeping on them again.
package bytering

import "sync/atomic"

type Ring struct {
	buf  []byte
	mask uint32

	// Free-running cursors; the difference is the queue depth. Only rd is
	// written by the consumer, only wr by the producer.
	rd atomic.Uint32
	wr atomic.Uint32

	readable chan struct{}
	writable chan struct{}
}

// New allocates a ring of size bytes. size must be a power of two >= 2 so
// the cursors can wrap through the mask.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("bytering: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

// Space reports free bytes from the producer's view.
func (r *Ring) Space() int {
	return len(r.buf) - int(r.wr.Load()-r.rd.Load())
}

// Available reports queued bytes from the consumer's view.
func (r *Ring) Available() int {
	return int(r.wr.Load() - r.rd.Load())
}

// TryWriteFrom copies as much of src as fits and returns the count.
// Producer side only.
func (r *Ring) TryWriteFrom(src []byte) (n int) {
	wr := r.wr.Load()
	queued := int(wr - r.rd.Load())
	free := len(r.buf) - queued
	if free == 0 || len(src) == 0 {
		return 0
	}
	n = free
	if len(src) < n {
		n = len(src)
	}

	// One or two copies depending on where the write cursor sits.
	at := wr & r.mask
	m := copy(r.buf[at:], src[:n])
	copy(r.buf, src[m:n])
	r.wr.Store(wr + uint32(n))

	if queued == 0 {
		wake(r.readable)
	}
	return n
}

// TryReadInto copies up to len(dst) queued bytes and returns the count.
// Consumer side only.
func (r *Ring) TryReadInto(dst []byte) (n int) {
	rd := r.rd.Load()
	queued := int(r.wr.Load() - rd)
	if queued == 0 || len(dst) == 0 {
		return 0
	}
	n = queued
	if len(dst) < n {
		n = len(dst)
	}

	at := rd & r.mask
	m := copy(dst[:n], r.buf[at:])
	copy(dst[m:n], r.buf)
	r.rd.Store(rd + uint32(n))

	if queued == len(r.buf) {
		wake(r.writable)
	}
	return n
}

// Readable fires when the ring goes from empty to non-empty.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Writable fires when the ring goes from full to non-full.
func (r *Ring) Writable() <-chan struct{} { return r.writable }

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
