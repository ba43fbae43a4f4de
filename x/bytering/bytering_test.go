package bytering

import "testing"

func TestOrderAcrossWrapWithPartialProgress(t *testing.T) {
	r := New(64)

	// Produce a known sequence [0..N) in small uneven steps, forcing
	// frequent wraps and partial first-span progress.
	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	p := src
	dst := make([]byte, N)
	off := 0

	for off < N {
		// producer step: offer up to 7 bytes
		if len(p) > 0 {
			step := 7
			if step > len(p) {
				step = len(p)
			}
			step = r.TryWriteFrom(p[:step])
			p = p[step:]
		}

		// consumer step: accept up to 17 bytes
		var tmp [17]byte
		n := r.TryReadInto(tmp[:])
		if n > 0 {
			copy(dst[off:], tmp[:n])
			off += n
		}
	}

	for i := 0; i < N; i++ {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got=%d want=%d", i, dst[i], src[i])
		}
	}
}

func TestFullRingRejectsWrites(t *testing.T) {
	r := New(8)
	if n := r.TryWriteFrom(make([]byte, 16)); n != 8 {
		t.Fatalf("wrote %d into empty ring of 8, want 8", n)
	}
	if n := r.TryWriteFrom([]byte{1}); n != 0 {
		t.Fatalf("full ring accepted %d bytes", n)
	}
	if r.Space() != 0 || r.Available() != 8 {
		t.Fatalf("space=%d avail=%d", r.Space(), r.Available())
	}
}

func TestReadableEdgeCoalesces(t *testing.T) {
	r := New(8)
	select {
	case <-r.Readable():
		t.Fatal("unexpected Readable on empty ring")
	default:
	}
	r.TryWriteFrom([]byte{1, 2, 3})
	select {
	case <-r.Readable(): // fires once on the empty -> non-empty edge
	default:
		t.Fatal("expected Readable")
	}
	select {
	case <-r.Readable(): // coalesced; no second token
		t.Fatal("unexpected extra Readable")
	default:
	}
}

func TestWritableEdgeAfterFull(t *testing.T) {
	r := New(8)
	r.TryWriteFrom(make([]byte, 8)) // full
	r.TryReadInto(make([]byte, 3))
	select {
	case <-r.Writable():
	default:
		t.Fatal("expected Writable after draining a full ring")
	}
}
