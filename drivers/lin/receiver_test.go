package lin

import "testing"

const testTicksPerBit = 16

func newTestRx(p *Playback) *Receiver {
	return New(p, p, Config{ClockTicksPerBit: testTicksPerBit})
}

// drain reads frames out of the hand-off slot, ticking the receiver over an
// idle line between reads so the slot keeps refilling from the ring.
func drain(r *Receiver, p *Playback) []Frame {
	var out []Frame
	for i := 0; i < 2*QueueSlots; i++ {
		if f, ok := r.TryReadFrame(); ok {
			out = append(out, f)
		}
		p.Step(r)
	}
	return out
}

func TestNoBreakNoFrame(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddBits(true, 4)
	p.AddBits(false, 9) // one bit short of a break
	p.AddBits(true, 3)
	p.AddByte(0x55) // stray traffic without a preceding break
	p.AddByte(0xA5)
	p.AddBits(true, 6)

	r := newTestRx(p)
	p.Run(r)

	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("frame produced without a break")
	}
	if r.HasErrors() {
		t.Fatalf("unexpected faults: %v", r.Faults())
	}
}

func TestBreakEntersDataReception(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddBits(true, 2)
	p.AddFrame(0x55, 0x3C, 0x01, 0xAA)

	r := newTestRx(p)
	p.Run(r)

	f, ok := r.TryReadFrame()
	if !ok {
		t.Fatal("expected a frame after break")
	}
	if f.NumBytes != 4 {
		t.Fatalf("NumBytes = %d, want 4", f.NumBytes)
	}
	want := []byte{0x55, 0x3C, 0x01, 0xAA}
	for i, b := range want {
		if f.Bytes[i] != b {
			t.Errorf("byte %d = %#02x, want %#02x", i, f.Bytes[i], b)
		}
	}
	if r.HasErrors() {
		t.Fatalf("unexpected faults: %v", r.Faults())
	}
}

// LSB-first: 0xA5 on the wire is start=0, data=1,0,1,0,0,1,0,1, stop=1.
func TestDecodeA5LSBFirst(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddBreak(13)
	p.AddBits(true, 1)
	p.AddByte(0x55)
	// Spell the 0xA5 byte out bit by bit rather than via AddByte.
	p.AddBits(false, 1) // start
	for _, lv := range []bool{true, false, true, false, false, true, false, true} {
		p.AddBits(lv, 1)
	}
	p.AddBits(true, 1) // stop
	p.AddByte(0x12)
	p.AddByte(0x34)
	p.AddBits(true, 8)

	r := newTestRx(p)
	p.Run(r)

	f, ok := r.TryReadFrame()
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Bytes[1] != 0xA5 {
		t.Fatalf("byte 1 = %#02x, want 0xA5", f.Bytes[1])
	}
}

func TestShortFrameDiscarded(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddFrame(0x55, 0x3C, 0x01) // 3 bytes, below minimum

	r := newTestRx(p)
	p.Run(r)

	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("short frame must not surface")
	}
	if !r.Faults().Has(FaultFrameTooShort) {
		t.Fatalf("faults = %v, want frame_short", r.Faults())
	}
}

func TestFrameSurfacesExactlyOnce(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddFrame(0x55, 0x3C, 0x01, 0xAA)

	r := newTestRx(p)
	p.Run(r)

	if _, ok := r.TryReadFrame(); !ok {
		t.Fatal("expected a frame")
	}
	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("second read before a new frame must report none")
	}
}

func TestStartBitViolation(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddBreak(13)
	// Line stays high: the expected start bit never comes, and the bounded
	// post-break wait runs out with the line idle.
	p.AddBits(true, 16)

	r := newTestRx(p)
	p.Run(r)

	if !r.Faults().Has(FaultStartBit) {
		t.Fatalf("faults = %v, want start_bit", r.Faults())
	}
	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("no frame expected")
	}
}

func TestStuckLowLineRecovers(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddBits(false, 40) // break that never releases
	p.AddBits(true, 12)

	r := newTestRx(p)
	p.Run(r)

	if !r.Faults().Has(FaultStopBit) {
		t.Fatalf("faults = %v, want stop_bit", r.Faults())
	}
	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("no frame expected from a stuck line")
	}
	if r.state != stateDetectBreak {
		t.Fatal("receiver must be back in break detection")
	}
}

func TestQueueOverrunEvictsOldest(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	for i := 0; i < 9; i++ {
		p.AddFrame(0x55, byte(i), 0x01, 0x02)
	}

	r := newTestRx(p)
	p.Run(r)

	if !r.Faults().Has(FaultQueueOverrun) {
		t.Fatalf("faults = %v, want queue_overrun", r.Faults())
	}

	frames := drain(r, p)
	// Frame 0 was already staged in the hand-off slot when the 9th frame
	// completed, so the eviction victim is frame 1, the oldest still queued.
	wantTags := []byte{0, 2, 3, 4, 5, 6, 7, 8}
	if len(frames) != len(wantTags) {
		t.Fatalf("drained %d frames, want %d", len(frames), len(wantTags))
	}
	for i, f := range frames {
		if f.Bytes[1] != wantTags[i] {
			t.Errorf("frame %d tag = %d, want %d", i, f.Bytes[1], wantTags[i])
		}
	}
}

func TestClearErrorsThenReobserve(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddFrame(0x55, 0x3C, 0x01) // short, faults

	r := newTestRx(p)
	p.Run(r)
	if !r.HasErrors() {
		t.Fatal("expected a fault")
	}
	r.ClearErrors()
	if r.HasErrors() {
		t.Fatal("faults must clear")
	}

	p2 := NewPlayback(testTicksPerBit)
	p2.AddFrame(0x55, 0x3C, 0x01)
	r.line, r.clk = p2, p2
	p2.Run(r)
	if !r.HasErrors() {
		t.Fatal("new anomaly must be observable after clear")
	}
}

// addShortBreakFrame records a frame whose break is only 8 bits long, below
// the default detection threshold but above a staged override of 6.
func addShortBreakFrame(p *Playback) {
	p.AddBits(true, 2)
	p.AddBits(false, 8)
	p.AddBits(true, 2)
	p.AddByte(0x55)
	p.AddByte(0x3C)
	p.AddByte(0x01)
	p.AddByte(0xAA)
	p.AddBits(true, 8)
}

func TestStageTimingAppliesWhenIdle(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	addShortBreakFrame(p)

	r := newTestRx(p)
	p.Run(r)
	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("8 low bits must not count as a break at the default threshold")
	}

	r.StageTiming(6, 0)

	p2 := NewPlayback(testTicksPerBit)
	addShortBreakFrame(p2)
	r.line, r.clk = p2, p2
	p2.Run(r)

	f, ok := r.TryReadFrame()
	if !ok {
		t.Fatal("expected a frame once the staged threshold applies")
	}
	if f.NumBytes != 4 || f.Bytes[1] != 0x3C {
		t.Fatalf("frame = %v", f.Bytes[:f.NumBytes])
	}
	if r.cfg.BreakThresholdBits != 6 {
		t.Fatalf("BreakThresholdBits = %d, want 6", r.cfg.BreakThresholdBits)
	}
	if r.cfg.InterByteTimeoutBits != 4 {
		t.Fatalf("zero override must keep the default, got %d", r.cfg.InterByteTimeoutBits)
	}
}

func TestFrameOverflowDiscardsPartial(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddFrame(
		0x55, 0x3C, 0x00, 0x01, 0x02, 0x03,
		0x04, 0x05, 0x06, 0x07, 0xAA, 0xFF, // 12th byte exceeds capacity
	)

	r := newTestRx(p)
	p.Run(r)

	if !r.Faults().Has(FaultFrameOverflow) {
		t.Fatalf("faults = %v, want frame_overflow", r.Faults())
	}
	if _, ok := r.TryReadFrame(); ok {
		t.Fatal("overflowing frame must be discarded, not enqueued")
	}
	if r.state != stateDetectBreak {
		t.Fatal("receiver must be back in break detection")
	}
}

func TestBackToBackFrames(t *testing.T) {
	p := NewPlayback(testTicksPerBit)
	p.AddFrame(0x55, 0x10, 0x01, 0x02)
	p.AddFrame(0x55, 0x11, 0x03, 0x04, 0x05)

	r := newTestRx(p)
	p.Run(r)

	frames := drain(r, p)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Bytes[1] != 0x10 || frames[1].Bytes[1] != 0x11 {
		t.Fatalf("frame order wrong: %#02x, %#02x", frames[0].Bytes[1], frames[1].Bytes[1])
	}
	if frames[1].NumBytes != 5 {
		t.Fatalf("second frame NumBytes = %d, want 5", frames[1].NumBytes)
	}
}

func TestFaultString(t *testing.T) {
	cases := []struct {
		f    Fault
		want string
	}{
		{0, "none"},
		{FaultStartBit, "start_bit"},
		{FaultStopBit | FaultQueueOverrun, "stop_bit|queue_overrun"},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.want {
			t.Errorf("Fault(%b).String() = %q, want %q", c.f, got, c.want)
		}
	}
}
