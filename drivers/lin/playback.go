package lin

// Playback is a deterministic Line + BitClock for feeding a Receiver from a
// recorded line-level timeline instead of hardware. One timeline entry is
// one hardware tick; each HardwareTicks read costs one tick, which models
// the polling cost of the bounded waits. Past the end of the timeline the
// line idles high.
//
// Used by the package tests and by the host replay tool.
type Playback struct {
	ticksPerBit int
	levels      []bool
	pos         int
	next        int
}

// NewPlayback builds an empty timeline. ticksPerBit should match the
// Config.ClockTicksPerBit of the receiver under playback.
func NewPlayback(ticksPerBit uint16) *Playback {
	if ticksPerBit == 0 {
		ticksPerBit = 16
	}
	return &Playback{ticksPerBit: int(ticksPerBit)}
}

// AddBits appends n bit periods at the given level.
func (p *Playback) AddBits(level bool, n int) {
	for i := 0; i < n*p.ticksPerBit; i++ {
		p.levels = append(p.levels, level)
	}
}

// AddByte appends one serial byte: start bit, 8 data bits LSB first, stop bit.
func (p *Playback) AddByte(b byte) {
	p.AddBits(false, 1)
	for i := 0; i < 8; i++ {
		p.AddBits(b&(1<<i) != 0, 1)
	}
	p.AddBits(true, 1)
}

// AddBreak appends a break of the given length followed by one release bit.
func (p *Playback) AddBreak(lowBits int) {
	p.AddBits(false, lowBits)
	p.AddBits(true, 1)
}

// AddFrame appends a break, the given bytes back to back, and enough idle
// for the inter-byte timeout to end the frame.
func (p *Playback) AddFrame(bytes ...byte) {
	p.AddBreak(13)
	p.AddBits(true, 1)
	for _, b := range bytes {
		p.AddByte(b)
	}
	p.AddBits(true, 8)
}

// ---------------- Line + BitClock ----------------

func (p *Playback) High() bool {
	if p.pos >= len(p.levels) {
		return true
	}
	return p.levels[p.pos]
}

func (p *Playback) HardwareTicks() uint16 {
	t := uint16(p.pos)
	p.pos++
	return t
}

func (p *Playback) ResetBit()  { p.next = p.pos + p.ticksPerBit }
func (p *Playback) ArmMidBit() { p.next = p.pos + p.ticksPerBit/2 }

// ---------------- Driving ----------------

// Step advances to the next scheduled tick and runs it, honoring any
// ResetBit/ArmMidBit retiming the receiver did during the previous tick.
func (p *Playback) Step(r *Receiver) {
	p.pos = p.next
	p.next = p.pos + p.ticksPerBit
	r.Tick()
}

// Exhausted reports whether the timeline has been consumed.
func (p *Playback) Exhausted() bool { return p.pos >= len(p.levels) }

// Run steps the receiver through the whole timeline, plus a few idle bits
// so a trailing inter-byte timeout can expire.
func (p *Playback) Run(r *Receiver) {
	end := len(p.levels) + 8*p.ticksPerBit
	for p.pos < end {
		p.Step(r)
	}
}
