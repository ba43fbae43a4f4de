package lin

import "sync/atomic"

// rxState selects which step runs on the next Tick.
type rxState uint8

const (
	stateDetectBreak rxState = iota
	stateReadData
)

// bitPhase names the position inside one serial byte: the start bit, the
// eight LSB-first data bits, then the stop bit.
type bitPhase uint8

const (
	phaseStartBit bitPhase = iota
	phaseDataBit
	phaseStopBit
)

// Receiver holds all receive-side state in one place: the state machine,
// the frame ring and the hand-off slot. Create one with New; there are no
// package-level globals.
//
// Tick and the consumer methods (TryReadFrame, HasErrors, ClearErrors,
// Faults) may run in two different execution contexts. Everything except
// the hand-off slot and the fault word is touched by Tick only.
type Receiver struct {
	line Line
	clk  BitClock
	cfg  Config
	dbg  Indicators

	state rxState

	// Break detection: consecutive low samples at bit cadence.
	lowBits uint8

	// Byte assembly. bitsInByte counts start + data + stop, 0..9.
	bytesRead  uint8
	bitsInByte uint8
	byteAcc    byte
	byteMask   byte

	// Frame ring. Slots are reused storage, never reallocated. Tick-side
	// only; empty iff head == tail.
	slots [QueueSlots]Frame
	head  uint8
	tail  uint8

	// Hand-off slot. Producer fills out then stores ready=true; consumer
	// copies while ready, then stores ready=false.
	ready atomic.Bool
	out   Frame

	faults atomic.Uint32

	// Staged timing override, written by StageTiming from the consumer
	// context and consumed by Tick on an idle line.
	retime atomic.Uint32
}

// New builds a receiver around a line sampler and bit clock. It must return
// before the periodic tick source is armed.
func New(line Line, clk BitClock, cfg Config) *Receiver {
	cfg.applyDefaults()
	r := &Receiver{line: line, clk: clk, cfg: cfg, dbg: cfg.Debug}
	r.enterDetectBreak()
	return r
}

// Tick is the periodic step, called once per bit period by the tick source.
// It runs the current receiver state, then one hand-off attempt. It never
// blocks beyond its two bounded waits and no error escapes it.
func (r *Receiver) Tick() {
	r.dbg.TickActive(true)
	if r.state == stateDetectBreak && r.lowBits == 0 {
		r.applyRetime()
	}
	switch r.state {
	case stateDetectBreak:
		r.stepDetectBreak(r.line.High())
	case stateReadData:
		r.stepReadData(r.line.High())
	default:
		r.setFault(FaultBadState)
		r.enterDetectBreak()
	}
	r.serviceHandoff()
	r.dbg.TickActive(false)
}

// StageTiming stages bit-unit timing overrides from the consumer context.
// A zero field keeps the current value; staging both as zero does nothing.
// The override takes effect on the next tick that finds the line idle,
// never mid-frame.
func (r *Receiver) StageTiming(breakBits, interByteBits uint8) {
	if breakBits == 0 && interByteBits == 0 {
		return
	}
	r.retime.Store(1<<16 | uint32(breakBits)<<8 | uint32(interByteBits))
}

func (r *Receiver) applyRetime() {
	v := r.retime.Swap(0)
	if v == 0 {
		return
	}
	if b := uint8(v >> 8); b != 0 {
		r.cfg.BreakThresholdBits = b
	}
	if ib := uint8(v); ib != 0 {
		r.cfg.InterByteTimeoutBits = ib
	}
}

// ---------------- Break detection ----------------

func (r *Receiver) enterDetectBreak() {
	r.state = stateDetectBreak
	r.lowBits = 0
}

func (r *Receiver) stepDetectBreak(high bool) {
	if high {
		r.lowBits = 0
		return
	}
	r.lowBits++
	if r.lowBits < r.cfg.BreakThresholdBits {
		return
	}

	// Break detected. Wait for the line release, then read data. A release
	// timeout is not handled specially: if the line is still held low, the
	// start-bit check will fault and reset us soon enough.
	r.dbg.BreakActive(true)
	r.waitLineHigh(r.cfg.PostBreakTimeoutTicks)
	r.dbg.BreakActive(false)
	r.enterReadData()
}

// ---------------- Data reading ----------------

func (r *Receiver) enterReadData() {
	r.state = stateReadData
	r.bytesRead = 0
	r.bitsInByte = 0
	r.slots[r.head].NumBytes = 0

	// First start bit: wait for the falling edge, then have the next tick
	// land in the middle of the start bit.
	r.waitLineLow(r.cfg.PostBreakTimeoutTicks)
	r.clk.ArmMidBit()
}

func (r *Receiver) phase() bitPhase {
	switch {
	case r.bitsInByte == 0:
		return phaseStartBit
	case r.bitsInByte <= 8:
		return phaseDataBit
	default:
		return phaseStopBit
	}
}

func (r *Receiver) stepReadData(high bool) {
	r.dbg.BitSample()

	switch r.phase() {
	case phaseStartBit:
		if high {
			r.setFault(FaultStartBit)
			r.enterDetectBreak()
			return
		}
		r.bitsInByte = 1
		r.byteAcc = 0
		r.byteMask = 1 << 0

	case phaseDataBit:
		if high {
			r.byteAcc |= r.byteMask
		}
		r.byteMask <<= 1
		r.bitsInByte++

	case phaseStopBit:
		if !high {
			r.setFault(FaultStopBit)
			r.enterDetectBreak()
			return
		}
		r.finishByte()
	}
}

// finishByte runs after a valid stop bit: append the assembled byte, then
// decide between "more bytes", "frame done" and the two capacity faults.
func (r *Receiver) finishByte() {
	slot := &r.slots[r.head]
	slot.Bytes[slot.NumBytes] = r.byteAcc
	slot.NumBytes++
	r.bytesRead++
	r.bitsInByte = 0

	// Wait for the next start bit's falling edge. No edge within the
	// timeout means the frame is over.
	interByte := uint16(r.cfg.InterByteTimeoutBits) * r.cfg.ClockTicksPerBit
	if !r.waitLineLow(interByte) {
		if r.bytesRead < r.cfg.MinFrameBytes {
			// Too short to be a frame; drop it.
			r.setFault(FaultFrameTooShort)
			r.enterDetectBreak()
			return
		}
		r.enqueue()
		r.enterDetectBreak()
		return
	}

	// Another byte is coming. Refuse it if the slot is already full.
	if slot.NumBytes >= MaxFrameBytes {
		r.setFault(FaultFrameOverflow)
		r.enterDetectBreak()
		return
	}
	r.clk.ArmMidBit()
}

// enqueue accepts the frame in the head slot. On overrun the oldest queued
// frame is evicted so the ring keeps the newest traffic.
func (r *Receiver) enqueue() {
	r.head = (r.head + 1) % QueueSlots
	if r.head == r.tail {
		r.setFault(FaultQueueOverrun)
		r.tail = (r.tail + 1) % QueueSlots
	}
}

// ---------------- Hand-off ----------------

// serviceHandoff runs once per tick: if the hand-off slot is free and the
// ring is non-empty, move the oldest frame over. The producer never waits
// on the consumer.
func (r *Receiver) serviceHandoff() {
	if r.ready.Load() || r.head == r.tail {
		return
	}
	r.out = r.slots[r.tail]
	r.tail = (r.tail + 1) % QueueSlots
	r.ready.Store(true)
}

// TryReadFrame returns the frame in the hand-off slot, if any. Non-blocking;
// safe to call from the consumer context at any rate. Content is raw and
// unvalidated.
func (r *Receiver) TryReadFrame() (Frame, bool) {
	if !r.ready.Load() {
		return Frame{}, false
	}
	f := r.out
	r.ready.Store(false)
	return f, true
}

// ---------------- Faults ----------------

func (r *Receiver) setFault(k Fault) {
	r.dbg.FaultPulse()
	r.faults.Or(uint32(k))
}

// Faults returns the sticky fault set accumulated since the last clear.
func (r *Receiver) Faults() Fault { return Fault(r.faults.Load()) }

// HasErrors reports whether any fault is pending.
func (r *Receiver) HasErrors() bool { return r.faults.Load() != 0 }

// ClearErrors resets the sticky fault set. Consumer side only.
func (r *Receiver) ClearErrors() { r.faults.Store(0) }
