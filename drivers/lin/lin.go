// Package lin implements a LIN-bus frame receiver that decodes the serial
// line by direct bit sampling, for targets without a spare UART.
//
// Design notes:
// • One periodic callback (Tick) per bit period does all decoding; it never
//   blocks and never reenters. The tick period must exceed Tick's worst-case
//   run time; the platform layer guarantees that, this package assumes it.
// • Completed frames move through a preallocated 8-slot ring into a single
//   hand-off slot drained by the consumer. The ring is tick-side only; the
//   hand-off slot is the sole producer/consumer surface.
// • Frame content (sync, ID, checksum) is not validated here. The consumer
//   gets raw bytes.
//
// Sampling contract: line high = idle/recessive, low = active/dominant.
package lin

// MaxFrameBytes is 1 sync + 1 ID + up to 8 data + 1 checksum.
const MaxFrameBytes = 11

// QueueSlots is the capacity of the completed-frame ring.
const QueueSlots = 8

// Frame is one received LIN frame. Bytes are unvalidated: sync, ID, data
// and checksum exactly as seen on the wire.
type Frame struct {
	// NumBytes is the count of valid bytes at the start of Bytes.
	NumBytes uint8
	Bytes    [MaxFrameBytes]byte
}

// Line samples the current logical level of the LIN RX line.
type Line interface {
	// High reports the instantaneous line level (true = idle/recessive).
	High() bool
}

// BitClock is the timing collaborator behind the periodic tick source.
//
// HardwareTicks is a free-running counter used for bounded waits; only
// differences are meaningful and they must be wraparound-safe. ResetBit
// restarts the current bit period, postponing the next periodic callback by
// one full bit. ArmMidBit retimes the next callback to the middle of the
// next bit, so that data bits are sampled away from their edges.
type BitClock interface {
	HardwareTicks() uint16
	ResetBit()
	ArmMidBit()
}

// Indicators are write-only debug outputs. They feed nothing back into
// decoding and may be left nil in Config.
type Indicators interface {
	TickActive(on bool) // high while Tick runs
	BreakActive(on bool)
	BitSample() // short pulse when a bit is sampled
	FaultPulse()
}

type nopIndicators struct{}

func (nopIndicators) TickActive(bool)  {}
func (nopIndicators) BreakActive(bool) {}
func (nopIndicators) BitSample()       {}
func (nopIndicators) FaultPulse()      {}

// Config carries the timing constants for one receiver instance.
//
// All values derive from the configured bit rate. The zero value of any
// field selects its default.
type Config struct {
	// ClockTicksPerBit is the number of HardwareTicks in one bit period.
	// Default 26 (9600 baud with the reference 4 µs hardware tick).
	ClockTicksPerBit uint16

	// BreakThresholdBits is the number of consecutive low samples, at bit
	// cadence, that counts as a break. Default 10.
	BreakThresholdBits uint8

	// PostBreakTimeoutTicks bounds the wait for line release after a break
	// and for the first start bit. Default 10*ClockTicksPerBit.
	PostBreakTimeoutTicks uint16

	// InterByteTimeoutBits bounds the wait for the next start bit after a
	// stop bit, in bit periods. No transition within it ends the frame.
	// Default 4.
	InterByteTimeoutBits uint8

	// MinFrameBytes is the smallest accepted frame. Shorter frames are
	// dropped with FaultFrameTooShort. Default 4 (sync, ID, data, checksum).
	MinFrameBytes uint8

	// Debug indicators; nil means none.
	Debug Indicators
}

func (c *Config) applyDefaults() {
	if c.ClockTicksPerBit == 0 {
		c.ClockTicksPerBit = 26
	}
	if c.BreakThresholdBits == 0 {
		c.BreakThresholdBits = 10
	}
	if c.PostBreakTimeoutTicks == 0 {
		c.PostBreakTimeoutTicks = 10 * c.ClockTicksPerBit
	}
	if c.InterByteTimeoutBits == 0 {
		c.InterByteTimeoutBits = 4
	}
	if c.MinFrameBytes == 0 {
		c.MinFrameBytes = 4
	}
	if c.Debug == nil {
		c.Debug = nopIndicators{}
	}
}
