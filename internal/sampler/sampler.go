// internal/sampler/sampler.go
package sampler

import (
	"context"
	"runtime"
	"time"
)

// Sampler is the periodic tick source for live reception: a goroutine that
// invokes the receiver step once per bit period, scheduled off the
// monotonic clock. It implements lin.BitClock so the receiver can postpone
// the next invocation (ResetBit) or pull it to the middle of the next bit
// (ArmMidBit).
//
// All methods run on the Run goroutine; the Sampler must not be shared.
// The tick callback must finish well inside one bit period, which the
// receiver guarantees through its bounded waits.
type Sampler struct {
	bit    time.Duration
	hwTick time.Duration
	start  time.Time
	next   time.Time
}

// New builds a sampler for the given bit period. ticksPerBit sets the
// resolution of HardwareTicks and should match the receiver's
// Config.ClockTicksPerBit.
func New(bit time.Duration, ticksPerBit uint16) *Sampler {
	if bit <= 0 {
		bit = 104 * time.Microsecond // 9600 baud
	}
	if ticksPerBit == 0 {
		ticksPerBit = 26
	}
	hw := bit / time.Duration(ticksPerBit)
	if hw <= 0 {
		hw = time.Microsecond
	}
	return &Sampler{bit: bit, hwTick: hw}
}

// HardwareTicks returns elapsed hardware ticks since Run started, wrapping
// mod 2^16. Only differences are meaningful.
func (s *Sampler) HardwareTicks() uint16 {
	return uint16(time.Since(s.start) / s.hwTick)
}

// ResetBit restarts the current bit period.
func (s *Sampler) ResetBit() { s.next = time.Now().Add(s.bit) }

// ArmMidBit schedules the next tick at the middle of the next bit.
func (s *Sampler) ArmMidBit() { s.next = time.Now().Add(s.bit / 2) }

// Run invokes tick once per bit period until ctx is cancelled. The cadence
// free-runs from tick to tick; any ResetBit/ArmMidBit the callback issues
// overrides the next slot.
func (s *Sampler) Run(ctx context.Context, tick func()) {
	s.start = time.Now()
	s.next = s.start.Add(s.bit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		sleepUntil(s.next)
		s.next = s.next.Add(s.bit)
		tick()
	}
}

// sleepUntil sleeps coarsely, then spins the last stretch for accuracy.
const spinBudget = 200 * time.Microsecond

func sleepUntil(t time.Time) {
	for {
		d := time.Until(t)
		if d <= 0 {
			return
		}
		if d > spinBudget {
			time.Sleep(d - spinBudget)
			continue
		}
		runtime.Gosched()
	}
}
