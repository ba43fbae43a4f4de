package sampler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPacesTicks(t *testing.T) {
	s := New(10*time.Millisecond, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func() { ticks.Add(1) })
	}()

	time.Sleep(105 * time.Millisecond)
	cancel()
	<-done

	// ~10 ticks expected; wide bounds for loaded CI hosts.
	n := ticks.Load()
	if n < 5 || n > 20 {
		t.Fatalf("got %d ticks in 105ms at 10ms/bit", n)
	}
}

func TestArmMidBitPullsNextTickCloser(t *testing.T) {
	s := New(20*time.Millisecond, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stamps []time.Time
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func() {
			stamps = append(stamps, time.Now())
			if len(stamps) == 1 {
				s.ArmMidBit()
			}
			if len(stamps) >= 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		cancel()
		<-done
	}

	if len(stamps) < 3 {
		t.Fatalf("got %d ticks, want 3", len(stamps))
	}
	half := stamps[1].Sub(stamps[0])
	full := stamps[2].Sub(stamps[1])
	// The armed gap should be clearly shorter than the free-running one.
	if half >= full {
		t.Fatalf("mid-bit gap %v not shorter than full gap %v", half, full)
	}
}

func TestHardwareTicksAdvance(t *testing.T) {
	s := New(10*time.Millisecond, 10) // 1ms hardware tick
	s.start = time.Now()
	a := s.HardwareTicks()
	time.Sleep(20 * time.Millisecond)
	b := s.HardwareTicks()
	if d := b - a; d < 10 || d > 200 {
		t.Fatalf("elapsed %d hardware ticks over 20ms at 1ms/tick", d)
	}
}
