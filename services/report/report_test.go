package report

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"linbus-go/bus"
	"linbus-go/types"
)

// fake UART port

type fakeUART struct {
	mu  sync.Mutex
	buf []byte
	// when set, Write blocks until the channel closes
	gate chan struct{}
}

var _ drivers.UART = (*fakeUART)(nil)

func (f *fakeUART) Buffered() int              { return 0 }
func (f *fakeUART) Read(b []byte) (int, error) { return 0, nil }
func (f *fakeUART) Write(p []byte) (int, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.buf = append(f.buf, p...)
	f.mu.Unlock()
	return len(p), nil
}

func (f *fakeUART) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.buf)
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestForwardsFrameLines(t *testing.T) {
	b := bus.NewBus(8)
	port := &fakeUART{}
	rep := New(port, Config{Poll: 2 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rep.Run(ctx, b.NewConnection("report"))
	time.Sleep(20 * time.Millisecond) // let subscriptions land

	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.Topic{"lin", "frame"},
		&types.FrameEvent{Bytes: []byte{0x55, 0x3C, 0x01, 0xAA}}, false))

	waitFor(t, 500*time.Millisecond, func() bool {
		return strings.Contains(port.String(), "F 55 3C 01 AA\n")
	})
}

func TestForwardsErrorLines(t *testing.T) {
	b := bus.NewBus(8)
	port := &fakeUART{}
	rep := New(port, Config{Poll: 2 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rep.Run(ctx, b.NewConnection("report"))
	time.Sleep(20 * time.Millisecond)

	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.Topic{"lin", "error"},
		&types.ErrorEvent{Codes: []string{"stop_bit", "queue_overrun"}}, false))

	waitFor(t, 500*time.Millisecond, func() bool {
		s := port.String()
		return strings.Contains(s, "E stop_bit\n") && strings.Contains(s, "E queue_overrun\n")
	})
}

func TestSlowPortDropsWholeLines(t *testing.T) {
	b := bus.NewBus(64)
	gate := make(chan struct{})
	port := &fakeUART{gate: gate}
	rep := New(port, Config{RingSize: 16, Poll: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rep.Run(ctx, b.NewConnection("report"))
	time.Sleep(20 * time.Millisecond)

	pub := b.NewConnection("test")
	for i := 0; i < 10; i++ {
		pub.Publish(pub.NewMessage(bus.Topic{"lin", "frame"},
			&types.FrameEvent{Bytes: []byte{0x55, byte(i), 0x01, 0xAA}}, false))
	}

	waitFor(t, 500*time.Millisecond, func() bool { return rep.Drops() > 0 })
	close(gate)

	// Whatever made it through must be whole lines.
	waitFor(t, 500*time.Millisecond, func() bool {
		s := port.String()
		return len(s) > 0 && strings.HasSuffix(s, "\n")
	})
	for _, line := range strings.Split(strings.TrimSuffix(port.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "F 55 ") {
			t.Fatalf("torn or foreign line %q", line)
		}
	}
}
