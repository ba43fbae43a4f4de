// services/report/report.go
package report

import (
	"context"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"linbus-go/bus"
	"linbus-go/types"
	"linbus-go/x/bytering"
)

// Reporter forwards received LIN frames and error events over a UART link
// as text report lines (see types wire format), for a host-side monitor.
//
// Bus messages are encoded into an SPSC byte ring; a writer goroutine
// drains the ring to the port. A slow or stuck port never backpressures
// the bus: whole lines are dropped and counted instead.
type Reporter struct {
	port drivers.UART
	ring *bytering.Ring
	poll time.Duration

	scratch []byte
	drops   atomic.Uint32
}

type Config struct {
	RingSize int           // power of two; default 1024
	Poll     time.Duration // writer fallback poll; default 10ms
}

func New(port drivers.UART, cfg Config) *Reporter {
	if cfg.RingSize < 2 {
		cfg.RingSize = 1024
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 10 * time.Millisecond
	}
	return &Reporter{
		port: port,
		ring: bytering.New(cfg.RingSize),
		poll: cfg.Poll,
	}
}

// Drops reports how many whole lines were discarded because the ring was
// full.
func (r *Reporter) Drops() uint32 { return r.drops.Load() }

// Run subscribes to the LIN event topics and forwards them until ctx is
// cancelled.
func (r *Reporter) Run(ctx context.Context, conn *bus.Connection) {
	frameSub := conn.Subscribe(bus.Topic{"lin", "frame"})
	errSub := conn.Subscribe(bus.Topic{"lin", "error"})
	defer conn.Unsubscribe(frameSub)
	defer conn.Unsubscribe(errSub)

	go r.writer(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-frameSub.Channel():
			if !ok {
				return
			}
			if ev, ok := msg.Payload.(*types.FrameEvent); ok {
				r.scratch = types.AppendFrameLine(r.scratch[:0], ev.Bytes)
				r.stage(r.scratch)
			}
		case msg, ok := <-errSub.Channel():
			if !ok {
				return
			}
			if ev, ok := msg.Payload.(*types.ErrorEvent); ok {
				r.scratch = r.scratch[:0]
				for _, c := range ev.Codes {
					r.scratch = types.AppendErrorLine(r.scratch, c)
				}
				r.stage(r.scratch)
			}
		}
	}
}

// stage queues one encoded line, all or nothing, so the link never carries
// a torn line.
func (r *Reporter) stage(line []byte) {
	if r.ring.Space() < len(line) {
		r.drops.Add(1)
		return
	}
	r.ring.TryWriteFrom(line)
}

// writer drains the ring to the port. The poll ticker backs up the
// edge-triggered wakeup so a lost edge can never stall the link.
func (r *Reporter) writer(ctx context.Context) {
	buf := make([]byte, 64)
	tick := time.NewTicker(r.poll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.ring.Readable():
		case <-tick.C:
		}
		for {
			n := r.ring.TryReadInto(buf)
			if n == 0 {
				break
			}
			// Port errors are not recoverable here; keep draining so the
			// ring cannot fill behind a dead port.
			_, _ = r.port.Write(buf[:n])
		}
	}
}
