// services/linrx/service.go
package linrx

import (
	"context"
	"time"

	"linbus-go/bus"
	"linbus-go/drivers/lin"
	"linbus-go/errcode"
	"linbus-go/services/linrx/config"
	"linbus-go/types"
	"linbus-go/x/timex"
)

// Topics owned by this service.
var (
	topicConfig = bus.Topic{"config", "linrx"}
	topicFrame  = bus.Topic{"lin", "frame"}
	topicError  = bus.Topic{"lin", "error"}
	topicState  = bus.Topic{"linrx", "state"}
)

// Run is the consumer side of the receiver: it drains the hand-off slot and
// the sticky fault set on a polling interval and republishes both on the
// bus. It blocks until ctx is cancelled.
//
// The receiver's tick source runs elsewhere (see internal/sampler); this
// loop only ever touches the consumer-safe API.
func Run(ctx context.Context, conn *bus.Connection, rx *lin.Receiver) {
	s := &service{
		conn:  conn,
		rx:    rx,
		drain: 5 * time.Millisecond,
	}
	s.loop(ctx)
}

type service struct {
	conn  *bus.Connection
	rx    *lin.Receiver
	drain time.Duration
}

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("running", "")

	tick := time.NewTicker(s.drain)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publishState("idle", "stopped")
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed")
				return
			}
			cfg, err := config.Decode(msg.Payload)
			if err != nil {
				s.publishState("error", string(errcode.InvalidPayload))
				continue
			}
			s.drain = time.Duration(cfg.DrainIntervalMS) * time.Millisecond
			tick.Reset(s.drain)
			s.rx.StageTiming(cfg.BreakThresholdBits, cfg.InterByteTimeoutBits)
			s.publishState("running", "")
		case <-tick.C:
			s.drainFrames()
			s.drainFaults()
		}
	}
}

// drainFrames empties the hand-off slot. At most one frame is staged per
// receiver tick, so the loop is short.
func (s *service) drainFrames() {
	for {
		f, ok := s.rx.TryReadFrame()
		if !ok {
			return
		}
		ev := &types.FrameEvent{
			Bytes: append([]byte(nil), f.Bytes[:f.NumBytes]...),
			TsMs:  timex.NowMs(),
		}
		s.conn.Publish(s.conn.NewMessage(topicFrame, ev, false))
	}
}

// drainFaults reads and clears the sticky fault set, publishing what was
// observed. Clearing is the consumer's job; the receiver never does it.
func (s *service) drainFaults() {
	if !s.rx.HasErrors() {
		return
	}
	faults := s.rx.Faults()
	s.rx.ClearErrors()

	codes := errcode.OfFaults(faults)
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = string(c)
	}
	ev := &types.ErrorEvent{Codes: names, TsMs: timex.NowMs()}
	s.conn.Publish(s.conn.NewMessage(topicError, ev, false))
}

func (s *service) publishState(phase, detail string) {
	st := &types.RxState{Phase: phase, Detail: detail}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}
