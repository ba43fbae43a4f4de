package lin

// Fault is a bit set of anomaly kinds. All bits are sticky until the
// consumer calls ClearErrors; every fault also hard-resets the receiver to
// break detection, which is the only recovery action.
type Fault uint8

const (
	FaultStartBit      Fault = 1 << iota // start bit sampled high
	FaultStopBit                         // stop bit sampled low
	FaultFrameTooShort                   // frame ended under MinFrameBytes
	FaultFrameOverflow                   // more than MaxFrameBytes attempted
	FaultQueueOverrun                    // ring full, oldest frame evicted
	FaultBadState                        // receiver state corrupted
)

// Has reports whether k's bits are all set in f.
func (f Fault) Has(k Fault) bool { return f&k == k }

func (f Fault) String() string {
	if f == 0 {
		return "none"
	}
	var s string
	add := func(k Fault, name string) {
		if f&k == 0 {
			return
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	add(FaultStartBit, "start_bit")
	add(FaultStopBit, "stop_bit")
	add(FaultFrameTooShort, "frame_short")
	add(FaultFrameOverflow, "frame_overflow")
	add(FaultQueueOverrun, "queue_overrun")
	add(FaultBadState, "bad_state")
	return s
}
