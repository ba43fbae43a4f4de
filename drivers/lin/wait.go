package lin

// The two bounded busy-waits below are the only places Tick spins. Both
// keep resetting the bit period so the next periodic callback fires a full
// bit after the wait ends, and both time out on a hardware-tick budget.
// Differences of HardwareTicks values are wraparound-safe in uint16.

// waitLineLow spins until the line goes low or maxTicks hardware ticks
// pass. Reports whether the edge was seen.
func (r *Receiver) waitLineLow(maxTicks uint16) bool {
	base := r.clk.HardwareTicks()
	for {
		r.clk.ResetBit()
		if !r.line.High() {
			return true
		}
		if r.clk.HardwareTicks()-base >= maxTicks {
			return false
		}
	}
}

// waitLineHigh is waitLineLow with reversed polarity.
func (r *Receiver) waitLineHigh(maxTicks uint16) bool {
	base := r.clk.HardwareTicks()
	for {
		r.clk.ResetBit()
		if r.line.High() {
			return true
		}
		if r.clk.HardwareTicks()-base >= maxTicks {
			return false
		}
	}
}
