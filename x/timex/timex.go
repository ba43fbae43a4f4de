package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// BitPeriod returns the duration of one bit at the given baud rate.
// baud==0 is coerced to 9600.
func BitPeriod(baud uint32) time.Duration {
	if baud == 0 {
		baud = 9600
	}
	return time.Duration(uint64(time.Second) / uint64(baud))
}

// TicksPerBit returns how many hardware clock ticks fit in one bit period.
// Truncates like the reference hardware did; the half-tick error is well
// inside the sampling margin.
func TicksPerBit(clockHz, baud uint32) uint16 {
	if baud == 0 {
		baud = 9600
	}
	if clockHz == 0 {
		return 0
	}
	return uint16(clockHz / baud)
}
