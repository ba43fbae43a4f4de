package errcode

import "linbus-go/drivers/lin"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Receive-path anomalies, one per lin.Fault bit.
	StartBit      Code = "start_bit"
	StopBit       Code = "stop_bit"
	FrameShort    Code = "frame_short"
	FrameOverflow Code = "frame_overflow"
	QueueOverrun  Code = "queue_overrun"
	BadState      Code = "bad_state"

	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	Timeout        Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// OfFaults expands a sticky fault set into its codes, oldest declaration
// first. An empty set yields nil.
func OfFaults(f lin.Fault) []Code {
	if f == 0 {
		return nil
	}
	var out []Code
	for _, m := range faultCodes {
		if f.Has(m.fault) {
			out = append(out, m.code)
		}
	}
	return out
}

var faultCodes = []struct {
	fault lin.Fault
	code  Code
}{
	{lin.FaultStartBit, StartBit},
	{lin.FaultStopBit, StopBit},
	{lin.FaultFrameTooShort, FrameShort},
	{lin.FaultFrameOverflow, FrameOverflow},
	{lin.FaultQueueOverrun, QueueOverrun},
	{lin.FaultBadState, BadState},
}
