//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"linbus-go/bus"
	"linbus-go/drivers/lin"
	"linbus-go/internal/platform"
	"linbus-go/internal/sampler"
	"linbus-go/services/linrx"
	"linbus-go/services/report"
	"linbus-go/x/timex"
)

// Bus monitor firmware: decode LIN traffic on GP3 and forward every frame
// over uart0 as report lines for lintool watch.

const linBaud = 9600

func main() {
	println("[linmon] boot …")
	time.Sleep(1500 * time.Millisecond)

	ctx := context.Background()
	res := platform.Setup()

	ticksPerBit := timex.TicksPerBit(250_000, linBaud)
	smp := sampler.New(timex.BitPeriod(linBaud), ticksPerBit)
	rx := lin.New(res.Line, smp, lin.Config{
		ClockTicksPerBit: ticksPerBit,
		Debug:            res.Debug,
	})

	b := bus.NewBus(8)
	go linrx.Run(ctx, b.NewConnection("linrx"), rx)

	rep := report.New(res.Port, report.Config{})
	go rep.Run(ctx, b.NewConnection("report"))

	println("[linmon] receiving at", linBaud, "baud")

	// The tick source owns the calling goroutine: it must never share it
	// with anything that could delay a bit slot.
	smp.Run(ctx, rx.Tick)
}
