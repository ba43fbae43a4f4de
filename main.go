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

const linBaud = 9600

func main() {
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	res := platform.Setup()

	ticksPerBit := timex.TicksPerBit(250_000, linBaud)
	smp := sampler.New(timex.BitPeriod(linBaud), ticksPerBit)
	rx := lin.New(res.Line, smp, lin.Config{
		ClockTicksPerBit: ticksPerBit,
		Debug:            res.Debug,
	})
	go smp.Run(ctx, rx.Tick)

	b := bus.NewBus(8)
	go linrx.Run(ctx, b.NewConnection("linrx"), rx)

	rep := report.New(res.Port, report.Config{})
	go rep.Run(ctx, b.NewConnection("report"))

	// Periodic stats.
	frames := 0
	sub := b.NewConnection("main").Subscribe(bus.Topic{"lin", "frame"})
	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-sub.Channel():
			frames++
		case t := <-tick.C:
			println(t.Format("15:04:05"), "frames:", frames, "drops:", rep.Drops())
		}
	}
}
