//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"linbus-go/drivers/lin"
)

// Pin plan (Pico GP numbering):
//   GP0/GP1  uart0 report link to the host
//   GP3      LIN RX from the transceiver
//   GP4      LIN transceiver enable, driven high
const (
	pinReportTX = machine.GPIO0
	pinReportRX = machine.GPIO1
	pinLinRX    = machine.GPIO3
	pinLinEN    = machine.GPIO4
)

const reportBaud = 115200

// Setup configures the RP2 pins and the report UART.
func Setup() Resources {
	rx := pinLinRX
	rx.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	en := pinLinEN
	en.Configure(machine.PinConfig{Mode: machine.PinOutput})
	en.High()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: reportBaud,
		TX:       pinReportTX,
		RX:       pinReportRX,
	})

	return Resources{
		Line:  pinLine{rx},
		Port:  uartPort{hw},
		Debug: ledIndicators{led},
	}
}

// ---- line sampler ----

type pinLine struct{ p machine.Pin }

func (l pinLine) High() bool { return l.p.Get() }

// ---- report port: adapts uartx to drivers.UART ----

type uartPort struct{ u *uartx.UART }

func (p uartPort) Buffered() int               { return p.u.Buffered() }
func (p uartPort) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p uartPort) Read(b []byte) (int, error) {
	return p.u.RecvSomeContext(context.Background(), b)
}

var _ drivers.UART = uartPort{}

// ---- debug indicators on the onboard LED ----
//
// The LED shadows break detection; a fault leaves it latched on until the
// next break starts. Good enough to eyeball traffic with one LED.

type ledIndicators struct{ led machine.Pin }

func (ledIndicators) TickActive(bool) {}
func (ledIndicators) BitSample()      {}

func (i ledIndicators) BreakActive(on bool) { i.led.Set(on) }
func (i ledIndicators) FaultPulse()         { i.led.High() }

var _ lin.Indicators = ledIndicators{}
