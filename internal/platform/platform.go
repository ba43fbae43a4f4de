// Package platform supplies the board-specific collaborators of the
// receiver: the line sampler, the report port and the debug indicators.
// The RP2 build talks to real pins; the host build supplies fakes so the
// rest of the module compiles and runs anywhere.
package platform

import (
	"tinygo.org/x/drivers"

	"linbus-go/drivers/lin"
)

// Resources is what Setup hands to main.
type Resources struct {
	Line  lin.Line
	Port  drivers.UART
	Debug lin.Indicators
}
