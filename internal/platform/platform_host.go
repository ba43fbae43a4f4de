//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"tinygo.org/x/drivers"
)

// Setup returns host fakes: an idle-high line and an in-memory report
// port. Useful for running the firmware wiring on a workstation.
func Setup() Resources {
	return Resources{
		Line:  NewHostLine(),
		Port:  &HostPort{},
		Debug: nil, // receiver substitutes no-ops
	}
}

// HostLine is a settable line level, idle high.
type HostLine struct {
	mu   sync.Mutex
	high bool
}

func NewHostLine() *HostLine { return &HostLine{high: true} }

func (l *HostLine) High() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.high
}

func (l *HostLine) Set(high bool) {
	l.mu.Lock()
	l.high = high
	l.mu.Unlock()
}

// HostPort collects written report bytes in memory.
type HostPort struct {
	mu  sync.Mutex
	buf []byte
}

func (p *HostPort) Buffered() int              { return 0 }
func (p *HostPort) Read(b []byte) (int, error) { return 0, nil }

func (p *HostPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.buf = append(p.buf, b...)
	p.mu.Unlock()
	return len(b), nil
}

// Flush returns and clears the collected bytes.
func (p *HostPort) Flush() []byte {
	p.mu.Lock()
	out := p.buf
	p.buf = nil
	p.mu.Unlock()
	return out
}

var _ drivers.UART = (*HostPort)(nil)
