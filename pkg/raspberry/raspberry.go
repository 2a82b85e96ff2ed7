//go:build !windows
// +build !windows

// Package raspberry drives the gpio lines of a Raspberry Pi through /dev/gpiomem.
//
// The BCM2835 interrupt registers are owned by the kernel, so edge interrupts
// are received as watch events and kept in a gpio.SoftIRQ. Level triggered
// modes are not available.
package raspberry

import (
	"errors"
	"sync"

	"imxgpio/pkg/gpio"

	rpi "github.com/warthog618/gpio"
	"github.com/womat/debug"
)

var ErrUnsupported = errors.New("not supported")

// GPIO is the first bank (BCM GPIO 0..31) of the Raspberry Pi.
// It implements gpio.Controller.
type GPIO struct {
	mu   sync.Mutex
	pins map[int]*rpi.Pin
	irq  gpio.SoftIRQ
}

// Open maps the GPIO memory range from /dev/gpiomem.
// notify is called from the watcher goroutine whenever an enabled interrupt becomes pending.
func Open(notify func()) (*GPIO, error) {
	if err := rpi.Open(); err != nil {
		return nil, err
	}

	g := &GPIO{pins: map[int]*rpi.Pin{}}
	g.irq.Notify = notify
	return g, nil
}

// Close removes the watchers and unmaps GPIO memory.
func (g *GPIO) Close() error {
	g.mu.Lock()
	for _, p := range g.pins {
		p.Unwatch()
	}
	g.pins = map[int]*rpi.Pin{}
	g.mu.Unlock()

	return rpi.Close()
}

func (g *GPIO) pin(n int) *rpi.Pin {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pins[n]
	if !ok {
		p = rpi.NewPin(n)
		g.pins[n] = p
	}
	return p
}

// Configure sets direction, initial level and trigger mode of the pin.
func (g *GPIO) Configure(pin int, cfg gpio.PinConfig) {
	g.irq.Disable(pin)

	p := g.pin(pin)
	if cfg.Direction == gpio.Input {
		p.Input()
	} else {
		p.Output()
		g.Write(pin, cfg.OutputLogic)
	}

	g.ConfigureInterruptMode(pin, cfg.InterruptMode)
}

// Write drives the level of the pin.
func (g *GPIO) Write(pin int, value int) {
	g.pin(pin).Write(rpi.Level(value != 0))
}

// Read returns the level of the pin.
func (g *GPIO) Read(pin int) int {
	if g.pin(pin).Read() == rpi.High {
		return 1
	}
	return 0
}

func (g *GPIO) EnableInterrupt(pin int) {
	g.irq.Enable(pin)
}

func (g *GPIO) DisableInterrupt(pin int) {
	g.irq.Disable(pin)
}

func (g *GPIO) ClearInterruptFlag(pin int) {
	g.irq.Clear(pin)
}

func (g *GPIO) Pending() uint32 {
	return g.irq.Pending()
}

// ConfigureInterruptMode replaces the watcher of the pin.
func (g *GPIO) ConfigureInterruptMode(pin int, mode gpio.InterruptMode) {
	p := g.pin(pin)
	p.Unwatch()
	g.irq.SetMode(pin, mode)

	var edge rpi.Edge
	switch mode {
	case gpio.NoInterrupt:
		return
	case gpio.RisingEdge:
		edge = rpi.EdgeRising
	case gpio.FallingEdge:
		edge = rpi.EdgeFalling
	case gpio.RisingOrFallingEdge:
		edge = rpi.EdgeBoth
	default:
		debug.ErrorLog.Printf("pin %d: interrupt mode %v: %v", pin, mode, ErrUnsupported)
		return
	}

	if err := p.Watch(edge, g.edge); err != nil {
		debug.ErrorLog.Printf("can't watch pin %d: %v", pin, err)
	}
}

// edge is the watch handler of all pins.
func (g *GPIO) edge(p *rpi.Pin) {
	rising := p.Read() == rpi.High
	debug.TraceLog.Printf("edge on pin %d, rising: %v", p.Pin(), rising)
	g.irq.Edge(p.Pin(), rising)
}
