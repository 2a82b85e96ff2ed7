// Package gpiosim simulates the register block of an i.MX6UL GPIO port.
//
// The simulation stands in for hardware: DR reads return the pad level for
// input pins, PSR mirrors the pads, ISR is write-1-to-clear and the trigger
// condition of input pins is evaluated whenever the external level of a pad
// changes (Drive) and when a level triggered status bit is acknowledged.
// Every bus write is recorded and can be inspected with Trace.
package gpiosim

import (
	"sync"

	"imxgpio/pkg/gpio"
)

// Access is one recorded register write.
type Access struct {
	Off   uintptr
	Value uint32
}

// Port is a simulated GPIO register block. It implements mmio.Bus.
type Port struct {
	mu sync.Mutex

	dr, gdir, icr1, icr2, imr, isr, edgeSel uint32
	// pads holds the externally driven level of every pad.
	pads uint32

	trace []Access
}

// New returns a port in reset state with all pads low.
func New() *Port {
	return &Port{}
}

// Read32 implements mmio.Bus.
func (p *Port) Read32(off uintptr) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch off {
	case gpio.DR, gpio.PSR:
		return p.levels()
	case gpio.GDIR:
		return p.gdir
	case gpio.ICR1:
		return p.icr1
	case gpio.ICR2:
		return p.icr2
	case gpio.IMR:
		return p.imr
	case gpio.ISR:
		return p.isr
	case gpio.EdgeSel:
		return p.edgeSel
	}
	return 0
}

// Write32 implements mmio.Bus.
func (p *Port) Write32(off uintptr, v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.trace = append(p.trace, Access{Off: off, Value: v})

	switch off {
	case gpio.DR:
		p.dr = v
	case gpio.GDIR:
		p.gdir = v
	case gpio.ICR1:
		p.icr1 = v
	case gpio.ICR2:
		p.icr2 = v
	case gpio.IMR:
		p.imr = v
	case gpio.ISR:
		p.isr &^= v
		p.resample(v)
	case gpio.EdgeSel:
		p.edgeSel = v
	}
}

// Drive sets the external level of a pad.
// The pin's trigger condition is evaluated if it is configured as input.
func (p *Port) Drive(pin int, level int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bit := uint32(1) << uint(pin)
	old := p.pads&bit != 0
	if level == 0 {
		p.pads &^= bit
	} else {
		p.pads |= bit
	}

	if p.gdir&bit != 0 {
		return
	}
	if p.triggered(pin, old, level != 0) {
		p.isr |= bit
	}
}

// Pad returns the external level of a pad.
func (p *Port) Pad(pin int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.pads>>uint(pin)) & 1
}

// Trace returns a copy of all register writes since creation or the last ResetTrace.
func (p *Port) Trace() []Access {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Access(nil), p.trace...)
}

// Writes returns the values written to the register at off, in order.
func (p *Port) Writes(off uintptr) []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var w []uint32
	for _, a := range p.trace {
		if a.Off == off {
			w = append(w, a.Value)
		}
	}
	return w
}

// ResetTrace drops the recorded writes.
func (p *Port) ResetTrace() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = nil
}

// levels returns the level seen on every pin: the latch for outputs, the pad for inputs.
func (p *Port) levels() uint32 {
	return p.dr&p.gdir | p.pads&^p.gdir
}

// resample sets the status again for cleared input pins whose level condition still holds.
func (p *Port) resample(cleared uint32) {
	for pin := 0; pin < gpio.Width; pin++ {
		bit := uint32(1) << uint(pin)
		if cleared&bit == 0 || p.gdir&bit != 0 {
			continue
		}

		level := p.pads&bit != 0
		switch p.mode(pin) {
		case gpio.LowLevel:
			if !level {
				p.isr |= bit
			}
		case gpio.HighLevel:
			if level {
				p.isr |= bit
			}
		}
	}
}

func (p *Port) triggered(pin int, old, level bool) bool {
	switch p.mode(pin) {
	case gpio.LowLevel:
		return !level
	case gpio.HighLevel:
		return level
	case gpio.RisingEdge:
		return !old && level
	case gpio.FallingEdge:
		return old && !level
	case gpio.RisingOrFallingEdge:
		return old != level
	}
	return false
}

// mode decodes the trigger mode of a pin from ICR and EDGE_SEL.
func (p *Port) mode(pin int) gpio.InterruptMode {
	if p.edgeSel&(1<<uint(pin)) != 0 {
		return gpio.RisingOrFallingEdge
	}

	icr, shift := p.icr1, uint(2*pin)
	if pin >= 16 {
		icr, shift = p.icr2, uint(2*(pin-16))
	}

	return [...]gpio.InterruptMode{gpio.LowLevel, gpio.HighLevel, gpio.RisingEdge, gpio.FallingEdge}[(icr>>shift)&3]
}
