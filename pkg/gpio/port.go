package gpio

import "imxgpio/pkg/mmio"

// register offsets of a GPIO port
const (
	DR      uintptr = 0x00
	GDIR    uintptr = 0x04
	PSR     uintptr = 0x08
	ICR1    uintptr = 0x0C
	ICR2    uintptr = 0x10
	IMR     uintptr = 0x14
	ISR     uintptr = 0x18
	EdgeSel uintptr = 0x1C

	// Size is the size of the register block in bytes.
	Size uintptr = 0x20
)

// ICR field encoding, two bits per pin
const (
	icrLowLevel  = 0
	icrHighLevel = 1
	icrRising    = 2
	icrFalling   = 3
	icrMask      = 3
)

// Port is the register block of one GPIO port.
type Port struct {
	bus mmio.Bus
}

// NewPort returns the port whose registers start at offset 0 of bus.
func NewPort(bus mmio.Bus) *Port {
	return &Port{bus: bus}
}

// Registers is a snapshot of the register block.
type Registers struct {
	DR, GDIR, PSR, ICR1, ICR2, IMR, ISR, EdgeSel uint32
}

// Configure masks the pin's interrupt, sets its direction and, for outputs,
// the initial level, and finally its interrupt mode.
// The mask is left cleared; EnableInterrupt unmasks it.
func (p *Port) Configure(pin int, cfg PinConfig) {
	p.clear(IMR, pin)

	if cfg.Direction == Input {
		p.clear(GDIR, pin)
	} else {
		p.set(GDIR, pin)
		p.Write(pin, cfg.OutputLogic)
	}

	p.ConfigureInterruptMode(pin, cfg.InterruptMode)
}

// Write drives the output level of the pin.
func (p *Port) Write(pin int, value int) {
	if value == 0 {
		p.clear(DR, pin)
		return
	}
	p.set(DR, pin)
}

// Read returns the level of the pin.
// For outputs this is the driven level, for inputs the sensed pad level.
func (p *Port) Read(pin int) int {
	return int(p.bus.Read32(DR)>>uint(pin)) & 1
}

// EnableInterrupt unmasks the pin's interrupt.
func (p *Port) EnableInterrupt(pin int) {
	p.set(IMR, pin)
}

// DisableInterrupt masks the pin's interrupt.
func (p *Port) DisableInterrupt(pin int) {
	p.clear(IMR, pin)
}

// ClearInterruptFlag clears the pin's status bit.
// ISR is write-1-to-clear so the other pins are unaffected by the plain write.
func (p *Port) ClearInterruptFlag(pin int) {
	p.bus.Write32(ISR, 1<<uint(pin))
}

// ConfigureInterruptMode changes only the trigger mode of the pin.
// NoInterrupt resets the pin's ICR field to its reset value; masking is done
// by DisableInterrupt.
func (p *Port) ConfigureInterruptMode(pin int, mode InterruptMode) {
	p.clear(EdgeSel, pin)

	icr, shift := icrOf(pin)
	switch mode {
	case NoInterrupt, LowLevel:
		p.field(icr, shift, icrLowLevel)
	case HighLevel:
		p.field(icr, shift, icrHighLevel)
	case RisingEdge:
		p.field(icr, shift, icrRising)
	case FallingEdge:
		p.field(icr, shift, icrFalling)
	case RisingOrFallingEdge:
		p.set(EdgeSel, pin)
	}
}

// Pending returns the pins with an enabled and pending interrupt.
func (p *Port) Pending() uint32 {
	return p.bus.Read32(ISR) & p.bus.Read32(IMR)
}

// Direction returns the configured direction of the pin.
func (p *Port) Direction(pin int) Direction {
	return Direction((p.bus.Read32(GDIR) >> uint(pin)) & 1)
}

// InterruptMode returns the trigger mode programmed for the pin.
// The hardware has no encoding for NoInterrupt: a pin in reset state reads as LowLevel.
func (p *Port) InterruptMode(pin int) InterruptMode {
	if p.bus.Read32(EdgeSel)&(1<<uint(pin)) != 0 {
		return RisingOrFallingEdge
	}

	icr, shift := icrOf(pin)
	switch (p.bus.Read32(icr) >> shift) & icrMask {
	case icrHighLevel:
		return HighLevel
	case icrRising:
		return RisingEdge
	case icrFalling:
		return FallingEdge
	default:
		return LowLevel
	}
}

// InterruptEnabled reports whether the pin's interrupt is unmasked.
func (p *Port) InterruptEnabled(pin int) bool {
	return p.bus.Read32(IMR)&(1<<uint(pin)) != 0
}

// InterruptPending reports whether the pin's status bit is set, regardless of the mask.
func (p *Port) InterruptPending(pin int) bool {
	return p.bus.Read32(ISR)&(1<<uint(pin)) != 0
}

// Snapshot reads all registers of the port.
func (p *Port) Snapshot() Registers {
	return Registers{
		DR:      p.bus.Read32(DR),
		GDIR:    p.bus.Read32(GDIR),
		PSR:     p.bus.Read32(PSR),
		ICR1:    p.bus.Read32(ICR1),
		ICR2:    p.bus.Read32(ICR2),
		IMR:     p.bus.Read32(IMR),
		ISR:     p.bus.Read32(ISR),
		EdgeSel: p.bus.Read32(EdgeSel),
	}
}

func (p *Port) set(reg uintptr, pin int) {
	p.bus.Write32(reg, p.bus.Read32(reg)|1<<uint(pin))
}

func (p *Port) clear(reg uintptr, pin int) {
	p.bus.Write32(reg, p.bus.Read32(reg)&^(1<<uint(pin)))
}

func (p *Port) field(reg uintptr, shift uint, v uint32) {
	p.bus.Write32(reg, p.bus.Read32(reg)&^(icrMask<<shift)|v<<shift)
}

// icrOf returns the ICR register and bit offset of the pin's trigger field.
func icrOf(pin int) (uintptr, uint) {
	if pin < 16 {
		return ICR1, uint(2 * pin)
	}
	return ICR2, uint(2 * (pin - 16))
}
