// Package gpio is the register level driver of the i.MX6UL/ULL GPIO ports.
//
// A Port translates a pin index into bit manipulations of the port's
// direction, data, interrupt configuration, mask and status registers.
// All mutating operations are read-modify-write of the pin's own bits only,
// because one register packs the state of all 32 pins of a port.
//
// A Port does no locking and no bounds checking. Callers that share a port
// between goroutines wrap it with NewGuard.
package gpio

import "fmt"

// Width is the number of pins of a port.
const Width = 32

// Direction is the direction of a pin.
type Direction int

const (
	// Input configures the pin as digital input.
	Input Direction = 0
	// Output configures the pin as digital output.
	Output Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// InterruptMode is the condition under which the interrupt status bit of a pin is set.
type InterruptMode int

const (
	NoInterrupt InterruptMode = iota
	LowLevel
	HighLevel
	RisingEdge
	FallingEdge
	RisingOrFallingEdge
)

var modeNames = [...]string{"none", "low", "high", "rising", "falling", "both"}

func (m InterruptMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseInterruptMode converts the configuration name of a mode (none|low|high|rising|falling|both).
func ParseInterruptMode(s string) (InterruptMode, error) {
	for i, n := range modeNames {
		if n == s {
			return InterruptMode(i), nil
		}
	}
	return NoInterrupt, fmt.Errorf("unknown interrupt mode %q", s)
}

// PinConfig is the configuration applied to a pin by Configure.
type PinConfig struct {
	Direction Direction
	// OutputLogic is the initial level (0 or 1) of an output pin.
	OutputLogic int
	// InterruptMode should only differ from NoInterrupt for input pins.
	// This is not checked.
	InterruptMode InterruptMode
}

// Controller is the set of pin operations of one port.
// Port implements it on registers; other backends emulate the register contract.
type Controller interface {
	Configure(pin int, cfg PinConfig)
	Write(pin int, value int)
	Read(pin int) int
	EnableInterrupt(pin int)
	DisableInterrupt(pin int)
	// ClearInterruptFlag acknowledges a pending interrupt.
	// An interrupt handler must call it before returning.
	ClearInterruptFlag(pin int)
	ConfigureInterruptMode(pin int, mode InterruptMode)
	// Pending returns the bitmask of pins with an enabled and pending interrupt.
	Pending() uint32
}
