//go:build windows
// +build windows

package raspberry

import (
	"errors"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/gpiosim"
)

var ErrUnsupported = errors.New("not supported")

// GPIO emulates the gpio bank on a simulated register file.
type GPIO struct {
	*gpio.Port
	sim    *gpiosim.Port
	notify func()
}

// Open returns the emulated bank.
func Open(notify func()) (*GPIO, error) {
	sim := gpiosim.New()
	return &GPIO{Port: gpio.NewPort(sim), sim: sim, notify: notify}, nil
}

// Close releases nothing.
func (g *GPIO) Close() error {
	return nil
}

// EmuEdge emulates an external level change of the given pin on Windows systems.
func (g *GPIO) EmuEdge(pin int, level int) {
	g.sim.Drive(pin, level)
	if g.Pending() != 0 && g.notify != nil {
		g.notify()
	}
}
