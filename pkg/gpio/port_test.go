package gpio_test

import (
	"testing"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/gpiosim"
	"imxgpio/pkg/mmio"
)

// pinState is everything observable about one pin.
type pinState struct {
	dir     gpio.Direction
	data    int
	enabled bool
	mode    gpio.InterruptMode
	pending bool
}

func stateOf(p *gpio.Port, pin int) pinState {
	return pinState{
		dir:     p.Direction(pin),
		data:    p.Read(pin),
		enabled: p.InterruptEnabled(pin),
		mode:    p.InterruptMode(pin),
		pending: p.InterruptPending(pin),
	}
}

func allStates(p *gpio.Port) [gpio.Width]pinState {
	var s [gpio.Width]pinState
	for pin := 0; pin < gpio.Width; pin++ {
		s[pin] = stateOf(p, pin)
	}
	return s
}

// busyPort returns a port whose registers hold a mixed, non trivial state.
func busyPort() (*gpio.Port, *gpiosim.Port) {
	sim := gpiosim.New()
	p := gpio.NewPort(sim)

	for pin := 0; pin < gpio.Width; pin++ {
		switch pin % 4 {
		case 0:
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Output, OutputLogic: 1})
		case 1:
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.FallingEdge})
			p.EnableInterrupt(pin)
		case 2:
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.RisingOrFallingEdge})
			sim.Drive(pin, 1)
		case 3:
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.HighLevel})
		}
	}
	return p, sim
}

func TestIsolation(t *testing.T) {
	ops := map[string]func(p *gpio.Port, pin int){
		"configure output": func(p *gpio.Port, pin int) {
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Output, OutputLogic: 1})
		},
		"configure input": func(p *gpio.Port, pin int) {
			p.Configure(pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.RisingEdge})
		},
		"write 0":  func(p *gpio.Port, pin int) { p.Write(pin, 0) },
		"write 1":  func(p *gpio.Port, pin int) { p.Write(pin, 1) },
		"enable":   func(p *gpio.Port, pin int) { p.EnableInterrupt(pin) },
		"disable":  func(p *gpio.Port, pin int) { p.DisableInterrupt(pin) },
		"clear":    func(p *gpio.Port, pin int) { p.ClearInterruptFlag(pin) },
		"mode low": func(p *gpio.Port, pin int) { p.ConfigureInterruptMode(pin, gpio.LowLevel) },
		"mode both": func(p *gpio.Port, pin int) {
			p.ConfigureInterruptMode(pin, gpio.RisingOrFallingEdge)
		},
		"mode none": func(p *gpio.Port, pin int) { p.ConfigureInterruptMode(pin, gpio.NoInterrupt) },
	}

	for name, op := range ops {
		for _, target := range []int{0, 1, 3, 15, 16, 17, 31} {
			p, _ := busyPort()
			before := allStates(p)

			op(p, target)

			after := allStates(p)
			for pin := 0; pin < gpio.Width; pin++ {
				if pin == target {
					continue
				}
				if before[pin] != after[pin] {
					t.Fatalf("%s on pin %d changed pin %d: %+v -> %+v", name, target, pin, before[pin], after[pin])
				}
			}
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := gpio.NewPort(gpiosim.New())
	p.Configure(7, gpio.PinConfig{Direction: gpio.Output})

	for _, v := range []int{0, 1, 1, 0} {
		p.Write(7, v)
		if got := p.Read(7); got != v {
			t.Fatalf("Read(7) = %d after Write(7, %d)", got, v)
		}
	}
}

func TestConfigureOutput(t *testing.T) {
	p := gpio.NewPort(gpiosim.New())
	p.Configure(5, gpio.PinConfig{Direction: gpio.Output, OutputLogic: 1, InterruptMode: gpio.NoInterrupt})

	if d := p.Direction(5); d != gpio.Output {
		t.Fatalf("Direction(5) = %v, want output", d)
	}
	if v := p.Read(5); v != 1 {
		t.Fatalf("Read(5) = %d, want 1", v)
	}

	r := p.Snapshot()
	if r.GDIR != 1<<5 {
		t.Fatalf("GDIR = %#x, want %#x", r.GDIR, 1<<5)
	}
	if r.DR != 1<<5 {
		t.Fatalf("DR = %#x, want %#x", r.DR, 1<<5)
	}
}

func TestConfigureMasksInterrupt(t *testing.T) {
	p := gpio.NewPort(gpiosim.New())
	p.EnableInterrupt(2)
	p.Configure(2, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.FallingEdge})

	if p.InterruptEnabled(2) {
		t.Fatal("interrupt still enabled after Configure")
	}
	if m := p.InterruptMode(2); m != gpio.FallingEdge {
		t.Fatalf("InterruptMode(2) = %v, want falling", m)
	}
}

func TestReadInputFollowsPad(t *testing.T) {
	sim := gpiosim.New()
	p := gpio.NewPort(sim)
	p.Configure(9, gpio.PinConfig{Direction: gpio.Input})

	sim.Drive(9, 1)
	if v := p.Read(9); v != 1 {
		t.Fatalf("Read(9) = %d with pad high", v)
	}

	// the latch of an input pin has no effect on the level read back
	p.Write(9, 0)
	if v := p.Read(9); v != 1 {
		t.Fatalf("Read(9) = %d after writing an input pin", v)
	}
}

func TestInterruptAcknowledge(t *testing.T) {
	sim := gpiosim.New()
	p := gpio.NewPort(sim)

	for _, pin := range []int{4, 18} {
		p.Configure(pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.FallingEdge})
		p.EnableInterrupt(pin)
		sim.Drive(pin, 1)
		sim.Drive(pin, 0)
	}

	if got, want := p.Pending(), uint32(1<<4|1<<18); got != want {
		t.Fatalf("Pending() = %#x, want %#x", got, want)
	}

	p.ClearInterruptFlag(18)

	if p.InterruptPending(18) {
		t.Fatal("pin 18 still pending after ClearInterruptFlag")
	}
	if !p.InterruptPending(4) {
		t.Fatal("ClearInterruptFlag(18) cleared pin 4")
	}
	if w := sim.Writes(gpio.ISR); len(w) != 1 || w[0] != 1<<18 {
		t.Fatalf("ISR writes = %#x, want a single write of %#x", w, 1<<18)
	}
}

func TestLevelInterruptRefiresUntilReleased(t *testing.T) {
	sim := gpiosim.New()
	p := gpio.NewPort(sim)
	p.Configure(1, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.HighLevel})
	p.EnableInterrupt(1)

	sim.Drive(1, 1)
	p.ClearInterruptFlag(1)
	if !p.InterruptPending(1) {
		t.Fatal("level interrupt did not re-fire while the condition holds")
	}

	sim.Drive(1, 0)
	p.ClearInterruptFlag(1)
	if p.InterruptPending(1) {
		t.Fatal("level interrupt pending after the condition was released")
	}
}

func TestPendingHonoursMask(t *testing.T) {
	sim := gpiosim.New()
	p := gpio.NewPort(sim)
	p.Configure(6, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.RisingEdge})

	sim.Drive(6, 1)
	if !p.InterruptPending(6) {
		t.Fatal("status not set for a masked pin")
	}
	if p.Pending() != 0 {
		t.Fatalf("Pending() = %#x with the pin masked", p.Pending())
	}

	p.EnableInterrupt(6)
	if p.Pending() != 1<<6 {
		t.Fatalf("Pending() = %#x, want %#x", p.Pending(), 1<<6)
	}
}

func TestMaskIndependentOfMode(t *testing.T) {
	p := gpio.NewPort(gpiosim.New())

	p.ConfigureInterruptMode(20, gpio.RisingEdge)
	p.EnableInterrupt(20)
	p.DisableInterrupt(20)

	if m := p.InterruptMode(20); m != gpio.RisingEdge {
		t.Fatalf("InterruptMode(20) = %v after DisableInterrupt, want rising", m)
	}

	p.EnableInterrupt(20)
	p.ConfigureInterruptMode(20, gpio.FallingEdge)
	if !p.InterruptEnabled(20) {
		t.Fatal("ConfigureInterruptMode changed the mask")
	}
}

func TestInterruptModeEncoding(t *testing.T) {
	tests := []struct {
		pin     int
		mode    gpio.InterruptMode
		want    gpio.InterruptMode
		icr     uintptr
		field   uint32
		edgeSel uint32
	}{
		{0, gpio.LowLevel, gpio.LowLevel, gpio.ICR1, 0, 0},
		{3, gpio.HighLevel, gpio.HighLevel, gpio.ICR1, 1 << 6, 0},
		{15, gpio.RisingEdge, gpio.RisingEdge, gpio.ICR1, 2 << 30, 0},
		{16, gpio.FallingEdge, gpio.FallingEdge, gpio.ICR2, 3, 0},
		{31, gpio.HighLevel, gpio.HighLevel, gpio.ICR2, 1 << 30, 0},
		{18, gpio.RisingOrFallingEdge, gpio.RisingOrFallingEdge, gpio.ICR2, 0, 1 << 18},
		{9, gpio.NoInterrupt, gpio.LowLevel, gpio.ICR1, 0, 0},
	}

	for _, tt := range tests {
		bus := mmio.NewMem(gpio.Size)
		p := gpio.NewPort(bus)

		p.ConfigureInterruptMode(tt.pin, tt.mode)

		if got := bus.Read32(tt.icr); got != tt.field {
			t.Errorf("pin %d mode %v: ICR = %#x, want %#x", tt.pin, tt.mode, got, tt.field)
		}
		if got := bus.Read32(gpio.EdgeSel); got != tt.edgeSel {
			t.Errorf("pin %d mode %v: EDGE_SEL = %#x, want %#x", tt.pin, tt.mode, got, tt.edgeSel)
		}
		if got := p.InterruptMode(tt.pin); got != tt.want {
			t.Errorf("pin %d: InterruptMode = %v, want %v", tt.pin, got, tt.want)
		}
	}
}

func TestEdgeSelectClearedBySingleEdge(t *testing.T) {
	p := gpio.NewPort(mmio.NewMem(gpio.Size))

	p.ConfigureInterruptMode(8, gpio.RisingOrFallingEdge)
	p.ConfigureInterruptMode(8, gpio.RisingEdge)

	if m := p.InterruptMode(8); m != gpio.RisingEdge {
		t.Fatalf("InterruptMode(8) = %v, want rising", m)
	}
}

func TestParseInterruptMode(t *testing.T) {
	for m := gpio.NoInterrupt; m <= gpio.RisingOrFallingEdge; m++ {
		got, err := gpio.ParseInterruptMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseInterruptMode(%q) = %v, %v", m.String(), got, err)
		}
	}

	if _, err := gpio.ParseInterruptMode("sideways"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}
