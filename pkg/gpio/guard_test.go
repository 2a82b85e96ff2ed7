package gpio_test

import (
	"sync"
	"testing"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/gpiosim"
)

// TestGuardNoLostUpdates toggles different pins of one port from several
// goroutines. Without the guard a read-modify-write of one pin can overwrite
// the concurrent update of another.
func TestGuardNoLostUpdates(t *testing.T) {
	g := gpio.NewGuard(gpio.NewPort(gpiosim.New()))

	pins := []int{0, 3, 12, 31}
	for _, pin := range pins {
		g.Configure(pin, gpio.PinConfig{Direction: gpio.Output})
	}

	var wg sync.WaitGroup
	for _, pin := range pins {
		wg.Add(1)
		go func(pin int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				g.Write(pin, i%2)
			}
			g.Write(pin, 1)
		}(pin)
	}
	wg.Wait()

	for _, pin := range pins {
		if v := g.Read(pin); v != 1 {
			t.Fatalf("Read(%d) = %d, want 1", pin, v)
		}
	}
}

func TestGuardDo(t *testing.T) {
	sim := gpiosim.New()
	g := gpio.NewGuard(gpio.NewPort(sim))

	g.Do(func(c gpio.Controller) {
		c.Configure(2, gpio.PinConfig{Direction: gpio.Input, InterruptMode: gpio.RisingEdge})
		c.EnableInterrupt(2)
	})

	sim.Drive(2, 1)
	if g.Pending() != 1<<2 {
		t.Fatalf("Pending() = %#x", g.Pending())
	}
	g.ClearInterruptFlag(2)
	if g.Pending() != 0 {
		t.Fatalf("Pending() = %#x after clear", g.Pending())
	}
}
