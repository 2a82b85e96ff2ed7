package gpio

import "sync"

// Guard serializes all operations on a Controller.
// Use one Guard per port when the port is shared by the main loop and an
// interrupt handler, otherwise a read-modify-write of one pin can lose the
// concurrent update of a sibling pin.
type Guard struct {
	mu sync.Mutex
	c  Controller
}

// NewGuard wraps c.
func NewGuard(c Controller) *Guard {
	return &Guard{c: c}
}

// Do runs f with exclusive access to the port.
func (g *Guard) Do(f func(c Controller)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f(g.c)
}

func (g *Guard) Configure(pin int, cfg PinConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.Configure(pin, cfg)
}

func (g *Guard) Write(pin int, value int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.Write(pin, value)
}

func (g *Guard) Read(pin int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Read(pin)
}

func (g *Guard) EnableInterrupt(pin int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.EnableInterrupt(pin)
}

func (g *Guard) DisableInterrupt(pin int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.DisableInterrupt(pin)
}

func (g *Guard) ClearInterruptFlag(pin int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.ClearInterruptFlag(pin)
}

func (g *Guard) ConfigureInterruptMode(pin int, mode InterruptMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.ConfigureInterruptMode(pin, mode)
}

func (g *Guard) Pending() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Pending()
}
