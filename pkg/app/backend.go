package app

import (
	"fmt"
	"io"
	"sort"

	"imxgpio/pkg/app/config"
	"imxgpio/pkg/gpio"
	"imxgpio/pkg/gpiochip"
	"imxgpio/pkg/gpiosim"
	"imxgpio/pkg/imx6ul"
	"imxgpio/pkg/mmio"
	"imxgpio/pkg/raspberry"

	"github.com/womat/debug"
)

// bank is one opened gpio port.
type bank struct {
	num int
	// ctrl serializes all accesses of the blink loop, the interrupt handlers and the web handlers
	ctrl *gpio.Guard
	// regs is the register view of the port, nil for backends without registers
	regs *gpio.Port
	// sim is the simulated register file of the sim backend
	sim *gpiosim.Port
	// closer releases the backend, may be nil
	closer io.Closer
}

// usedPorts returns the sorted numbers of the ports used by the configuration.
func (app *App) usedPorts() []int {
	used := map[int]bool{app.config.Led.Port: true, app.config.Beep.Port: true}
	if app.config.Key.Enabled {
		used[app.config.Key.Port] = true
	}

	ports := make([]int, 0, len(used))
	for p := range used {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

// openBanks opens the used ports with the configured backend.
func (app *App) openBanks() error {
	var shared *bank

	for _, n := range app.usedPorts() {
		b := &bank{num: n}

		switch app.config.Backend {
		case config.BackendSim:
			b.sim = gpiosim.New()
			b.regs = gpio.NewPort(b.sim)
			b.ctrl = gpio.NewGuard(b.regs)

		case config.BackendIMX6UL:
			base, err := imx6ul.GPIOBase(n)
			if err != nil {
				return err
			}
			r, err := mmio.Open(base, imx6ul.BlockSize)
			if err != nil {
				return err
			}
			b.regs = gpio.NewPort(r)
			b.ctrl = gpio.NewGuard(b.regs)
			b.closer = r

		case config.BackendGPIOD:
			name := fmt.Sprintf(app.config.Gpiod.Chip, n-1)
			c, err := gpiochip.Open(name, app.config.Gpiod.Consumer, app.irq.Notify)
			if err != nil {
				return err
			}
			b.ctrl = gpio.NewGuard(c)
			b.closer = c

		case config.BackendRPI:
			// the Raspberry Pi has a single bank, all ports refer to it
			if shared == nil {
				g, err := raspberry.Open(app.irq.Notify)
				if err != nil {
					return err
				}
				shared = &bank{num: n, ctrl: gpio.NewGuard(g), closer: g}
			} else {
				debug.InfoLog.Printf("port %d shares the single raspberry bank", n)
			}
			b = shared

		default:
			return fmt.Errorf("unknown backend %q", app.config.Backend)
		}

		debug.DebugLog.Printf("gpio port %d opened with backend %s", n, app.config.Backend)
		app.banks[n] = b
	}

	return nil
}

// closeBanks releases all opened ports.
func (app *App) closeBanks() {
	closed := map[io.Closer]bool{}
	for n, b := range app.banks {
		if b.closer != nil && !closed[b.closer] {
			closed[b.closer] = true
			if err := b.closer.Close(); err != nil {
				debug.ErrorLog.Printf("closing gpio port %d: %v", n, err)
			}
		}
		delete(app.banks, n)
	}
}

// boot does the platform bring-up on the i.MX6UL backends:
// enable the peripheral clocks and route the used pads to their gpio.
func (app *App) boot() error {
	if app.config.Backend != config.BackendIMX6UL && app.config.Backend != config.BackendSim {
		return nil
	}

	if app.config.Boot.Clocks {
		ccm, closer, err := app.platformBus(imx6ul.CCM)
		if err != nil {
			return err
		}
		imx6ul.EnableClocks(ccm)
		_ = closer.Close()
		debug.InfoLog.Print("peripheral clocks enabled")
	}

	if !app.config.Boot.Iomux {
		return nil
	}

	pins := []config.PinConfig{app.config.Led.PinConfig, app.config.Beep}
	if app.config.Key.Enabled {
		pins = append(pins, app.config.Key.PinConfig)
	}

	for _, p := range pins {
		pad, ok := imx6ul.LookupPad(p.Port, p.Pin)
		if !ok {
			debug.InfoLog.Printf("no pad known for gpio %d.%d, iomux left untouched", p.Port, p.Pin)
			continue
		}

		base := imx6ul.IOMUXC
		if pad.SNVS {
			base = imx6ul.IOMUXCSNVS
		}

		bus, closer, err := app.platformBus(base)
		if err != nil {
			return err
		}
		imx6ul.MuxPad(bus, pad)
		_ = closer.Close()
		debug.DebugLog.Printf("pad %s routed to gpio %d.%d", pad.Name, p.Port, p.Pin)
	}

	return nil
}

// platformBus returns the register block at base, mapped or simulated depending on the backend.
func (app *App) platformBus(base int64) (mmio.Bus, io.Closer, error) {
	if app.config.Backend == config.BackendSim {
		return mmio.NewMem(imx6ul.BlockSize), io.NopCloser(nil), nil
	}

	r, err := mmio.Open(base, imx6ul.BlockSize)
	if err != nil {
		return nil, nil, err
	}
	return r, r, nil
}
