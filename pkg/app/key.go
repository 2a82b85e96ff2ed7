package app

import (
	"time"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/port"

	"github.com/womat/debug"
)

// initBeep configures the beeper pin as output, switched off.
func (app *App) initBeep() {
	c := app.config.Beep
	app.banks[c.Port].ctrl.Configure(c.Pin, gpio.PinConfig{Direction: gpio.Output, OutputLogic: 0})
}

// initKey configures the key pin as interrupt input and installs its handler.
// The mode is configured before the interrupt is unmasked.
func (app *App) initKey() error {
	c := app.config.Key
	b := app.banks[c.Port]

	if b.sim != nil {
		// the key is released and pulled up
		b.sim.Drive(c.Pin, 1)
	}

	b.ctrl.Configure(c.Pin, gpio.PinConfig{Direction: gpio.Input, InterruptMode: c.Mode})

	// ICR has no disabled encoding, an unmasked pin in reset state fires on low level
	if c.Mode == gpio.NoInterrupt {
		debug.InfoLog.Printf("key on gpio %d.%d is an input without interrupt", c.Port, c.Pin)
		return nil
	}

	if err := app.irq.Register(b.ctrl, c.Pin, app.keyHandler); err != nil {
		return err
	}
	b.ctrl.EnableInterrupt(c.Pin)

	debug.InfoLog.Printf("key on gpio %d.%d triggers on %v", c.Port, c.Pin, c.Mode)
	return nil
}

// keyHandler toggles the beeper on every key interrupt.
func (app *App) keyHandler(c gpio.Controller, pin int) {
	level := c.Read(pin)

	beep := app.config.Beep
	var on int
	app.banks[beep.Port].ctrl.Do(func(b gpio.Controller) {
		on = b.Read(beep.Pin) ^ 1
		b.Write(beep.Pin, on)
	})

	c.ClearInterruptFlag(pin)

	app.state.keyPressed()
	app.state.setBeep(on == 1)
	debug.DebugLog.Printf("key interrupt on pin %d, beeper on: %v", pin, on == 1)

	now := time.Now()
	app.record(port.Event{Timestamp: now, Type: port.Interrupt, Name: "key", Port: app.config.Key.Port, Pin: pin, Level: port.State(level)})
	app.record(port.Event{Timestamp: now, Type: port.Output, Name: "beep", Port: beep.Port, Pin: beep.Pin, Level: port.State(on)})
}

// emulateKey presses the simulated key periodically, only for the sim backend.
func (app *App) emulateKey() {
	c := app.config.Key
	sim := app.banks[c.Port].sim

	t := time.NewTicker(app.config.Sim.KeyInterval)
	defer t.Stop()

	for {
		select {
		case <-app.quit:
			return
		case <-t.C:
		}

		debug.TraceLog.Printf("emulating key press on pin %d", c.Pin)
		sim.Drive(c.Pin, 0)
		app.irq.Notify()

		select {
		case <-app.quit:
			return
		case <-time.After(app.config.Sim.KeyInterval / 4):
		}

		sim.Drive(c.Pin, 1)
		app.irq.Notify()
	}
}
