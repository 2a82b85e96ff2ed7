// Package led drives an LED on a GPIO output pin.
package led

import (
	"time"

	"imxgpio/pkg/delay"
	"imxgpio/pkg/gpio"

	"github.com/womat/debug"
)

// Blinker toggles one LED.
type Blinker struct {
	Port gpio.Controller
	Pin  int
	// ActiveLow is set when the LED lights with the pin driven low.
	ActiveLow bool
	// Interval is the on time and the off time of one blink period.
	Interval time.Duration
	Sleeper  delay.Sleeper
	// OnChange is called after every level change, if set.
	OnChange func(on bool)
}

// Init configures the pin as output with the LED switched on.
func (b *Blinker) Init() {
	b.Port.Configure(b.Pin, gpio.PinConfig{
		Direction:     gpio.Output,
		OutputLogic:   b.level(true),
		InterruptMode: gpio.NoInterrupt,
	})
}

// On switches the LED on.
func (b *Blinker) On() {
	b.set(true)
}

// Off switches the LED off.
func (b *Blinker) Off() {
	b.set(false)
}

// IsOn reports whether the LED is lit.
func (b *Blinker) IsOn() bool {
	return b.Port.Read(b.Pin) == b.level(true)
}

// Run blinks count times, or until quit is closed if count is 0.
// quit is checked once per period.
func (b *Blinker) Run(count int, quit <-chan struct{}) {
	debug.DebugLog.Printf("blinking led on pin %d every %v", b.Pin, b.Interval)

	for i := 0; count == 0 || i < count; i++ {
		select {
		case <-quit:
			return
		default:
		}

		b.On()
		b.Sleeper.Sleep(b.Interval)
		b.Off()
		b.Sleeper.Sleep(b.Interval)
	}
}

func (b *Blinker) set(on bool) {
	b.Port.Write(b.Pin, b.level(on))
	debug.TraceLog.Printf("led pin %d on: %v", b.Pin, on)

	if b.OnChange != nil {
		b.OnChange(on)
	}
}

func (b *Blinker) level(on bool) int {
	if on != b.ActiveLow {
		return 1
	}
	return 0
}
