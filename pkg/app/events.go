package app

import (
	"sync"
	"time"

	"imxgpio/pkg/port"

	"github.com/womat/debug"
)

// state holds what the web service reports about the pins.
type state struct {
	sync.Mutex
	ledOn     bool
	ledToggle int
	beepOn    bool
	keyCount  int
	lastKey   time.Time
}

func (s *state) keyPressed() {
	s.Lock()
	defer s.Unlock()
	s.keyCount++
	s.lastKey = time.Now()
}

func (s *state) setBeep(on bool) {
	s.Lock()
	defer s.Unlock()
	s.beepOn = on
}

func (s *state) setLed(on bool) {
	s.Lock()
	defer s.Unlock()
	s.ledOn = on
	s.ledToggle++
}

// ledChanged is called by the blinker after every level change.
func (app *App) ledChanged(on bool) {
	app.state.setLed(on)

	c := app.config.Led
	level := 0
	if on != c.ActiveLow {
		level = 1
	}
	app.record(port.Event{Timestamp: time.Now(), Type: port.Output, Name: "led", Port: c.Port, Pin: c.Pin, Level: port.State(level)})
}

// record saves the event to the event log and sends it to the mqtt broker.
func (app *App) record(e port.Event) {
	debug.TraceLog.Printf("event %v %s %d.%d level %d", e.Type, e.Name, e.Port, e.Pin, e.Level)

	if app.events != nil {
		if err := app.events.Append(e); err != nil {
			debug.ErrorLog.Printf("can't store event: %v", err)
		}
	}

	if app.config.MQTT.Connection != "" {
		app.mqtt.Publish(e.Name, e, true)
	}
}
