// Package port holds the definition of the events observed on a gpio pin
package port

import "time"

// EventType indicates what happened on the pin.
type EventType int

const (
	_ EventType = iota
	// Interrupt indicates an acknowledged pin interrupt.
	Interrupt
	// Output indicates a level written to an output pin.
	Output
)

func (t EventType) String() string {
	switch t {
	case Interrupt:
		return "interrupt"
	case Output:
		return "output"
	default:
		return "invalid"
	}
}

// MarshalText encodes the type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *EventType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "interrupt":
		*t = Interrupt
	case "output":
		*t = Output
	default:
		*t = 0
	}
	return nil
}

type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Time
	// The type of event this structure represents.
	Type EventType
	// Name is the configured role of the pin, e.g. led, key or beep.
	Name string
	// Port and Pin identify the gpio line.
	Port int
	Pin  int
	// Level is the pin level after the event.
	Level StateType
}

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// State converts a pin value to a StateType.
func State(v int) StateType {
	switch v {
	case 0:
		return Low
	case 1:
		return High
	default:
		return Invalid
	}
}
