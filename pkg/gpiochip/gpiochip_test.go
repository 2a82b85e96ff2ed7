//go:build linux
// +build linux

package gpiochip

import (
	"os"
	"testing"

	"imxgpio/pkg/gpio"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// A chip without an underlying device: any line request would panic.
func unopened() *Chip {
	return &Chip{
		lines: map[int]*gpiod.Line{},
		cfg:   map[int]gpio.PinConfig{},
	}
}

func TestReadUnconfigured(t *testing.T) {
	c := unopened()

	if v := c.Read(5); v != 0 {
		t.Fatalf("Read(5) = %d", v)
	}
	if len(c.lines) != 0 {
		t.Fatalf("read requested %d lines", len(c.lines))
	}
}

func TestWriteUnconfigured(t *testing.T) {
	c := unopened()
	c.Write(5, 1)

	if len(c.lines) != 0 {
		t.Fatalf("write requested %d lines", len(c.lines))
	}
	if c.cfg[5].OutputLogic != 1 {
		t.Fatalf("output level not kept for Configure: %+v", c.cfg[5])
	}
}

func TestSoftInterrupts(t *testing.T) {
	c := unopened()
	c.irq.SetMode(4, gpio.FallingEdge)
	c.EnableInterrupt(4)

	c.event(gpiod.LineEvent{Offset: 4, Type: gpiod.LineEventFallingEdge})
	if c.Pending() != 1<<4 {
		t.Fatalf("Pending = %#x", c.Pending())
	}

	c.ClearInterruptFlag(4)
	if c.Pending() != 0 {
		t.Fatalf("Pending after clear = %#x", c.Pending())
	}
}
