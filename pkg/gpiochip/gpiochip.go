//go:build linux
// +build linux

// Package gpiochip drives the lines of a gpio chip through the linux gpio character device.
//
// Lines are requested on first use and re-requested whenever direction or
// trigger mode change. Edge events are kept in a gpio.SoftIRQ, level
// triggered modes are not supported by the character device.
package gpiochip

import (
	"errors"
	"fmt"
	"sync"

	"imxgpio/pkg/gpio"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
)

var ErrUnsupported = errors.New("not supported")

// Chip represents a single GPIO chip that controls a set of lines.
// It implements gpio.Controller.
type Chip struct {
	chip *gpiod.Chip

	mu    sync.Mutex
	lines map[int]*gpiod.Line
	cfg   map[int]gpio.PinConfig

	irq gpio.SoftIRQ
}

// Open opens a GPIO character device, e.g. gpiochip0.
// notify is called from the event goroutine whenever an enabled interrupt becomes pending.
func Open(name, consumer string, notify func()) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	chip := &Chip{
		chip:  c,
		lines: map[int]*gpiod.Line{},
		cfg:   map[int]gpio.PinConfig{},
	}
	chip.irq.Notify = notify
	return chip, nil
}

// Close releases all requested lines and the chip.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for pin, l := range c.lines {
		_ = l.Close()
		delete(c.lines, pin)
	}
	return c.chip.Close()
}

// Configure requests the line with the given direction, level and trigger mode.
func (c *Chip) Configure(pin int, cfg gpio.PinConfig) {
	c.irq.Disable(pin)
	c.irq.SetMode(pin, cfg.InterruptMode)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg[pin] = cfg
	c.request(pin)
}

// Write drives the level of an output line.
func (c *Chip) Write(pin int, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.cfg[pin]
	cfg.OutputLogic = value
	c.cfg[pin] = cfg

	l := c.line(pin)
	if l == nil || cfg.Direction != gpio.Output {
		return
	}
	if err := l.SetValue(value); err != nil {
		debug.ErrorLog.Printf("can't set line %d: %v", pin, err)
	}
}

// Read returns the level of the line, 0 for a pin that was never configured.
func (c *Chip) Read(pin int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.line(pin)
	if l == nil {
		return 0
	}

	v, err := l.Value()
	if err != nil {
		debug.ErrorLog.Printf("can't read line %d: %v", pin, err)
		return 0
	}
	return v
}

func (c *Chip) EnableInterrupt(pin int) {
	c.irq.Enable(pin)
}

func (c *Chip) DisableInterrupt(pin int) {
	c.irq.Disable(pin)
}

func (c *Chip) ClearInterruptFlag(pin int) {
	c.irq.Clear(pin)
}

func (c *Chip) Pending() uint32 {
	return c.irq.Pending()
}

// ConfigureInterruptMode re-requests the line with the new edge detection.
func (c *Chip) ConfigureInterruptMode(pin int, mode gpio.InterruptMode) {
	c.irq.SetMode(pin, mode)

	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.cfg[pin]
	cfg.InterruptMode = mode
	c.cfg[pin] = cfg
	c.request(pin)
}

// line returns the requested line, nil if the pin was never configured.
func (c *Chip) line(pin int) *gpiod.Line {
	return c.lines[pin]
}

// request (re)requests the line with its current configuration.
func (c *Chip) request(pin int) *gpiod.Line {
	if l, ok := c.lines[pin]; ok {
		_ = l.Close()
		delete(c.lines, pin)
	}

	cfg := c.cfg[pin]
	opts := []gpiod.LineReqOption{}

	if cfg.Direction == gpio.Output {
		opts = append(opts, gpiod.AsOutput(cfg.OutputLogic))
	} else {
		opts = append(opts, gpiod.AsInput)
	}

	switch cfg.InterruptMode {
	case gpio.NoInterrupt:
	case gpio.RisingEdge:
		opts = append(opts, gpiod.WithEventHandler(c.event), gpiod.WithRisingEdge)
	case gpio.FallingEdge:
		opts = append(opts, gpiod.WithEventHandler(c.event), gpiod.WithFallingEdge)
	case gpio.RisingOrFallingEdge:
		opts = append(opts, gpiod.WithEventHandler(c.event), gpiod.WithBothEdges)
	default:
		debug.ErrorLog.Printf("line %d: interrupt mode %v: %v", pin, cfg.InterruptMode, ErrUnsupported)
	}

	l, err := c.chip.RequestLine(pin, opts...)
	if err != nil {
		debug.ErrorLog.Printf("can't request line %d: %v", pin, err)
		return nil
	}

	c.lines[pin] = l
	return l
}

// event is the handler of all edge events of the chip.
func (c *Chip) event(evt gpiod.LineEvent) {
	rising := evt.Type == gpiod.LineEventRisingEdge
	debug.TraceLog.Printf("edge on line %d, rising: %v", evt.Offset, rising)
	c.irq.Edge(evt.Offset, rising)
}
