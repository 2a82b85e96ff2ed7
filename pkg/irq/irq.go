// Package irq dispatches gpio interrupts to handlers.
//
// A user space process has no interrupt vector, so the dispatcher samples the
// pending interrupts of its ports at a fixed interval. Backends that receive
// events asynchronously call Notify to get an immediate dispatch.
package irq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"imxgpio/pkg/gpio"

	"github.com/womat/debug"
)

var (
	ErrInvalidPin = errors.New("invalid pin")
	ErrInUse      = errors.New("handler already registered")
)

// Handler services the interrupt of one pin.
// It must acknowledge the interrupt with Controller.ClearInterruptFlag,
// otherwise a level triggered interrupt fires again immediately.
type Handler func(c gpio.Controller, pin int)

type line struct {
	port    gpio.Controller
	handler Handler
}

type key struct {
	port gpio.Controller
	pin  int
}

// Dispatcher polls ports and calls the registered handlers.
type Dispatcher struct {
	interval time.Duration

	mu    sync.Mutex
	ports []gpio.Controller
	lines map[key]line

	notify  chan struct{}
	started bool
	// quit stops the dispatcher
	quit chan struct{}
	// done signals that run() has terminated
	done chan struct{}
}

// New returns a dispatcher sampling every interval.
func New(interval time.Duration) *Dispatcher {
	return &Dispatcher{
		interval: interval,
		lines:    map[key]line{},
		notify:   make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register installs h for the pin of port c.
// The interrupt itself is enabled by the caller.
func (d *Dispatcher) Register(c gpio.Controller, pin int, h Handler) error {
	if pin < 0 || pin >= gpio.Width {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	k := key{port: c, pin: pin}
	if _, ok := d.lines[k]; ok {
		return fmt.Errorf("%w: pin %d", ErrInUse, pin)
	}

	d.lines[k] = line{port: c, handler: h}
	for _, p := range d.ports {
		if p == c {
			return nil
		}
	}
	d.ports = append(d.ports, c)
	return nil
}

// Unregister removes the handler of the pin.
func (d *Dispatcher) Unregister(c gpio.Controller, pin int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.lines, key{port: c, pin: pin})
}

// Notify requests a dispatch without waiting for the next sample.
// It never blocks and may be called from any goroutine.
func (d *Dispatcher) Notify() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Start runs the dispatcher in its own goroutine until Close.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true
	go d.run()
}

// Close stops the dispatcher and waits until it has terminated.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	started := d.started
	d.started = false
	d.mu.Unlock()

	if !started {
		return nil
	}

	d.quit <- struct{}{}
	<-d.done
	return nil
}

func (d *Dispatcher) run() {
	defer func() { d.done <- struct{}{} }()

	t := time.NewTicker(d.interval)
	defer t.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-t.C:
			d.Dispatch()
		case <-d.notify:
			d.Dispatch()
		}
	}
}

// Dispatch calls the handler of every enabled and pending pin once and
// returns the number of handled interrupts.
func (d *Dispatcher) Dispatch() int {
	d.mu.Lock()
	ports := append([]gpio.Controller(nil), d.ports...)
	d.mu.Unlock()

	n := 0
	for _, c := range ports {
		pending := c.Pending()
		for pin := 0; pending != 0; pin++ {
			bit := uint32(1) << uint(pin)
			if pending&bit == 0 {
				continue
			}
			pending &^= bit

			d.mu.Lock()
			l, ok := d.lines[key{port: c, pin: pin}]
			d.mu.Unlock()

			if !ok {
				debug.ErrorLog.Printf("no handler for interrupt of pin %d, masking it", pin)
				c.DisableInterrupt(pin)
				c.ClearInterruptFlag(pin)
				continue
			}

			l.handler(c, pin)
			n++

			if c.Pending()&bit != 0 {
				debug.TraceLog.Printf("interrupt of pin %d still pending after its handler", pin)
			}
		}
	}
	return n
}
