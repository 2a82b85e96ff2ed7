// Package delay spaces state changes by real time intervals.
package delay

import (
	"errors"
	"fmt"
	"time"
)

// Delay kinds accepted by New.
const (
	KindBusy  = "busy"
	KindSleep = "sleep"
)

var ErrUnknownKind = errors.New("unknown delay kind")

// Sleeper waits for at least the given duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Clock returns the current time.
type Clock func() time.Time

// Busy waits by spinning on a clock until the deadline has passed.
// Its accuracy does not depend on the CPU frequency.
type Busy struct {
	Now Clock
}

// NewBusy returns a busy waiter on the wall clock.
func NewBusy() *Busy {
	return &Busy{Now: time.Now}
}

// Sleep spins until d has elapsed.
func (b *Busy) Sleep(d time.Duration) {
	deadline := b.Now().Add(d)
	for b.Now().Before(deadline) {
	}
}

// Timer waits by handing the goroutine back to the scheduler.
type Timer struct{}

// Sleep blocks the goroutine for d.
func (Timer) Sleep(d time.Duration) {
	time.Sleep(d)
}

// New returns the sleeper for a configured delay kind (busy|sleep).
func New(kind string) (Sleeper, error) {
	switch kind {
	case KindBusy:
		return NewBusy(), nil
	case KindSleep:
		return Timer{}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}
