//go:build !linux
// +build !linux

package gpiochip

import (
	"errors"

	"imxgpio/pkg/gpio"
)

var ErrUnsupported = errors.New("not supported")

// Chip is not available outside linux.
type Chip struct {
	gpio.Controller
}

// Open always fails outside linux.
func Open(name, consumer string, notify func()) (*Chip, error) {
	return nil, ErrUnsupported
}

// Close releases nothing.
func (c *Chip) Close() error {
	return nil
}
