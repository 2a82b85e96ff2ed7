// Package mmio provides 32 bit register access to memory mapped peripherals.
//
// Every access goes through sync/atomic, so the compiler can neither elide nor
// reorder a hardware visible load or store.
package mmio

import (
	"errors"
	"sync/atomic"
)

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrUnsupported  = errors.New("memory mapping not supported on this platform")
)

// Bus is a block of 32 bit registers addressed by byte offset.
type Bus interface {
	// Read32 loads the register at offset off.
	Read32(off uintptr) uint32
	// Write32 stores v into the register at offset off.
	Write32(off uintptr, v uint32)
}

// Mem is a register block backed by a word slice.
// It is used for mapped device memory as well as for plain in-memory blocks.
type Mem struct {
	words []uint32
}

// NewMem allocates a zeroed register block of size bytes.
func NewMem(size uintptr) *Mem {
	return &Mem{words: make([]uint32, size/4)}
}

// Read32 loads the register at offset off.
func (m *Mem) Read32(off uintptr) uint32 {
	return atomic.LoadUint32(&m.words[off/4])
}

// Write32 stores v into the register at offset off.
func (m *Mem) Write32(off uintptr, v uint32) {
	atomic.StoreUint32(&m.words[off/4], v)
}

// Size returns the size of the block in bytes.
func (m *Mem) Size() uintptr {
	return uintptr(len(m.words)) * 4
}
