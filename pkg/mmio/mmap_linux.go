//go:build linux
// +build linux

package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/womat/debug"
	"golang.org/x/sys/unix"
)

// DevMem is the device file giving access to physical memory.
const DevMem = "/dev/mem"

// Region is a physical address range mapped into the process.
type Region struct {
	*Mem
	data []byte
}

// Open maps size bytes of physical memory starting at base.
// base must be page aligned.
func Open(base int64, size int) (*Region, error) {
	if size <= 0 || base%int64(os.Getpagesize()) != 0 {
		return nil, ErrInvalidParam
	}

	f, err := os.OpenFile(DevMem, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", DevMem, err)
	}
	defer func() { _ = f.Close() }()

	data, err := unix.Mmap(int(f.Fd()), base, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %#x: %w", base, err)
	}

	debug.DebugLog.Printf("mapped %d bytes of physical memory at %#x", size, base)

	words := unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), size/4)
	return &Region{Mem: &Mem{words: words}, data: data}, nil
}

// Close unmaps the region.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}

	err := unix.Munmap(r.data)
	r.data = nil
	r.Mem = nil
	return err
}
