//go:build !linux
// +build !linux

package mmio

// Region is a physical address range mapped into the process.
type Region struct {
	*Mem
}

// Open is not supported outside linux.
func Open(base int64, size int) (*Region, error) {
	return nil, ErrUnsupported
}

// Close releases the region.
func (r *Region) Close() error {
	return nil
}
