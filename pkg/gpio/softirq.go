package gpio

import "sync"

// SoftIRQ keeps the interrupt mask, status and trigger modes of a port in
// software, for backends whose hardware is only reachable through edge events.
// It follows the register semantics: the status is set whether or not the pin
// is masked and is cleared only by Clear.
type SoftIRQ struct {
	mu     sync.Mutex
	mask   uint32
	status uint32
	modes  [Width]InterruptMode

	// Notify is called after a status bit of an enabled pin has been set.
	Notify func()
}

func (s *SoftIRQ) Enable(pin int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask |= 1 << uint(pin)
}

func (s *SoftIRQ) Disable(pin int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask &^= 1 << uint(pin)
}

func (s *SoftIRQ) Clear(pin int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status &^= 1 << uint(pin)
}

func (s *SoftIRQ) SetMode(pin int, mode InterruptMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[pin] = mode
}

func (s *SoftIRQ) Mode(pin int) InterruptMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modes[pin]
}

// Pending returns the enabled and pending pins.
func (s *SoftIRQ) Pending() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status & s.mask
}

// Edge records an edge seen on pin if it matches the pin's trigger mode.
func (s *SoftIRQ) Edge(pin int, rising bool) {
	s.mu.Lock()
	m := s.modes[pin]
	hit := m == RisingOrFallingEdge || (m == RisingEdge && rising) || (m == FallingEdge && !rising)
	if hit {
		s.status |= 1 << uint(pin)
	}
	enabled := s.mask&(1<<uint(pin)) != 0
	s.mu.Unlock()

	if hit && enabled && s.Notify != nil {
		s.Notify()
	}
}
