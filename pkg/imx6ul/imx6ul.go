// Package imx6ul holds the memory map of the i.MX6UL/ULL peripherals used by
// the GPIO driver and the boot time services the GPIO ports depend on:
// clock gating (CCM) and pad multiplexing (IOMUXC).
package imx6ul

import (
	"fmt"
	"sort"

	"imxgpio/pkg/mmio"
)

// physical base addresses
const (
	GPIO1 int64 = 0x0209C000
	GPIO2 int64 = 0x020A0000
	GPIO3 int64 = 0x020A4000
	GPIO4 int64 = 0x020A8000
	GPIO5 int64 = 0x020AC000

	CCM        int64 = 0x020C4000
	IOMUXC     int64 = 0x020E0000
	IOMUXCSNVS int64 = 0x02290000

	// BlockSize is the size mapped for each peripheral.
	BlockSize = 0x4000
)

// Ports is the number of GPIO ports.
const Ports = 5

// CCM clock gating registers CCGR0..CCGR6
const (
	ccgr0    uintptr = 0x68
	ccgrRegs         = 7

	// ClocksOn enables all clocks of a gating register in all modes.
	ClocksOn uint32 = 0xFFFFFFFF
)

var ErrInvalidPort = fmt.Errorf("invalid gpio port")

// GPIOBase returns the base address of GPIO port n (1..5).
func GPIOBase(n int) (int64, error) {
	if n < 1 || n > Ports {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPort, n)
	}
	return []int64{GPIO1, GPIO2, GPIO3, GPIO4, GPIO5}[n-1], nil
}

// EnableClocks switches on every gated peripheral clock.
// The registers are written in bulk with a known safe value, which is only
// appropriate at boot.
func EnableClocks(ccm mmio.Bus) {
	for i := uintptr(0); i < ccgrRegs; i++ {
		ccm.Write32(ccgr0+4*i, ClocksOn)
	}
}

// Pad describes the IOMUX configuration of one pad.
type Pad struct {
	// Name is the pad name of the reference manual.
	Name string
	// SNVS is set for pads controlled by IOMUXC_SNVS instead of IOMUXC.
	SNVS bool
	// MuxReg and PadReg are the offsets of SW_MUX_CTL and SW_PAD_CTL.
	MuxReg uintptr
	PadReg uintptr
	// Mux is the alternate function selecting the GPIO, Ctl the electrical setup.
	Mux uint32
	Ctl uint32
	// Port and Pin is the GPIO line routed to the pad.
	Port int
	Pin  int
}

// pad control values
const (
	// PadOutput: hysteresis off, 100k pull down, keeper, speed 100MHz, R0/6 drive, slow slew.
	PadOutput uint32 = 0x10B0
	// PadKey: hysteresis on, 22k pull up, pull enabled, speed 100MHz, drive disabled.
	PadKey uint32 = 0xF080
	// muxGPIO is ALT5 on every pad used here.
	muxGPIO uint32 = 0x5
)

// Pads are the pads known by name.
var Pads = map[string]Pad{
	"GPIO1_IO03":   {Name: "GPIO1_IO03", MuxReg: 0x68, PadReg: 0x2F4, Mux: muxGPIO, Ctl: PadOutput, Port: 1, Pin: 3},
	"UART1_CTS_B":  {Name: "UART1_CTS_B", MuxReg: 0x8C, PadReg: 0x318, Mux: muxGPIO, Ctl: PadKey, Port: 1, Pin: 18},
	"SNVS_TAMPER1": {Name: "SNVS_TAMPER1", SNVS: true, MuxReg: 0x0C, PadReg: 0x50, Mux: muxGPIO, Ctl: PadOutput, Port: 5, Pin: 1},
}

// PadNames returns the sorted names of the known pads.
func PadNames() []string {
	names := make([]string, 0, len(Pads))
	for n := range Pads {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPad returns the pad routed to the given GPIO line.
func LookupPad(port, pin int) (Pad, bool) {
	for _, p := range Pads {
		if p.Port == port && p.Pin == pin {
			return p, true
		}
	}
	return Pad{}, false
}

// MuxPad routes the pad to its GPIO function and sets its electrical properties.
// iomuxc must be the IOMUXC or IOMUXC_SNVS block matching pad.SNVS.
func MuxPad(iomuxc mmio.Bus, pad Pad) {
	iomuxc.Write32(pad.MuxReg, pad.Mux)
	iomuxc.Write32(pad.PadReg, pad.Ctl)
}
