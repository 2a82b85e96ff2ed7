package led

import (
	"os"
	"testing"
	"time"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/gpiosim"

	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// recorder is a sleeper that only records the requested delays.
type recorder struct {
	slept []time.Duration
}

func (r *recorder) Sleep(d time.Duration) {
	r.slept = append(r.slept, d)
}

func TestBlinkTrace(t *testing.T) {
	sim := gpiosim.New()
	port := gpio.NewPort(sim)

	// a sibling output that must survive every write of the blink loop
	port.Configure(10, gpio.PinConfig{Direction: gpio.Output, OutputLogic: 1})

	r := &recorder{}
	b := &Blinker{Port: port, Pin: 3, ActiveLow: true, Interval: 200 * time.Millisecond, Sleeper: r}
	b.Init()

	port.Write(3, 0)
	if v := port.Read(3); v != 0 {
		t.Fatalf("Read(3) = %d after writing 0", v)
	}
	port.Write(3, 1)
	if v := port.Read(3); v != 1 {
		t.Fatalf("Read(3) = %d after writing 1", v)
	}

	sim.ResetTrace()
	b.Run(200, nil)

	trace := sim.Trace()
	if len(trace) != 400 {
		t.Fatalf("%d register writes, want 400", len(trace))
	}
	for i, a := range trace {
		want := uint32(1 << 10)
		if i%2 == 1 {
			want |= 1 << 3
		}
		if a.Off != gpio.DR || a.Value != want {
			t.Fatalf("write %d = %+v, want DR=%#x", i, a, want)
		}
	}

	if len(r.slept) != 400 {
		t.Fatalf("%d delays, want 400", len(r.slept))
	}
	for _, d := range r.slept {
		if d != 200*time.Millisecond {
			t.Fatalf("delay %v, want 200ms", d)
		}
	}
}

func TestInitSwitchesOn(t *testing.T) {
	for _, activeLow := range []bool{true, false} {
		port := gpio.NewPort(gpiosim.New())
		b := &Blinker{Port: port, Pin: 3, ActiveLow: activeLow, Sleeper: &recorder{}}
		b.Init()

		if port.Direction(3) != gpio.Output {
			t.Fatalf("activeLow=%v: pin not an output", activeLow)
		}
		if !b.IsOn() {
			t.Fatalf("activeLow=%v: led off after Init", activeLow)
		}

		b.Off()
		if b.IsOn() {
			t.Fatalf("activeLow=%v: led on after Off", activeLow)
		}
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	quit := make(chan struct{})
	close(quit)

	r := &recorder{}
	b := &Blinker{Port: gpio.NewPort(gpiosim.New()), Pin: 3, Sleeper: r}
	b.Run(0, quit)

	if len(r.slept) != 0 {
		t.Fatalf("blinked %d half periods after quit", len(r.slept))
	}
}

func TestOnChange(t *testing.T) {
	var changes []bool
	b := &Blinker{
		Port:     gpio.NewPort(gpiosim.New()),
		Pin:      0,
		Sleeper:  &recorder{},
		OnChange: func(on bool) { changes = append(changes, on) },
	}

	b.Run(2, nil)

	if len(changes) != 4 || !changes[0] || changes[1] || !changes[2] || changes[3] {
		t.Fatalf("changes = %v", changes)
	}
}
