package app

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"imxgpio/pkg/gpio"
	"imxgpio/pkg/port"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// defaultEvents is the number of events returned by /events without ?n=
const defaultEvents = 50

// pinResp is the state of one configured pin.
type pinResp struct {
	Port      int
	Pin       int
	Level     int
	Direction string `json:",omitempty"`
	Mode      string `json:",omitempty"`
	Enabled   bool
	Pending   bool
}

type dataResp struct {
	Backend    string
	Led        pinResp
	LedOn      bool
	LedToggles int
	Beep       pinResp
	BeepOn     bool
	Key        *pinResp `json:",omitempty"`
	KeyCount   int
	LastKey    time.Time
}

// registersResp holds the registers of a port formatted as hex strings.
type registersResp struct {
	Port                                         int
	DR, GDIR, PSR, ICR1, ICR2, IMR, ISR, EdgeSel string
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// pinState reads the state of a pin. Direction and mode are only known for register backends.
func (app *App) pinState(portNum, pin int) pinResp {
	b := app.banks[portNum]
	r := pinResp{Port: portNum, Pin: pin}

	b.ctrl.Do(func(c gpio.Controller) {
		r.Level = c.Read(pin)
		r.Pending = c.Pending()&(1<<uint(pin)) != 0

		if b.regs == nil {
			return
		}
		r.Direction = b.regs.Direction(pin).String()
		r.Mode = b.regs.InterruptMode(pin).String()
		r.Enabled = b.regs.InterruptEnabled(pin)
	})

	return r
}

// HandleData returns the state of the led, the beeper and the key.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		d := dataResp{
			Backend: app.config.Backend,
			Led:     app.pinState(app.config.Led.Port, app.config.Led.Pin),
			Beep:    app.pinState(app.config.Beep.Port, app.config.Beep.Pin),
		}
		if app.config.Key.Enabled {
			k := app.pinState(app.config.Key.Port, app.config.Key.Pin)
			d.Key = &k
		}

		app.state.Lock()
		d.LedOn, d.LedToggles = app.state.ledOn, app.state.ledToggle
		d.BeepOn = app.state.beepOn
		d.KeyCount, d.LastKey = app.state.keyCount, app.state.lastKey
		app.state.Unlock()

		return ctx.JSON(d)
	}
}

// HandleEvents returns the newest events of the event log, ?n= limits the count.
func (app *App) HandleEvents() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request events")

		if app.events == nil {
			return fiber.NewError(http.StatusNotFound, "no event log configured")
		}

		n := defaultEvents
		if s := ctx.Query("n"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v <= 0 {
				return fiber.NewError(http.StatusBadRequest, fmt.Sprintf("invalid count %q", s))
			}
			n = v
		}

		events, err := app.events.Last(n)
		if err != nil {
			debug.ErrorLog.Printf("reading event log: %v", err)
			return err
		}
		return ctx.JSON(events)
	}
}

// HandleRegisters returns the registers of all ports with a register view.
func (app *App) HandleRegisters() fiber.Handler {
	hex := func(v uint32) string { return fmt.Sprintf("0x%08x", v) }

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request registers")

		nums := make([]int, 0, len(app.banks))
		for n, b := range app.banks {
			if b.regs != nil {
				nums = append(nums, n)
			}
		}
		sort.Ints(nums)

		resp := []registersResp{}
		for _, n := range nums {
			var r gpio.Registers
			app.banks[n].ctrl.Do(func(gpio.Controller) { r = app.banks[n].regs.Snapshot() })

			resp = append(resp, registersResp{
				Port: n,
				DR:   hex(r.DR), GDIR: hex(r.GDIR), PSR: hex(r.PSR),
				ICR1: hex(r.ICR1), ICR2: hex(r.ICR2),
				IMR: hex(r.IMR), ISR: hex(r.ISR), EdgeSel: hex(r.EdgeSel),
			})
		}
		return ctx.JSON(resp)
	}
}

// HandlePin writes a level to an output pin: POST /pin/:port/:pin/:value
func (app *App) HandlePin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request pin")

		portNum, err1 := strconv.Atoi(ctx.Params("port"))
		pin, err2 := strconv.Atoi(ctx.Params("pin"))
		value, err3 := strconv.Atoi(ctx.Params("value"))
		if err1 != nil || err2 != nil || err3 != nil || pin < 0 || pin >= gpio.Width || (value != 0 && value != 1) {
			return fiber.NewError(http.StatusBadRequest, "invalid pin or value")
		}

		b, ok := app.banks[portNum]
		if !ok {
			return fiber.NewError(http.StatusNotFound, fmt.Sprintf("port %d not opened", portNum))
		}

		b.ctrl.Write(pin, value)
		app.record(port.Event{Timestamp: time.Now(), Type: port.Output, Name: "web", Port: portNum, Pin: pin, Level: port.State(value)})

		return ctx.JSON(app.pinState(portNum, pin))
	}
}
