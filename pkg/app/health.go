package app

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"imxgpio/pkg/gpio"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// portHealth is the state of one opened gpio port.
type portHealth struct {
	Port int
	// Registers is true if the port is accessed through its registers
	Registers bool
	// Simulated is true for the sim backend
	Simulated bool
	// Pins are the configured pins of the port, e.g. "led 3"
	Pins []string
	// Pending is the mask of enabled and pending interrupts
	Pending string
}

// ports returns the health of all opened ports ordered by port number.
func (app *App) ports() []portHealth {
	pins := map[int][]string{}
	add := func(name string, p, pin int) { pins[p] = append(pins[p], fmt.Sprintf("%s %d", name, pin)) }
	add("led", app.config.Led.Port, app.config.Led.Pin)
	add("beep", app.config.Beep.Port, app.config.Beep.Pin)
	if app.config.Key.Enabled {
		add("key", app.config.Key.Port, app.config.Key.Pin)
	}

	nums := make([]int, 0, len(app.banks))
	for n := range app.banks {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	ports := make([]portHealth, 0, len(nums))
	for _, n := range nums {
		b := app.banks[n]
		var pending uint32
		b.ctrl.Do(func(c gpio.Controller) { pending = c.Pending() })

		ports = append(ports, portHealth{
			Port:      n,
			Registers: b.regs != nil,
			Simulated: b.sim != nil,
			Pins:      pins[n],
			Pending:   fmt.Sprintf("0x%08x", pending),
		})
	}
	return ports
}

// HandleHealth returns data about the health of myself and the opened gpio ports.
// output example:
//  {"NumGoroutines":11,"HeapAllocatedMB":3,"Version":"1.6.10+20261001","Backend":"sim",
//   "Ports":[{"Port":1,"Registers":true,"Simulated":true,"Pins":["led 3","key 18"],"Pending":"0x00000000"}],
//   "KeyCount":4,"ProgLang":"go1.24.7"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		app.state.Lock()
		keys, toggles := app.state.keyCount, app.state.ledToggle
		app.state.Unlock()

		healthData := struct {
			NumGoroutines   int
			NumCPU          int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Version         string
			Backend         string
			Ports           []portHealth
			KeyCount        int
			LedToggles      int
			EventLog        bool
			MQTT            bool
			ProgLang        string
			HostName        string
			Time            string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			NumCPU:          runtime.NumCPU(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			Version:         VERSION,
			Backend:         app.config.Backend,
			Ports:           app.ports(),
			KeyCount:        keys,
			LedToggles:      toggles,
			EventLog:        app.events != nil,
			MQTT:            app.config.MQTT.Connection != "",
			ProgLang:        runtime.Version(),
			HostName:        host,
			Time:            time.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
