package app

import (
	"net/url"
	"sync"

	"imxgpio/pkg/app/config"
	"imxgpio/pkg/delay"
	"imxgpio/pkg/eventlog"
	"imxgpio/pkg/irq"
	"imxgpio/pkg/led"
	"imxgpio/pkg/mqtt"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// events is the persistent event log, nil if no datafile is configured
	events *eventlog.Store

	// banks are the opened gpio ports by port number
	banks map[int]*bank

	// irq dispatches the pin interrupts to their handlers
	irq *irq.Dispatcher

	// blinker drives the led
	blinker *led.Blinker

	// state holds the counters and levels reported by /data
	state state

	// wg waits for the blink and emulation goroutines
	wg sync.WaitGroup
	// quit stops the blink and emulation goroutines
	quit chan struct{}

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:   fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:  mqtt.New(config.MQTT.Topic),
		irq:   irq.New(config.PollInterval),
		banks: map[int]*bank{},

		quit:     make(chan struct{}),
		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	app.irq.Start()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.blinker.Run(app.config.Led.Count, app.quit)
		debug.InfoLog.Print("blinking finished")
	}()

	if app.config.Backend == config.BackendSim && app.config.Key.Enabled && app.config.Sim.KeyInterval > 0 {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.emulateKey()
		}()
	}

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if err = app.openBanks(); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	if err = app.boot(); err != nil {
		debug.ErrorLog.Printf("can't boot platform: %v", err)
		return err
	}

	if app.config.DataFile != "" {
		if app.events, err = eventlog.Open(app.config.DataFile, app.config.EventLimit); err != nil {
			debug.ErrorLog.Printf("can't open event log: %v", err)
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	if err = app.initLed(); err != nil {
		debug.ErrorLog.Printf("can't init led: %v", err)
		return err
	}
	app.initBeep()

	if app.config.Key.Enabled {
		if err = app.initKey(); err != nil {
			debug.ErrorLog.Printf("can't init key: %v", err)
			return err
		}
	}

	// initDefaultRoutes should be always called last because it may access things like app.banks
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// initLed configures the led pin and the blinker.
func (app *App) initLed() error {
	s, err := delay.New(app.config.Delay)
	if err != nil {
		return err
	}

	c := app.config.Led
	app.blinker = &led.Blinker{
		Port:      app.banks[c.Port].ctrl,
		Pin:       c.Pin,
		ActiveLow: c.ActiveLow,
		Interval:  c.Interval,
		Sleeper:   s,
		OnChange:  app.ledChanged,
	}
	app.blinker.Init()
	return nil
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart. (see cmd/main.go)
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/main.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close stops all services and releases the gpio ports.
func (app *App) Close() error {
	if app.quit == nil {
		return nil
	}

	close(app.quit)
	app.wg.Wait()

	if app.irq != nil {
		_ = app.irq.Close()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
		app.mqtt.Close()
	}

	if app.events != nil {
		_ = app.events.Close()
	}

	app.closeBanks()
	return nil
}
