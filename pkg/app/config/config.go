package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"imxgpio/pkg/delay"
	"imxgpio/pkg/gpio"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// supported backends
const (
	BackendIMX6UL = "imx6ul"
	BackendSim    = "sim"
	BackendGPIOD  = "gpiod"
	BackendRPI    = "rpi"
)

// Config holds the application configuration. Attention!
// Each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	// Backend selects the gpio hardware access (imx6ul|sim|gpiod|rpi).
	Backend         string          `yaml:"backend"`
	Led             LedConfig       `yaml:"led"`
	Key             KeyConfig       `yaml:"key"`
	Beep            PinConfig       `yaml:"beep"`
	Delay           string          `yaml:"delay"`
	PollIntervalInt int             `yaml:"pollinterval"`
	PollInterval    time.Duration   `yaml:"-"`
	Boot            BootConfig      `yaml:"boot"`
	Gpiod           GpiodConfig     `yaml:"gpiod"`
	Sim             SimConfig       `yaml:"sim"`
	DataFile        string          `yaml:"datafile"`
	EventLimit      int             `yaml:"eventlimit"`
	Flag            FlagConfig      `yaml:"-"`
	Debug           DebugConfig     `yaml:"debug"`
	Webserver       WebserverConfig `yaml:"webserver"`
	MQTT            MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	Debug      string
	ConfigFile string
}

// PinConfig defines a gpio line by port (1..5) and pin (0..31).
type PinConfig struct {
	Port int `yaml:"port"`
	Pin  int `yaml:"pin"`
}

// LedConfig defines the blinking led.
type LedConfig struct {
	PinConfig   `yaml:",inline"`
	ActiveLow   bool          `yaml:"activelow"`
	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
	// Count is the number of blink periods, 0 blinks until shutdown.
	Count int `yaml:"count"`
}

// KeyConfig defines the key whose interrupt toggles the beeper.
type KeyConfig struct {
	PinConfig `yaml:",inline"`
	Enabled   bool               `yaml:"enabled"`
	ModeStr   string             `yaml:"mode"`
	Mode      gpio.InterruptMode `yaml:"-"`
}

// BootConfig enables the platform bring-up done before the gpio ports are used.
type BootConfig struct {
	Clocks bool `yaml:"clocks"`
	Iomux  bool `yaml:"iomux"`
}

// GpiodConfig defines the gpio character devices, the chip name is formatted with the port number.
type GpiodConfig struct {
	Chip     string `yaml:"chip"`
	Consumer string `yaml:"consumer"`
}

// SimConfig defines the key emulation of the sim backend.
type SimConfig struct {
	KeyIntervalInt int           `yaml:"keyinterval"`
	KeyInterval    time.Duration `yaml:"-"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Backend: BackendSim,
		Led: LedConfig{
			PinConfig:   PinConfig{Port: 1, Pin: 3},
			ActiveLow:   true,
			IntervalInt: 200,
		},
		Key: KeyConfig{
			PinConfig: PinConfig{Port: 1, Pin: 18},
			Enabled:   true,
			ModeStr:   "falling",
		},
		Beep:            PinConfig{Port: 5, Pin: 1},
		Delay:           delay.KindSleep,
		PollIntervalInt: 10,
		Gpiod: GpiodConfig{
			Chip:     "gpiochip%d",
			Consumer: "imxgpio",
		},
		Sim:        SimConfig{KeyIntervalInt: 2000},
		EventLimit: 1000,
		Flag:       FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":   true,
				"health":    true,
				"data":      true,
				"events":    true,
				"registers": true,
				"pin":       false,
			},
		},
		MQTT: MQTTConfig{
			ClientID: "imxgpio",
			Topic:    "imxgpio",
		},
	}
}

func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	return c.convert()
}

// convert derives the typed fields and validates the configuration.
func (c *Config) convert() (err error) {
	switch c.Backend {
	case BackendIMX6UL, BackendSim, BackendGPIOD, BackendRPI:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Delay {
	case delay.KindBusy, delay.KindSleep:
	default:
		return fmt.Errorf("unknown delay %q", c.Delay)
	}

	if c.Key.Mode, err = gpio.ParseInterruptMode(c.Key.ModeStr); err != nil {
		return err
	}

	pins := map[string]PinConfig{"led": c.Led.PinConfig, "beep": c.Beep}
	if c.Key.Enabled {
		pins["key"] = c.Key.PinConfig
	}
	for name, p := range pins {
		if p.Port < 1 || p.Port > 5 || p.Pin < 0 || p.Pin >= gpio.Width {
			return fmt.Errorf("invalid %s pin %d.%d", name, p.Port, p.Pin)
		}
	}

	if c.PollIntervalInt <= 0 {
		c.PollIntervalInt = 10
	}

	c.Led.Interval = time.Duration(c.Led.IntervalInt) * time.Millisecond
	c.PollInterval = time.Duration(c.PollIntervalInt) * time.Millisecond
	c.Sim.KeyInterval = time.Duration(c.Sim.KeyIntervalInt) * time.Millisecond
	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	default:
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
