// Package config gathers the daemon configuration from defaults,
// RFLIGHT_* environment variables, an optional TOML file and command
// line flags, in increasing precedence.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/rflight/pkg/hw"
	"github.com/robotalks/rflight/pkg/light/overlay"
	"github.com/robotalks/rflight/pkg/remote"
)

// Config is the daemon configuration.
type Config struct {
	// File is the TOML file loaded by Load.
	File string `toml:"-"`

	ID          string `toml:"id"`
	Description string `toml:"description"`
	// DeviceName is advertised over Bluetooth.
	DeviceName string `toml:"device_name"`
	// DongleName is shown by the 2.4G receiver.
	DongleName string `toml:"dongle_name"`
	// SettingsPath is where user settings persist.
	SettingsPath string `toml:"settings_path"`

	Radio   RadioConfig   `toml:"radio"`
	LED     LEDConfig     `toml:"led"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	HTTP    HTTPConfig    `toml:"http"`
	Overlay OverlayConfig `toml:"overlay"`
	Input   InputConfig   `toml:"input"`
}

// RadioConfig locates the radio.
type RadioConfig struct {
	Port     string `toml:"port"`
	Baud     int    `toml:"baud"`
	ResetPin string `toml:"reset_pin"`
	WakePin  string `toml:"wake_pin"`
	// ResetActiveLow inverts the reset line.
	ResetActiveLow bool `toml:"reset_active_low"`
}

// LEDConfig locates the LED chain.
type LEDConfig struct {
	// SPI is the port of the APA102 chain, empty to disable.
	SPI        string `toml:"spi"`
	SPIHz      int64  `toml:"spi_hz"`
	Brightness uint8  `toml:"brightness"`
}

// MQTTConfig configures the remote bridge.
type MQTTConfig struct {
	// URL is like mqtt://host:port/topic-prefix/, empty to disable.
	URL string `toml:"url"`
}

// HTTPConfig configures the local endpoint serving /metrics and /leds.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// OverlayConfig selects indicator variants.
type OverlayConfig struct {
	ChargeMarch  bool `toml:"charge_march"`
	LinkMarch    bool `toml:"link_march"`
	SystemLinger bool `toml:"system_linger"`
}

// InputConfig enables a gamepad as the function keys.
type InputConfig struct {
	Gamepad bool `toml:"gamepad"`
	// Index selects /dev/input/jsN, -1 for the first found.
	Index int `toml:"index"`
}

var defaultConfig = Config{
	DeviceName:   "RFLight KB",
	DongleName:   "RFLight Receiver",
	SettingsPath: "/var/lib/rflight/settings.pb",
	Radio: RadioConfig{
		Port: "/dev/ttyS1",
		Baud: hw.DefaultBaudRate,
	},
	LED: LEDConfig{
		SPIHz:      4000000,
		Brightness: hw.MaxBrightness,
	},
	MQTT:  MQTTConfig{URL: "mqtt://localhost:1883/rflight/"},
	HTTP:  HTTPConfig{Addr: ":9110"},
	Input: InputConfig{Index: -1},
}

func init() {
	if val := os.Getenv("RFLIGHT_CONFIG"); val != "" {
		defaultConfig.File = val
	}
	if val := os.Getenv("RFLIGHT_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = machineID()
	}
	if val := os.Getenv("RFLIGHT_SERIAL"); val != "" {
		defaultConfig.Radio.Port = val
	}
	if val, ok := os.LookupEnv("RFLIGHT_MQTT_URL"); ok {
		defaultConfig.MQTT.URL = val
	}
}

func machineID() string {
	id, err := machineid.ProtectedID(remote.DeviceType)
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return "local"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

func bindFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.File, "config", c.File, "TOML configuration file")
	fs.StringVar(&c.ID, "id", c.ID, "Device ID on the broker")
	fs.StringVar(&c.DeviceName, "name", c.DeviceName, "Bluetooth device name")
	fs.StringVar(&c.SettingsPath, "settings", c.SettingsPath, "Settings file")
	fs.StringVar(&c.Radio.Port, "serial", c.Radio.Port, "Radio serial port")
	fs.IntVar(&c.Radio.Baud, "baud", c.Radio.Baud, "Radio serial baud rate")
	fs.StringVar(&c.Radio.ResetPin, "reset-pin", c.Radio.ResetPin, "GPIO of the radio reset line")
	fs.StringVar(&c.Radio.WakePin, "wake-pin", c.Radio.WakePin, "GPIO of the radio wake line")
	fs.StringVar(&c.LED.SPI, "led-spi", c.LED.SPI, "SPI port of the APA102 chain")
	fs.StringVar(&c.MQTT.URL, "mqtt", c.MQTT.URL, "MQTT broker URL, empty to disable")
	fs.StringVar(&c.HTTP.Addr, "http", c.HTTP.Addr, "Address serving /metrics and /leds, empty to disable")
	fs.BoolVar(&c.Input.Gamepad, "gamepad", c.Input.Gamepad, "Use a gamepad as the function keys")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	bindFlags(flag.CommandLine, &defaultConfig)
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile decodes the TOML file over c.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	for _, key := range md.Undecoded() {
		glog.Warningf("%s: unknown key %s", path, key)
	}
	c.File = path
	return nil
}

// Load creates the Config from defaults, the file and the flags set
// on fs, which must have been bound by SetupFlags.
func Load(fs *flag.FlagSet) (*Config, error) {
	conf := NewConfig()
	if conf.File == "" {
		return conf, conf.Validate()
	}
	if err := conf.LoadFile(conf.File); err != nil {
		return nil, err
	}
	// flags take precedence over the file.
	override := flag.NewFlagSet("override", flag.ContinueOnError)
	bindFlags(override, conf)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if o := override.Lookup(f.Name); o != nil && err == nil {
			err = o.Value.Set(f.Value.String())
		}
	})
	if err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("device id must be specified")
	}
	if c.Radio.Port == "" {
		return fmt.Errorf("radio serial port must be specified")
	}
	if c.LED.Brightness > hw.MaxBrightness {
		return fmt.Errorf("LED brightness %d out of range 0-%d", c.LED.Brightness, hw.MaxBrightness)
	}
	return nil
}

// Ref is the broker reference of the device.
func (c *Config) Ref() remote.Ref {
	return remote.Ref{Type: remote.DeviceType, ID: c.ID}
}

// Meta is published by the bridge.
func (c *Config) Meta() remote.Meta {
	return remote.Meta{Description: c.Description, DeviceName: c.DeviceName}
}

// SPIFrequency is the APA102 clock.
func (c *LEDConfig) SPIFrequency() physic.Frequency {
	return physic.Frequency(c.SPIHz) * physic.Hertz
}

// OverlayOptions converts the overlay section.
func (c *Config) OverlayOptions() overlay.Options {
	return overlay.Options{
		ChargeMarch:  c.Overlay.ChargeMarch,
		LinkMarch:    c.Overlay.LinkMarch,
		SystemLinger: c.Overlay.SystemLinger,
	}
}
