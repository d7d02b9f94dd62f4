// Package config provides the daemon options from flags, environment and
// the settings file.
package config

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "epilepsia"

// Config provides the options of the daemon.
type Config struct {
	// SettingsFile is the JSON settings file.
	SettingsFile string
	// Persist writes settings changed at runtime back to SettingsFile.
	Persist bool
	// Simulate runs the PRU firmware emulation instead of real hardware.
	Simulate bool
	// Handshake is the PRU handshake policy: strict or reference.
	Handshake string

	// DeviceID identifies this device on the control bus.
	DeviceID string
	// MQTTBrokerURL enables the MQTT bridge, e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	// StatusInterval is how often status is published.
	StatusInterval time.Duration
	// HTTPAddr enables the HTTP API, e.g. :8080
	HTTPAddr string
}

var defaultConfig = Config{
	SettingsFile:   DefaultSettingsFile,
	Handshake:      "strict",
	StatusInterval: 10 * time.Second,
}

func init() {
	if val := os.Getenv("EPILEPSIA_CONFIG"); val != "" {
		defaultConfig.SettingsFile = val
	}
	if val := os.Getenv("EPILEPSIA_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("EPILEPSIA_HTTP_ADDR"); val != "" {
		defaultConfig.HTTPAddr = val
	}
	defaultConfig.DeviceID = MachineID()
}

// MachineID returns an ID of this machine specific to this application,
// or the host name when the machine has no ID.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:16]
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return appID
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.SettingsFile, "config", defaultConfig.SettingsFile, "Settings file")
	flag.BoolVar(&defaultConfig.Persist, "persist", defaultConfig.Persist, "Save settings changed at runtime")
	flag.BoolVar(&defaultConfig.Simulate, "simulate", defaultConfig.Simulate, "Emulate PRUs in process")
	flag.StringVar(&defaultConfig.Handshake, "handshake", defaultConfig.Handshake, "PRU handshake: strict or reference")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Status publish interval")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP API address, empty to disable")
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

// LoadSettings loads the settings file. A missing file yields the defaults.
func (c *Config) LoadSettings() (Settings, error) {
	s, err := Load(c.SettingsFile)
	if errors.Is(err, fs.ErrNotExist) {
		glog.Warningf("%s not found, using defaults", c.SettingsFile)
		return s, nil
	}
	return s, err
}

// MustLoadSettings loads the settings file and fails on error.
func (c *Config) MustLoadSettings() Settings {
	s, err := c.LoadSettings()
	if err != nil {
		log.Fatalln(err)
	}
	if err := s.Geometry().Validate(); err != nil {
		log.Fatalln(err)
	}
	return s
}
