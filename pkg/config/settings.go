package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/epilepsia/epilepsia.go/pkg/frame"
)

// DefaultSettingsFile is where the daemon looks for its settings.
const DefaultSettingsFile = "/etc/epilepsia/epilepsia.json"

// Settings is the persisted settings file.
type Settings struct {
	Server ServerSettings `json:"server"`
	Strips StripSettings  `json:"strips"`
	LEDs   LEDSettings    `json:"leds"`
}

// ServerSettings configures the OPC server.
type ServerSettings struct {
	Ports []int `json:"ports"`
}

// StripSettings is the strip geometry.
type StripSettings struct {
	Length int `json:"length"`
	Count  int `json:"count"`
}

// LEDSettings are the color correction settings.
type LEDSettings struct {
	Zigzag     bool    `json:"zigzag"`
	Dithering  bool    `json:"dithering"`
	Brightness float64 `json:"brightness"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Ports: []int{7890}},
		Strips: StripSettings{Length: 64, Count: 32},
		LEDs:   LEDSettings{Brightness: 0.1},
	}
}

// Load reads settings from path. Fields absent from the file keep
// their default values.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path, replacing the file atomically.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".epilepsia-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(append(data, '\n')); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Geometry returns the strip geometry.
func (s *Settings) Geometry() frame.Geometry {
	return frame.Geometry{StripLength: s.Strips.Length, StripCount: s.Strips.Count}
}

// PipelineOptions returns the options of the frame pipeline.
func (s *Settings) PipelineOptions() frame.Options {
	return frame.Options{
		Geometry:   s.Geometry(),
		Zigzag:     s.LEDs.Zigzag,
		Dithering:  s.LEDs.Dithering,
		Brightness: s.LEDs.Brightness,
	}
}

// ListenAddrs returns the OPC listen addresses.
func (s *Settings) ListenAddrs() []string {
	addrs := make([]string, len(s.Server.Ports))
	for n, port := range s.Server.Ports {
		addrs[n] = net.JoinHostPort("", strconv.Itoa(port))
	}
	return addrs
}
