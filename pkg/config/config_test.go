package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSettings = `{
    "server": {"ports": [7890, 7891]},
    "strips": {"length": 60, "count": 16},
    "leds": {"zigzag": true, "dithering": true, "brightness": 0.5}
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epilepsia.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSettings), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{":7890", ":7891"}, s.ListenAddrs())
	assert.Equal(t, 60, s.Geometry().StripLength)
	assert.Equal(t, 16, s.Geometry().StripCount)
	opts := s.PipelineOptions()
	assert.True(t, opts.Zigzag)
	assert.True(t, opts.Dithering)
	assert.Equal(t, 0.5, opts.Brightness)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epilepsia.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strips":{"length":32,"count":8}}`), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StripSettings{Length: 32, Count: 8}, s.Strips)
	assert.Equal(t, []int{7890}, s.Server.Ports)
	assert.Equal(t, 0.1, s.LEDs.Brightness)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epilepsia.json")
	s := DefaultSettings()
	s.LEDs.Brightness = 0.75
	s.LEDs.Dithering = true
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConfigMissingSettingsFile(t *testing.T) {
	conf := NewConfig()
	conf.SettingsFile = filepath.Join(t.TempDir(), "absent.json")
	s, err := conf.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.NotEmpty(t, conf.DeviceID)
}
