package pru

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemoteProcDir(t *testing.T, state string) *RemoteProc {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state"), []byte(state+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "firmware"), nil, 0644))
	return &RemoteProc{Dir: dir}
}

func readFile(t *testing.T, p *RemoteProc, name string) string {
	data, err := os.ReadFile(filepath.Join(p.Dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRemoteProcLifecycle(t *testing.T) {
	p := newRemoteProcDir(t, "offline")
	state, err := p.State()
	require.NoError(t, err)
	assert.Equal(t, "offline", state)

	require.NoError(t, p.Load("am335x-pru0-epilepsia-fw"))
	assert.Equal(t, "am335x-pru0-epilepsia-fw", readFile(t, p, "firmware"))
	require.NoError(t, p.Start())
	assert.Equal(t, "start", readFile(t, p, "state"))

	assert.Equal(t, ErrLaneNotRunning, p.Stop())
	require.NoError(t, os.WriteFile(filepath.Join(p.Dir, "state"), []byte("running\n"), 0644))
	require.NoError(t, p.Stop())
	assert.Equal(t, "stop", readFile(t, p, "state"))
}

func TestRemoteProcLoadStopsRunning(t *testing.T) {
	p := newRemoteProcDir(t, "running")
	require.NoError(t, p.Load("fw"))
	assert.Equal(t, "stop", readFile(t, p, "state"))
}

func TestRemoteProcMissing(t *testing.T) {
	p := &RemoteProc{Dir: filepath.Join(t.TempDir(), "absent")}
	assert.Error(t, p.Load("fw"))
	assert.Error(t, p.Stop())
}

func TestSimulatedLaneStop(t *testing.T) {
	region, err := NewMemoryRegion(DefaultLayout)
	require.NoError(t, err)
	sim := NewSimulator(region)
	lane := sim.Lane(0)
	assert.Equal(t, ErrLaneNotRunning, lane.Stop())
	require.NoError(t, lane.Start())
	assert.True(t, lane.Running())
	require.NoError(t, lane.Stop())
	assert.False(t, lane.Running())
}
