package pru

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// Lane is the firmware lifecycle of a single PRU.
type Lane interface {
	Load(firmware string) error
	Start() error
	// Stop returns ErrLaneNotRunning if the lane was not running.
	Stop() error
}

// DefaultFirmware lists the firmware image names per lane.
var DefaultFirmware = []string{
	"am335x-pru0-epilepsia-fw",
	"am335x-pru1-epilepsia-fw",
}

// LanesFor returns the number of lanes driving stripCount strips.
func LanesFor(stripCount int) int {
	if stripCount == 32 {
		return 2
	}
	return 1
}

// RemoteProcRoot is the sysfs class directory of remote processors.
const RemoteProcRoot = "/sys/class/remoteproc"

const stateRunning = "running"

// RemoteProc controls a PRU through the kernel remoteproc sysfs interface.
type RemoteProc struct {
	Dir string
}

// NewRemoteProc returns the lane at /sys/class/remoteproc/remoteproc<index>.
// On AM335x PRU0 and PRU1 are remoteproc1 and remoteproc2.
func NewRemoteProc(index int) *RemoteProc {
	return &RemoteProc{Dir: filepath.Join(RemoteProcRoot, fmt.Sprintf("remoteproc%d", index))}
}

// RemoteProcLanes returns the default lanes for AM335x.
func RemoteProcLanes() []Lane {
	return []Lane{NewRemoteProc(1), NewRemoteProc(2)}
}

// State reads the current state.
func (p *RemoteProc) State() (string, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, "state"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *RemoteProc) write(name, value string) error {
	return os.WriteFile(filepath.Join(p.Dir, name), []byte(value), 0644)
}

// Load implements Lane. A running processor is stopped first.
func (p *RemoteProc) Load(firmware string) error {
	state, err := p.State()
	if err != nil {
		return err
	}
	if state == stateRunning {
		glog.Infof("%s: stopping running firmware", p.Dir)
		if err := p.write("state", "stop"); err != nil {
			return err
		}
	}
	return p.write("firmware", firmware)
}

// Start implements Lane.
func (p *RemoteProc) Start() error {
	return p.write("state", "start")
}

// Stop implements Lane.
func (p *RemoteProc) Stop() error {
	state, err := p.State()
	if err != nil {
		return err
	}
	if state != stateRunning {
		return ErrLaneNotRunning
	}
	return p.write("state", "stop")
}
