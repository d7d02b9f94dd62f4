package pru

import (
	"sync"
	"time"
)

// Simulator emulates the PRU firmware against a Region, so the driver
// runs on hosts without PRUs.
type Simulator struct {
	// DrainTime is how long a lane takes to clock out a frame.
	DrainTime time.Duration
	// PollInterval is how often lanes poll their flags.
	PollInterval time.Duration
	// Capture keeps copies of the frames drained by lane 0.
	Capture bool

	region *Region
	lanes  []*SimulatedLane

	lock   sync.Mutex
	frames [][]byte
	count  uint64
}

// NewSimulator creates a Simulator with two lanes on region.
func NewSimulator(region *Region) *Simulator {
	s := &Simulator{
		DrainTime:    50 * time.Microsecond,
		PollInterval: 10 * time.Microsecond,
		region:       region,
	}
	for n := 0; n < 2; n++ {
		s.lanes = append(s.lanes, &SimulatedLane{sim: s, index: n})
	}
	return s
}

// Lanes returns the simulated lanes.
func (s *Simulator) Lanes() []Lane {
	lanes := make([]Lane, len(s.lanes))
	for n, l := range s.lanes {
		lanes[n] = l
	}
	return lanes
}

// Lane returns a simulated lane.
func (s *Simulator) Lane(n int) *SimulatedLane {
	return s.lanes[n]
}

// Drained returns the number of frames drained by lane 0.
func (s *Simulator) Drained() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.count
}

// Frames returns the captured frames.
func (s *Simulator) Frames() [][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([][]byte(nil), s.frames...)
}

func (s *Simulator) drained(lane int, length, count byte) {
	if lane != 0 {
		return
	}
	var data []byte
	if s.Capture {
		size := int(length) * 3 * int(count)
		data = append([]byte(nil), s.region.Frame()[:size]...)
	}
	s.lock.Lock()
	s.count++
	if data != nil {
		s.frames = append(s.frames, data)
	}
	s.lock.Unlock()
}

// SimulatedLane runs one emulated firmware.
type SimulatedLane struct {
	sim   *Simulator
	index int

	lock     sync.Mutex
	firmware string
	stopCh   chan struct{}
	doneCh   chan struct{}
	history  []string
	halted   bool
}

// History returns the lifecycle transitions, e.g. "load:name", "start", "stop".
func (l *SimulatedLane) History() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.history...)
}

// Halted reports whether the firmware halted on the halt sentinel.
func (l *SimulatedLane) Halted() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.halted
}

// Running reports whether the lane is started.
func (l *SimulatedLane) Running() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.stopCh != nil
}

// Load implements Lane.
func (l *SimulatedLane) Load(firmware string) error {
	l.lock.Lock()
	running := l.stopCh != nil
	l.lock.Unlock()
	if running {
		l.Stop()
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.firmware = firmware
	l.history = append(l.history, "load:"+firmware)
	return nil
}

// Start implements Lane.
func (l *SimulatedLane) Start() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.stopCh != nil {
		return nil
	}
	l.stopCh, l.doneCh = make(chan struct{}), make(chan struct{})
	l.halted = false
	l.history = append(l.history, "start")
	go l.run(l.stopCh, l.doneCh)
	return nil
}

// Stop implements Lane.
func (l *SimulatedLane) Stop() error {
	l.lock.Lock()
	stopCh, doneCh := l.stopCh, l.doneCh
	l.stopCh, l.doneCh = nil, nil
	if stopCh != nil {
		l.history = append(l.history, "stop")
	}
	l.lock.Unlock()
	if stopCh == nil {
		return ErrLaneNotRunning
	}
	close(stopCh)
	<-doneCh
	return nil
}

// waitHost waits until the host cleared the flag of this lane.
func (l *SimulatedLane) waitHost(stopCh <-chan struct{}) bool {
	for l.sim.region.Flag(l.index) != 0 {
		select {
		case <-stopCh:
			return false
		case <-time.After(l.sim.PollInterval):
		}
	}
	return true
}

func (l *SimulatedLane) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	region := l.sim.region
	for {
		region.SetFlag(l.index, 1)
		if !l.waitHost(stopCh) {
			return
		}
		length, count := region.Config()
		if count == HaltStripCount || !l.serves(count) {
			l.lock.Lock()
			l.halted = true
			l.lock.Unlock()
			<-stopCh
			return
		}
		l.sim.drained(l.index, length, count)
		select {
		case <-stopCh:
			return
		case <-time.After(l.sim.DrainTime):
		}
	}
}

func (l *SimulatedLane) serves(count byte) bool {
	switch count {
	case 8, 16:
		return l.index == 0
	case 32:
		return true
	}
	return false
}
