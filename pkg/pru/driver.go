package pru

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/epilepsia/epilepsia.go/pkg/frame"
	"github.com/epilepsia/epilepsia.go/pkg/framework"
)

// Handshake selects the ordering of frame copy and flag clearing.
type Handshake int

const (
	// HandshakeStrict copies the frame first and clears the flags after,
	// so lanes never read a partially written frame.
	HandshakeStrict Handshake = iota
	// HandshakeReference clears the flags before copying the frame.
	// Lanes may start draining while the copy is in progress.
	HandshakeReference
)

// String implements fmt.Stringer.
func (h Handshake) String() string {
	switch h {
	case HandshakeStrict:
		return "strict"
	case HandshakeReference:
		return "reference"
	}
	return fmt.Sprintf("Handshake(%d)", int(h))
}

// ParseHandshake parses the String form of a Handshake.
func ParseHandshake(s string) (Handshake, error) {
	switch s {
	case "strict", "":
		return HandshakeStrict, nil
	case "reference":
		return HandshakeReference, nil
	}
	return HandshakeStrict, fmt.Errorf("unknown handshake %q", s)
}

// Defaults of Options.
const (
	DefaultPollInterval = 15 * time.Microsecond
	DefaultMaxPolls     = 10000
	DefaultHaltDelay    = 200 * time.Millisecond
)

// Options configures a Driver.
type Options struct {
	Geometry  frame.Geometry
	Firmware  []string
	Handshake Handshake

	PollInterval time.Duration
	MaxPolls     int
	HaltDelay    time.Duration
}

func (o *Options) applyDefaults() {
	if o.Firmware == nil {
		o.Firmware = DefaultFirmware
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultMaxPolls
	}
	if o.HaltDelay < 0 {
		o.HaltDelay = 0
	}
}

// Driver hands frames over to the PRU lanes.
type Driver struct {
	opts   Options
	region *Region
	lanes  []Lane

	lock   sync.Mutex
	frames uint64
	closed bool
}

// New writes the strip configuration, then loads and starts the
// firmware on the lanes needed by the geometry.
func New(region *Region, lanes []Lane, opts Options) (*Driver, error) {
	opts.applyDefaults()
	geo := opts.Geometry
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if geo.FrameSize() > region.Layout().FrameCapacity() {
		return nil, ErrFrameTooLarge
	}
	count := LanesFor(geo.StripCount)
	if len(lanes) < count || len(opts.Firmware) < count {
		return nil, fmt.Errorf("%d strips need %d lanes", geo.StripCount, count)
	}
	if geo.StripLength >= 256 {
		glog.Warningf("strip length %d does not fit the configuration byte, lanes see %d",
			geo.StripLength, byte(geo.StripLength))
	}

	d := &Driver{opts: opts, region: region, lanes: lanes[:count]}
	region.WriteConfig(byte(geo.StripLength), byte(geo.StripCount))
	for n, lane := range d.lanes {
		if err := lane.Load(opts.Firmware[n]); err != nil {
			d.stopLanes(n)
			return nil, &LaneError{Lane: n, Op: "load", Err: err}
		}
		if err := lane.Start(); err != nil {
			d.stopLanes(n)
			return nil, &LaneError{Lane: n, Op: "start", Err: err}
		}
		glog.Infof("PRU%d started with %s", n, opts.Firmware[n])
	}
	return d, nil
}

// Geometry returns the configured geometry.
func (d *Driver) Geometry() frame.Geometry {
	return d.opts.Geometry
}

// Lanes returns the number of active lanes.
func (d *Driver) Lanes() int {
	return len(d.lanes)
}

// Frames returns the number of frames handed over.
func (d *Driver) Frames() uint64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.frames
}

// Ready reports whether all active lanes are idle.
func (d *Driver) Ready() bool {
	if len(d.lanes) == 2 {
		return d.region.Flags() == 0x0101
	}
	return d.region.Flag(0) != 0
}

func (d *Driver) waitReady() error {
	for n := 0; !d.Ready(); n++ {
		if n >= d.opts.MaxPolls {
			return ErrCoprocessorUnresponsive
		}
		time.Sleep(d.opts.PollInterval)
	}
	return nil
}

// WriteFrame waits for the lanes to become idle and hands over a packed frame.
func (d *Driver) WriteFrame(packed []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return errors.New("driver closed")
	}
	if err := d.waitReady(); err != nil {
		return err
	}
	switch d.opts.Handshake {
	case HandshakeReference:
		d.region.ClearFlags()
		if err := d.region.WriteFrame(packed); err != nil {
			return err
		}
	default:
		if err := d.region.WriteFrame(packed); err != nil {
			return err
		}
		d.region.ClearFlags()
	}
	d.frames++
	return nil
}

func (d *Driver) stopLanes(count int) error {
	errs := &framework.AggregatedError{}
	for n := 0; n < count; n++ {
		err := d.lanes[n].Stop()
		switch {
		case err == nil:
		case errors.Is(err, ErrLaneNotRunning):
			glog.Warningf("PRU%d: %v", n, err)
		default:
			errs.Add(&LaneError{Lane: n, Op: "stop", Err: err})
		}
	}
	return errs.Aggregate()
}

// Close halts the lanes, stops their firmware and releases the shared memory.
func (d *Driver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	time.Sleep(d.opts.HaltDelay)
	d.region.WriteConfig(byte(d.opts.Geometry.StripLength), HaltStripCount)
	if !d.Ready() {
		glog.Warning("PRU(s) not running at halt")
	}
	d.region.ClearFlags()

	errs := &framework.AggregatedError{}
	errs.Add(d.stopLanes(len(d.lanes)), d.region.Close())
	return errs.Aggregate()
}
