// Package display connects the OPC server to the frame pipeline and the
// PRU driver.
package display

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/epilepsia/epilepsia.go/pkg/frame"
	"github.com/epilepsia/epilepsia.go/pkg/opc"
)

// FrameWriter accepts packed frames, e.g. *pru.Driver.
type FrameWriter interface {
	WriteFrame(packed []byte) error
}

// Settings are the runtime adjustable LED settings.
type Settings struct {
	Brightness float64 `json:"brightness"`
	Dithering  bool    `json:"dithering"`
	Zigzag     bool    `json:"zigzag"`
}

// Stats are frame statistics.
type Stats struct {
	Frames    uint64    `json:"frames"`
	FPS       float64   `json:"fps"`
	LastFrame time.Time `json:"last_frame"`
}

// Display owns the pipeline and serializes frame submission.
type Display struct {
	// Fatal is called when a frame cannot be handed over. Defaults to glog.Fatalf.
	Fatal func(format string, args ...interface{})
	// OnChange is called after settings changed.
	OnChange func(Settings)

	pipeline *frame.Pipeline
	writer   FrameWriter
	now      func() time.Time

	lock        sync.Mutex
	packed      []byte
	stats       Stats
	windowStart time.Time
	windowCount int
}

// New creates a Display.
func New(pipeline *frame.Pipeline, writer FrameWriter) *Display {
	return &Display{
		Fatal:    glog.Fatalf,
		pipeline: pipeline,
		writer:   writer,
		now:      time.Now,
	}
}

// Register installs the display as the handler of both OPC commands.
func (d *Display) Register(s *opc.Server) error {
	if err := s.Handle(opc.CmdSetPixels, d); err != nil {
		return err
	}
	return s.Handle(opc.CmdSysEx, d)
}

// Geometry returns the strip geometry.
func (d *Display) Geometry() frame.Geometry {
	return d.pipeline.Geometry()
}

// HandleMessage implements opc.Handler.
func (d *Display) HandleMessage(msg *opc.Message) {
	switch msg.Command {
	case opc.CmdSetPixels:
		if err := d.Show(msg.Data); err != nil {
			d.Fatal("frame submission failed: %v", err)
		}
	case opc.CmdSysEx:
		sysex, err := opc.ParseSysEx(msg.Data)
		if err != nil {
			glog.Warningf("sysex on channel %d: %v", msg.Channel, err)
			return
		}
		switch sysex.Op {
		case opc.SysExBrightness:
			d.SetBrightness(sysex.Brightness())
		case opc.SysExDithering:
			d.SetDithering(sysex.Dithering())
		}
	}
}

// Show transforms raw RGB pixels and hands the frame to the writer.
func (d *Display) Show(raw []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.packed = d.pipeline.Transform(d.packed, raw)
	return d.commit()
}

// Clear turns all LEDs off.
func (d *Display) Clear() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.packed = d.pipeline.Clear(d.packed)
	return d.commit()
}

func (d *Display) commit() error {
	if err := d.writer.WriteFrame(d.packed); err != nil {
		return err
	}
	now := d.now()
	d.stats.Frames++
	d.stats.LastFrame = now
	glog.V(4).Infof("frame %d committed", d.stats.Frames)
	if d.windowStart.IsZero() {
		d.windowStart = now
		return nil
	}
	d.windowCount++
	if elapsed := now.Sub(d.windowStart); elapsed >= time.Second {
		d.stats.FPS = float64(d.windowCount) / elapsed.Seconds()
		glog.V(1).Infof("%.1f fps", d.stats.FPS)
		d.windowStart, d.windowCount = now, 0
	}
	return nil
}

// SetBrightness changes brightness, clamped to [0,1].
func (d *Display) SetBrightness(brightness float64) {
	d.lock.Lock()
	old := d.pipeline.Brightness()
	d.pipeline.SetBrightness(brightness)
	settings := d.settings()
	d.lock.Unlock()
	if settings.Brightness != old {
		glog.Infof("brightness set to %.3f", settings.Brightness)
		d.changed(settings)
	}
}

// SetDithering switches temporal dithering.
func (d *Display) SetDithering(on bool) {
	d.lock.Lock()
	old := d.pipeline.Dithering()
	d.pipeline.SetDithering(on)
	settings := d.settings()
	d.lock.Unlock()
	if on != old {
		glog.Infof("dithering set to %v", on)
		d.changed(settings)
	}
}

func (d *Display) changed(settings Settings) {
	if d.OnChange != nil {
		d.OnChange(settings)
	}
}

func (d *Display) settings() Settings {
	return Settings{
		Brightness: d.pipeline.Brightness(),
		Dithering:  d.pipeline.Dithering(),
		Zigzag:     d.pipeline.Zigzag(),
	}
}

// Settings returns the current settings.
func (d *Display) Settings() Settings {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.settings()
}

// Stats returns frame statistics.
func (d *Display) Stats() Stats {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.stats
}
