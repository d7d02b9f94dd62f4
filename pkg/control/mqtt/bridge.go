package mqtt

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/golang/protobuf/ptypes/wrappers"

	"github.com/epilepsia/epilepsia.go/pkg/display"
)

// Topics relative to <prefix><device-id>/.
const (
	TopicBrightness = "set/brightness"
	TopicDithering  = "set/dithering"
	TopicClear      = "clear"
	TopicStatus     = "status"
)

// Controller is the display as seen by the bridge.
type Controller interface {
	SetBrightness(float64)
	SetDithering(bool)
	Clear() error
	Settings() display.Settings
	Stats() display.Stats
}

// Bridge applies remote commands to a Controller and publishes its status.
//
// Commands are protobuf encoded: set/brightness takes a
// google.protobuf.FloatValue, set/dithering a google.protobuf.BoolValue,
// clear takes any payload. status is a retained google.protobuf.Struct.
type Bridge struct {
	Queue    *Queue
	DeviceID string
	// Interval between status publications, zero to only publish on change.
	Interval time.Duration
	// Clients optionally reports the number of OPC clients.
	Clients func() int

	ctl Controller
}

// NewBridge creates a Bridge from a broker URL.
func NewBridge(brokerURL, deviceID string, ctl Controller) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID("epilepsia-" + deviceID)
	}
	b := &Bridge{Queue: NewQueue(opts, prefix), DeviceID: deviceID, ctl: ctl}
	b.Queue.OnConnect = func(*Queue) { b.PublishStatus() }
	return b, nil
}

func (b *Bridge) topic(name string) string {
	return b.DeviceID + "/" + name
}

// Run connects to the broker and serves until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	b.Queue.Sub(b.topic(TopicBrightness), b.handleBrightness)
	b.Queue.Sub(b.topic(TopicDithering), b.handleDithering)
	b.Queue.Sub(b.topic(TopicClear), b.handleClear)
	token := b.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer b.Queue.Close()

	var tick <-chan time.Time
	if b.Interval > 0 {
		ticker := time.NewTicker(b.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			b.PublishStatus()
		}
	}
}

func (b *Bridge) handleBrightness(topic string, payload []byte) {
	var val wrappers.FloatValue
	if err := proto.Unmarshal(payload, &val); err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	b.ctl.SetBrightness(float64(val.Value))
	b.PublishStatus()
}

func (b *Bridge) handleDithering(topic string, payload []byte) {
	var val wrappers.BoolValue
	if err := proto.Unmarshal(payload, &val); err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	b.ctl.SetDithering(val.Value)
	b.PublishStatus()
}

func (b *Bridge) handleClear(topic string, payload []byte) {
	if err := b.ctl.Clear(); err != nil {
		glog.Errorf("%s: %v", topic, err)
	}
}

// Status builds the status message.
func (b *Bridge) Status() *structpb.Struct {
	settings, stats := b.ctl.Settings(), b.ctl.Stats()
	fields := map[string]*structpb.Value{
		"brightness": numberValue(settings.Brightness),
		"dithering":  boolValue(settings.Dithering),
		"zigzag":     boolValue(settings.Zigzag),
		"frames":     numberValue(float64(stats.Frames)),
		"fps":        numberValue(stats.FPS),
	}
	if !stats.LastFrame.IsZero() {
		if ts, err := ptypes.TimestampProto(stats.LastFrame); err == nil {
			fields["last_frame"] = &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: ptypes.TimestampString(ts)}}
		}
	}
	if b.Clients != nil {
		fields["clients"] = numberValue(float64(b.Clients()))
	}
	return &structpb.Struct{Fields: fields}
}

// PublishStatus publishes the retained status.
func (b *Bridge) PublishStatus() {
	payload, err := proto.Marshal(b.Status())
	if err != nil {
		glog.Errorf("encode status: %v", err)
		return
	}
	b.Queue.PubWith(b.topic(TopicStatus), payload, 0, true)
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func boolValue(v bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}
}
