package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/golang/protobuf/ptypes/wrappers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilepsia/epilepsia.go/pkg/display"
)

type fakeController struct {
	settings display.Settings
	stats    display.Stats
	clears   int
	clearErr error
}

func (c *fakeController) SetBrightness(v float64)    { c.settings.Brightness = v }
func (c *fakeController) SetDithering(on bool)       { c.settings.Dithering = on }
func (c *fakeController) Settings() display.Settings { return c.settings }
func (c *fakeController) Stats() display.Stats       { return c.stats }

func (c *fakeController) Clear() error {
	c.clears++
	return c.clearErr
}

func newTestBridge(t *testing.T) (*Bridge, *fakeController) {
	ctl := &fakeController{}
	b, err := NewBridge("mqtt://127.0.0.1:1/leds/", "dev1", ctl)
	require.NoError(t, err)
	b.Queue.Sub(b.topic(TopicBrightness), b.handleBrightness)
	b.Queue.Sub(b.topic(TopicDithering), b.handleDithering)
	b.Queue.Sub(b.topic(TopicClear), b.handleClear)
	return b, ctl
}

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic, filter string
		match         bool
	}{
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/+/c", true},
		{"a/b/c", "a/#", true},
		{"a/b/c", "#", true},
		{"a/b", "a/b/c", false},
		{"a/b/c", "a/b", false},
		{"a/x/c", "a/b/c", false},
		{"a/b/c", "+/+", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.match, MatchTopic(tc.topic, tc.filter), "%s ~ %s", tc.topic, tc.filter)
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://user:pw@broker:1883/leds/?client-id=x")
	require.NoError(t, err)
	assert.Equal(t, "leds/", prefix)
	assert.Equal(t, "x", opts.ClientID)
	assert.Equal(t, "user", opts.Username)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
}

func TestBridgeCommands(t *testing.T) {
	b, ctl := newTestBridge(t)

	payload, err := proto.Marshal(&wrappers.FloatValue{Value: 0.25})
	require.NoError(t, err)
	b.Queue.deliver("leds/dev1/set/brightness", payload)
	assert.Equal(t, 0.25, ctl.settings.Brightness)

	payload, err = proto.Marshal(&wrappers.BoolValue{Value: true})
	require.NoError(t, err)
	b.Queue.deliver("leds/dev1/set/dithering", payload)
	assert.True(t, ctl.settings.Dithering)

	b.Queue.deliver("leds/dev2/clear", nil)
	b.Queue.deliver("other/dev1/clear", nil)
	assert.Equal(t, 0, ctl.clears)
	ctl.clearErr = errors.New("busy")
	b.Queue.deliver("leds/dev1/clear", nil)
	assert.Equal(t, 1, ctl.clears)

	b.Queue.deliver("leds/dev1/set/brightness", []byte{0xff, 0xff})
	assert.Equal(t, 0.25, ctl.settings.Brightness)
}

func TestBridgeStatus(t *testing.T) {
	b, ctl := newTestBridge(t)
	ctl.settings = display.Settings{Brightness: 0.5, Zigzag: true}
	ctl.stats = display.Stats{Frames: 12, FPS: 30, LastFrame: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	b.Clients = func() int { return 2 }

	payload, err := proto.Marshal(b.Status())
	require.NoError(t, err)
	var status structpb.Struct
	require.NoError(t, proto.Unmarshal(payload, &status))
	fields := status.GetFields()
	assert.Equal(t, 0.5, fields["brightness"].GetNumberValue())
	assert.True(t, fields["zigzag"].GetBoolValue())
	assert.False(t, fields["dithering"].GetBoolValue())
	assert.Equal(t, 12.0, fields["frames"].GetNumberValue())
	assert.Equal(t, 30.0, fields["fps"].GetNumberValue())
	assert.Equal(t, 2.0, fields["clients"].GetNumberValue())
	assert.Equal(t, "2024-01-02T03:04:05Z", fields["last_frame"].GetStringValue())
}
