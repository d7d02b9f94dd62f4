package opc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBytes(t *testing.T) {
	msg := &Message{Channel: 2, Command: CmdSetPixels, Data: testPixels(258)}
	data := msg.Bytes()
	assert.Equal(t, []byte{2, 0, 1, 2}, data[:4])
	assert.Equal(t, msg.Data, data[4:])

	var buf bytes.Buffer
	n, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)
	assert.Equal(t, data, buf.Bytes())

	big := &Message{Data: make([]byte, MaxDataLen+10)}
	assert.Len(t, big.Bytes(), HeaderSize+MaxDataLen)
}

func TestSysEx(t *testing.T) {
	msg := BrightnessMessage(0, 0.5)
	assert.Equal(t, []byte{0xff}, []byte{byte(msg.Command)})
	s, err := ParseSysEx(msg.Data)
	require.NoError(t, err)
	assert.Equal(t, SysExBrightness, s.Op)
	assert.EqualValues(t, 128, s.Value)
	assert.InDelta(t, 0.5, s.Brightness(), 0.01)

	assert.Equal(t, []byte{0, 255}, BrightnessMessage(0, 7).Data)
	assert.Equal(t, []byte{0, 0}, BrightnessMessage(0, -1).Data)

	s, err = ParseSysEx(DitheringMessage(0, true).Data)
	require.NoError(t, err)
	assert.Equal(t, SysExDithering, s.Op)
	assert.True(t, s.Dithering())
	s, err = ParseSysEx([]byte{1, 0})
	require.NoError(t, err)
	assert.False(t, s.Dithering())

	_, err = ParseSysEx([]byte{0})
	assert.Error(t, err)
	_, err = ParseSysEx([]byte{9, 1})
	assert.Error(t, err)
}
