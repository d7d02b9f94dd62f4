package pixels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 1, 2, 3}, Fill(2, RGB{1, 2, 3}))
	assert.Empty(t, Fill(0, RGB{1, 2, 3}))
}

func TestRow(t *testing.T) {
	frame := Row(2, 3, 1, RGB{0, 0, 100})
	assert.Equal(t, []byte{
		0, 0, 0, 0, 0, 0,
		0, 0, 100, 0, 0, 100,
		0, 0, 0, 0, 0, 0,
	}, frame)
	assert.Equal(t, make([]byte, 18), Row(2, 3, 5, RGB{1, 1, 1}))
}

func TestParseRGB(t *testing.T) {
	color, err := ParseRGB([]string{"255", "0x10", "7"})
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 16, 7}, color)

	color, err = ParseRGB([]string{"#ff8001"})
	require.NoError(t, err)
	assert.Equal(t, RGB{0xff, 0x80, 0x01}, color)

	for _, args := range [][]string{{"1", "2"}, {"256", "0", "0"}, {"#zzzzzz"}, {"red", "0", "0"}} {
		_, err := ParseRGB(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseSwitch(t *testing.T) {
	on, err := ParseSwitch("ON")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = ParseSwitch("off")
	require.NoError(t, err)
	assert.False(t, on)
	_, err = ParseSwitch("maybe")
	assert.Error(t, err)
}
