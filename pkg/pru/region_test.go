package pru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, DefaultLayout.Validate())
	tests := []struct {
		name   string
		layout Layout
	}{
		{"overlap", Layout{Size: 64, Flags: 0, StripLength: 1, StripCount: 3, Frame: 4}},
		{"outside word", Layout{Size: 64, Flags: 0, StripLength: 2, StripCount: 4, Frame: 8}},
		{"frame in control word", Layout{Size: 64, Flags: 0, StripLength: 2, StripCount: 3, Frame: 2}},
		{"frame beyond size", Layout{Size: 64, Flags: 0, StripLength: 2, StripCount: 3, Frame: 64}},
		{"unaligned frame", Layout{Size: 64, Flags: 0, StripLength: 2, StripCount: 3, Frame: 6}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Error(t, test.layout.Validate())
		})
	}
}

func TestRegionControlWord(t *testing.T) {
	r, err := NewMemoryRegion(DefaultLayout)
	require.NoError(t, err)

	r.WriteConfig(64, 32)
	length, count := r.Config()
	assert.EqualValues(t, 64, length)
	assert.EqualValues(t, 32, count)
	assert.EqualValues(t, 0, r.Flags())

	r.SetFlag(0, 1)
	assert.EqualValues(t, 0x0001, r.Flags())
	r.SetFlag(1, 1)
	assert.EqualValues(t, 0x0101, r.Flags())
	assert.EqualValues(t, 1, r.Flag(1))

	r.ClearFlags()
	assert.EqualValues(t, 0, r.Flags())
	length, count = r.Config()
	assert.EqualValues(t, 64, length)
	assert.EqualValues(t, 32, count)
}

func TestRegionByteLayout(t *testing.T) {
	if !nativeLittleEndian {
		t.Skip("byte offsets checked on little endian hosts")
	}
	buf := make([]byte, DefaultLayout.Size)
	r, err := NewRegion(buf, DefaultLayout)
	require.NoError(t, err)

	r.SetFlag(1, 1)
	r.WriteConfig(60, 16)
	require.NoError(t, r.WriteFrame([]byte{0xaa, 0xbb}))
	assert.Equal(t, []byte{0, 1, 60, 16, 0xaa, 0xbb, 0}, buf[:7])
}

func TestRegionWriteFrameBounds(t *testing.T) {
	r, err := NewMemoryRegion(DefaultLayout)
	require.NoError(t, err)
	assert.NoError(t, r.WriteFrame(make([]byte, DefaultLayout.FrameCapacity())))
	assert.Equal(t, ErrFrameTooLarge, r.WriteFrame(make([]byte, DefaultLayout.FrameCapacity()+1)))
}

func TestNewRegionTooSmall(t *testing.T) {
	_, err := NewRegion(make([]byte, 16), DefaultLayout)
	assert.Error(t, err)
}
