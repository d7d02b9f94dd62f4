package frame

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReorderGRB(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	ReorderGRB(buf)
	require.Equal(t, []byte{2, 1, 3, 5, 4, 6}, buf)
}

func TestUnfold(t *testing.T) {
	// 2 strips of 4 pixels.
	buf := []byte{
		0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3,
		4, 4, 4, 5, 5, 5, 6, 6, 6, 7, 7, 7,
	}
	Unfold(buf, 12)
	require.Equal(t, []byte{
		0, 0, 0, 1, 1, 1, 3, 3, 3, 2, 2, 2,
		4, 4, 4, 5, 5, 5, 7, 7, 7, 6, 6, 6,
	}, buf)
}

func TestUnfoldInvolution(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, g := range []Geometry{{4, 8}, {12, 16}, {64, 32}, {60, 32}} {
		buf := make([]byte, g.FrameSize())
		rnd.Read(buf)
		orig := append([]byte(nil), buf...)
		Unfold(buf, g.BytesPerStrip())
		Unfold(buf, g.BytesPerStrip())
		require.Equal(t, orig, buf)
	}
}

func TestTransposeBitLayout(t *testing.T) {
	for _, channels := range []int{8, 16, 32} {
		l := 8
		wordSize := channels / 8
		src := make([]byte, channels*l)
		rand.New(rand.NewSource(int64(channels))).Read(src)
		dst := make([]byte, len(src))
		Transpose(dst, src, channels)
		for p := 0; p < l; p++ {
			for b := 0; b < 8; b++ {
				var w uint32
				for k := 0; k < wordSize; k++ {
					w |= uint32(dst[(p*8+b)*wordSize+k]) << uint(8*k)
				}
				for c := 0; c < channels; c++ {
					expect := (src[c*l+p] >> uint(7-b)) & 1
					require.Equalf(t, uint32(expect), (w>>uint(c))&1, "channels=%d p=%d b=%d c=%d", channels, p, b, c)
				}
			}
		}
	}
}

func TestTransposeSingleBit(t *testing.T) {
	src := make([]byte, 8*4)
	src[3*4+1] = 0x80 // channel 3, byte 1, MSB.
	dst := make([]byte, len(src))
	Transpose(dst, src, 8)
	expect := make([]byte, len(src))
	expect[8] = 1 << 3
	require.Equal(t, expect, dst)
}

func TestTransposeRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, channels := range []int{8, 16, 32} {
		for l := 4; l <= 96; l += 4 {
			src := make([]byte, channels*l)
			rnd.Read(src)
			packed := make([]byte, len(src))
			Transpose(packed, src, channels)
			restored := make([]byte, len(src))
			InverseTranspose(restored, packed, channels)
			require.Equalf(t, src, restored, "channels=%d length=%d", channels, l)
		}
	}
}
