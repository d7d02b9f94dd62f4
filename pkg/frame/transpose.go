package frame

// ReorderGRB swaps the first two bytes of every RGB triple.
func ReorderGRB(buf []byte) {
	for i := 0; i+2 < len(buf); i += BytesPerPixel {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// Unfold reverses the pixel order of the second half of every strip.
// Applying it twice restores the original buffer.
func Unfold(buf []byte, bytesPerStrip int) {
	half := bytesPerStrip / 2
	for s := 0; s+bytesPerStrip <= len(buf); s += bytesPerStrip {
		seg := buf[s+half : s+bytesPerStrip]
		for i, j := 0, len(seg)-BytesPerPixel; i < j; i, j = i+BytesPerPixel, j-BytesPerPixel {
			seg[i], seg[j] = seg[j], seg[i]
			seg[i+1], seg[j+1] = seg[j+1], seg[i+1]
			seg[i+2], seg[j+2] = seg[j+2], seg[i+2]
		}
	}
}

// Transpose packs channels byte streams, concatenated in src, into bit
// planes. Word p*8+b holds in bit c the bit 7-b of byte p of channel c.
// Words are channels/8 bytes wide, little-endian. dst must be as long as src.
func Transpose(dst, src []byte, channels int) {
	l := len(src) / channels
	wordSize := channels / 8
	for p := 0; p < l; p++ {
		var planes [8]uint32
		for c := 0; c < channels; c++ {
			v := uint32(src[c*l+p])
			for b := 0; b < 8; b++ {
				planes[b] |= ((v >> uint(7-b)) & 1) << uint(c)
			}
		}
		out := dst[p*8*wordSize : (p+1)*8*wordSize]
		for b, w := range planes {
			for k := 0; k < wordSize; k++ {
				out[b*wordSize+k] = byte(w >> uint(8*k))
			}
		}
	}
}

// InverseTranspose reverts Transpose.
func InverseTranspose(dst, src []byte, channels int) {
	l := len(src) / channels
	wordSize := channels / 8
	for p := 0; p < l; p++ {
		var bytes [32]byte
		in := src[p*8*wordSize : (p+1)*8*wordSize]
		for b := 0; b < 8; b++ {
			var w uint32
			for k := 0; k < wordSize; k++ {
				w |= uint32(in[b*wordSize+k]) << uint(8*k)
			}
			for c := 0; c < channels; c++ {
				bytes[c] |= byte((w>>uint(c))&1) << uint(7-b)
			}
		}
		for c := 0; c < channels; c++ {
			dst[c*l+p] = bytes[c]
		}
	}
}
