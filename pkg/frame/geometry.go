package frame

// Budget of the shared memory window between the host and the PRUs.
const (
	SharedMemorySize = 12 * 1024
	FrameOffset      = 4
	MaxFrameSize     = SharedMemorySize - FrameOffset
)

// BytesPerPixel is the size of one RGB pixel.
const BytesPerPixel = 3

// Geometry describes the physical strips.
type Geometry struct {
	StripLength int
	StripCount  int
}

// Validate checks the geometry against what the firmware can drive.
func (g Geometry) Validate() error {
	switch g.StripCount {
	case 8, 16, 32:
	default:
		return &ConfigError{Field: "strip count", Value: g.StripCount, Reason: "must be 8, 16 or 32"}
	}
	if g.StripLength <= 0 || g.StripLength%4 != 0 {
		return &ConfigError{Field: "strip length", Value: g.StripLength, Reason: "must be a positive multiple of 4"}
	}
	if size := g.FrameSize(); size > MaxFrameSize {
		return &ConfigError{Field: "frame size", Value: size, Reason: "exceeds shared memory budget"}
	}
	return nil
}

// BytesPerStrip is the number of bytes of one strip in a frame.
func (g Geometry) BytesPerStrip() int {
	return g.StripLength * BytesPerPixel
}

// FrameSize is the size of a full frame in bytes, before and after packing.
func (g Geometry) FrameSize() int {
	return g.BytesPerStrip() * g.StripCount
}

// WordSize is the size in bytes of one packed output word.
func (g Geometry) WordSize() int {
	return g.StripCount / 8
}
