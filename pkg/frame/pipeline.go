package frame

// Options configures a Pipeline.
type Options struct {
	Geometry
	Zigzag     bool
	Dithering  bool
	Brightness float64
}

// Pipeline transforms raw RGB frames into packed frames.
// It is stateful when dithering is on and must not be used concurrently.
type Pipeline struct {
	geometry   Geometry
	zigzag     bool
	dithering  bool
	brightness float64
	table      Table
	residual   []int32
	work       []byte
}

// NewPipeline validates the options and creates a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		geometry:   opts.Geometry,
		zigzag:     opts.Zigzag,
		brightness: ClampBrightness(opts.Brightness),
		work:       make([]byte, opts.Geometry.FrameSize()),
	}
	p.table = NewTable(p.brightness)
	p.SetDithering(opts.Dithering)
	return p, nil
}

// Geometry returns the strip geometry.
func (p *Pipeline) Geometry() Geometry {
	return p.geometry
}

// Brightness returns the current brightness.
func (p *Pipeline) Brightness() float64 {
	return p.brightness
}

// Dithering indicates whether temporal dithering is on.
func (p *Pipeline) Dithering() bool {
	return p.dithering
}

// Zigzag indicates whether wiring correction is on.
func (p *Pipeline) Zigzag() bool {
	return p.zigzag
}

// Table returns the current correction table.
func (p *Pipeline) Table() Table {
	return p.table
}

// SetBrightness recomputes the correction table if brightness changed.
func (p *Pipeline) SetBrightness(brightness float64) {
	if brightness = ClampBrightness(brightness); brightness != p.brightness {
		p.brightness = brightness
		p.table = NewTable(brightness)
	}
}

// SetDithering turns temporal dithering on or off.
// Turning it on starts from a fresh residual buffer.
func (p *Pipeline) SetDithering(dithering bool) {
	if dithering && !p.dithering {
		p.residual = make([]int32, p.geometry.FrameSize())
	} else if !dithering {
		p.residual = nil
	}
	p.dithering = dithering
}

// Transform converts raw into a packed frame stored in dst, which is
// reallocated when too small. raw shorter than a frame is zero padded,
// longer is truncated.
func (p *Pipeline) Transform(dst, raw []byte) []byte {
	size := p.geometry.FrameSize()
	n := copy(p.work, raw)
	for i := n; i < size; i++ {
		p.work[i] = 0
	}
	ReorderGRB(p.work)
	if p.zigzag {
		Unfold(p.work, p.geometry.BytesPerStrip())
	}
	p.correct(p.work)
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	Transpose(dst, p.work, p.geometry.StripCount)
	return dst
}

// Clear returns an all-dark packed frame in dst and drops the dither residual.
func (p *Pipeline) Clear(dst []byte) []byte {
	size := p.geometry.FrameSize()
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	for i := range dst {
		dst[i] = 0
	}
	for i := range p.residual {
		p.residual[i] = 0
	}
	return dst
}

func (p *Pipeline) correct(buf []byte) {
	if !p.dithering {
		for i, b := range buf {
			buf[i] = byte(p.table[b] >> 8)
		}
		return
	}
	for i, b := range buf {
		d := int32(p.table[b]) + p.residual[i]
		e := d + 128
		if e < 0 {
			e = 0
		} else if e > 0xffff {
			e = 0xffff
		}
		e >>= 8
		p.residual[i] = d - e*257
		buf[i] = byte(e)
	}
}
