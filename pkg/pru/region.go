package pru

import (
	"fmt"
	"io"
	"sync/atomic"
	"unsafe"

	"periph.io/x/host/v3/pmem"

	"github.com/epilepsia/epilepsia.go/pkg/frame"
)

// SharedMemoryBase is the physical address of the PRU shared RAM on AM335x.
const SharedMemoryBase uint64 = 0x4A300000 + 0x00010000

// HaltStripCount is written as strip count to make lanes halt.
const HaltStripCount byte = 0xFF

// Layout describes the shared memory window. Flags and configuration
// bytes live in the first 32-bit word, which is accessed atomically.
type Layout struct {
	Size        int
	Flags       int // two bytes, lane 0 first
	StripLength int
	StripCount  int
	Frame       int
}

// DefaultLayout is the layout the firmware is built for.
var DefaultLayout = Layout{
	Size:        frame.SharedMemorySize,
	Flags:       0,
	StripLength: 2,
	StripCount:  3,
	Frame:       frame.FrameOffset,
}

// Validate checks offsets are in range and do not overlap.
func (l Layout) Validate() error {
	ctl := []int{l.Flags, l.Flags + 1, l.StripLength, l.StripCount}
	var used [4]bool
	for _, off := range ctl {
		if off < 0 || off >= 4 {
			return fmt.Errorf("layout: control byte offset %d outside first word", off)
		}
		if used[off] {
			return fmt.Errorf("layout: control byte offset %d used twice", off)
		}
		used[off] = true
	}
	if l.Frame < 4 || l.Frame%4 != 0 || l.Frame >= l.Size {
		return fmt.Errorf("layout: invalid frame offset %d", l.Frame)
	}
	return nil
}

// FrameCapacity is the number of bytes available for frame data.
func (l Layout) FrameCapacity() int {
	return l.Size - l.Frame
}

// Region is a bounds-checked view over the shared memory window.
type Region struct {
	layout Layout
	buf    []byte
	word   *uint32
	closer io.Closer
}

var nativeLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

func byteShift(off int) uint {
	if nativeLittleEndian {
		return uint(8 * off)
	}
	return uint(8 * (3 - off))
}

// NewRegion wraps buf, which must be at least layout.Size bytes and 4-byte aligned.
func NewRegion(buf []byte, layout Layout) (*Region, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(buf) < layout.Size {
		return nil, fmt.Errorf("shared memory too small: %d < %d", len(buf), layout.Size)
	}
	if uintptr(unsafe.Pointer(&buf[0]))%4 != 0 {
		return nil, fmt.Errorf("shared memory not word aligned")
	}
	return &Region{
		layout: layout,
		buf:    buf[:layout.Size:layout.Size],
		word:   (*uint32)(unsafe.Pointer(&buf[0])),
	}, nil
}

// NewMemoryRegion allocates a Region in process memory.
func NewMemoryRegion(layout Layout) (*Region, error) {
	words := make([]uint32, (layout.Size+3)/4)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	return NewRegion(buf, layout)
}

// MapPhysical maps the window at physical address base through /dev/mem.
func MapPhysical(base uint64, layout Layout) (*Region, error) {
	view, err := pmem.Map(base, layout.Size)
	if err != nil {
		return nil, fmt.Errorf("map shared memory at %#x: %w", base, err)
	}
	r, err := NewRegion(view.Bytes(), layout)
	if err != nil {
		view.Close()
		return nil, err
	}
	r.closer = view
	return r, nil
}

// Layout returns the layout.
func (r *Region) Layout() Layout {
	return r.layout
}

// Close releases the mapping, if any.
func (r *Region) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Region) loadByte(off int) byte {
	return byte(atomic.LoadUint32(r.word) >> byteShift(off))
}

func (r *Region) field(off int, v byte) (mask, val uint32) {
	shift := byteShift(off)
	return 0xff << shift, uint32(v) << shift
}

func (r *Region) update(mask, val uint32) {
	for {
		old := atomic.LoadUint32(r.word)
		if atomic.CompareAndSwapUint32(r.word, old, old&^mask|val) {
			return
		}
	}
}

// Flag reads the flag of a lane.
func (r *Region) Flag(lane int) byte {
	return r.loadByte(r.layout.Flags + lane)
}

// Flags reads both lane flags, lane 0 in the low byte.
func (r *Region) Flags() uint16 {
	w := atomic.LoadUint32(r.word)
	return uint16(byte(w>>byteShift(r.layout.Flags))) |
		uint16(byte(w>>byteShift(r.layout.Flags+1)))<<8
}

// SetFlag sets the flag of a lane. This is the firmware side of the handshake.
func (r *Region) SetFlag(lane int, v byte) {
	r.update(r.field(r.layout.Flags+lane, v))
}

// ClearFlags clears both lane flags.
func (r *Region) ClearFlags() {
	m0, _ := r.field(r.layout.Flags, 0)
	m1, _ := r.field(r.layout.Flags+1, 0)
	r.update(m0|m1, 0)
}

// WriteConfig writes the configuration bytes.
func (r *Region) WriteConfig(stripLength, stripCount byte) {
	ml, vl := r.field(r.layout.StripLength, stripLength)
	mc, vc := r.field(r.layout.StripCount, stripCount)
	r.update(ml|mc, vl|vc)
}

// Config reads the configuration bytes.
func (r *Region) Config() (stripLength, stripCount byte) {
	return r.loadByte(r.layout.StripLength), r.loadByte(r.layout.StripCount)
}

// WriteFrame copies data to the frame area.
func (r *Region) WriteFrame(data []byte) error {
	if len(data) > r.layout.FrameCapacity() {
		return ErrFrameTooLarge
	}
	copy(r.buf[r.layout.Frame:], data)
	return nil
}

// Frame returns the frame area.
func (r *Region) Frame() []byte {
	return r.buf[r.layout.Frame:]
}
