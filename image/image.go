// Package image builds the raw 65,536-byte addressable binary image from
// an assembled line list: a linear concatenation of each line's byte
// buffer at its assigned location, per spec §1/§6. It is the external
// binary emitter the core spec names only at interface level.
package image

import (
	"fmt"

	"github.com/hallowmantle/i8080asm/line"
)

// Size is the full 8080/8085 address space.
const Size = 0x10000

// Image is the assembled output: a sparse view over the 64K
// address space, plus the low/high watermark of bytes actually written so
// the caller can emit only the defined range rather than padding to 64K.
type Image struct {
	bytes  [Size]byte
	filled [Size]bool
	lo, hi int // [lo, hi) is the span of addresses ever written; hi==0 means empty
}

// New creates an empty image.
func New() *Image { return &Image{lo: Size} }

// Write places data at addr, erroring if it would run off the end of the
// address space. Overlapping writes (e.g. two org blocks landing on the
// same bytes) are allowed; the later write wins, matching a linear
// concat-by-location emitter with no overlap detection of its own.
func (img *Image) Write(addr int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if addr < 0 || addr+len(data) > Size {
		return fmt.Errorf("write at %#x, length %d: exceeds 64K address space", addr, len(data))
	}
	for i, b := range data {
		img.bytes[addr+i] = b
		img.filled[addr+i] = true
	}
	if addr < img.lo {
		img.lo = addr
	}
	if addr+len(data) > img.hi {
		img.hi = addr + len(data)
	}
	return nil
}

// Bytes returns the defined byte range [lo, hi) of the image, with any
// unwritten gaps inside that range left as zero. An image with nothing
// written returns an empty slice.
func (img *Image) Bytes() []byte {
	if img.hi <= img.lo {
		return nil
	}
	return img.bytes[img.lo:img.hi]
}

// Origin returns the lowest address ever written.
func (img *Image) Origin() int {
	if img.hi <= img.lo {
		return 0
	}
	return img.lo
}

// FromLines builds an Image by writing every line's byte buffer at its
// assigned Location, in line-list order (so a later org block that
// re-covers an earlier address wins, matching how the driver's own
// location bookkeeping already resolves overlapping origins).
func FromLines(lines []*line.Line) (*Image, error) {
	img := New()
	for _, l := range lines {
		if len(l.Bytes) == 0 {
			continue
		}
		if err := img.Write(l.Location, l.Bytes); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", l.File, l.Num, err)
		}
	}
	return img, nil
}
