package qr

import (
	"fmt"
	"image"
)

// bytesPerPixel is the RGBA stride of a RawImageBuffer.
const bytesPerPixel = 4

// RawImageBuffer is a square RGBA pixel buffer as produced by the encoding
// primitive, row-major, 4 bytes per pixel. The primitive uses an
// inverted-alpha convention: a background pixel is 0xFFFFFFFF and a drawn
// module pixel is 0x00000000 (transparent black). Recolor and Render
// compensate for the inversion.
type RawImageBuffer struct {
	Pix       []uint8
	Dimension int
}

// NewRawImageBuffer allocates an all-background buffer of the given side
// length.
func NewRawImageBuffer(dimension int) RawImageBuffer {
	pix := make([]uint8, dimension*dimension*bytesPerPixel)
	for i := range pix {
		pix[i] = 0xFF
	}
	return RawImageBuffer{Pix: pix, Dimension: dimension}
}

// SetModule marks the pixel at (x, y) as a drawn module.
func (b RawImageBuffer) SetModule(x, y int) {
	off := (y*b.Dimension + x) * bytesPerPixel
	b.Pix[off] = 0x00
	b.Pix[off+1] = 0x00
	b.Pix[off+2] = 0x00
	b.Pix[off+3] = 0x00
}

// DecodePixels converts the raw buffer into a drawable bitmap. This is the
// platform decode step: it runs on the consuming side of the dispatch
// channel, not on the encode worker.
func DecodePixels(buf RawImageBuffer) (*image.RGBA, error) {
	want := buf.Dimension * buf.Dimension * bytesPerPixel
	if buf.Dimension <= 0 || len(buf.Pix) != want {
		return nil, fmt.Errorf("%w: buffer is %d bytes, want %d", ErrPlatformFailure, len(buf.Pix), want)
	}
	return &image.RGBA{
		Pix:    buf.Pix,
		Stride: buf.Dimension * bytesPerPixel,
		Rect:   image.Rect(0, 0, buf.Dimension, buf.Dimension),
	}, nil
}
