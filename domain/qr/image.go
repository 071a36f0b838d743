package qr

import (
	"image"
	"sync/atomic"
)

// DecodedImage is a decoded bitmap plus the scrim and scale it was produced
// with. It is reference counted: the cache holds one reference, and every
// lookup hands the caller its own. Each holder calls Release exactly once
// when done; the bitmap is freed when the last reference drops, so a caller
// rendering a freshly looked-up image cannot be invalidated by a concurrent
// eviction.
type DecodedImage struct {
	Bitmap *image.RGBA
	Scrim  int
	Scale  float64

	// Themed is set when Recolor already baked the foreground color into
	// the bitmap, making the render-time compositing path unnecessary.
	Themed bool

	refs atomic.Int64
}

// NewDecodedImage wraps a decoded bitmap with a single owning reference,
// held by the creating caller.
func NewDecodedImage(bitmap *image.RGBA, scrim int, scale float64, themed bool) *DecodedImage {
	d := &DecodedImage{
		Bitmap: bitmap,
		Scrim:  scrim,
		Scale:  scale,
		Themed: themed,
	}
	d.refs.Store(1)
	return d
}

// Acquire takes an additional reference.
func (d *DecodedImage) Acquire() {
	d.refs.Add(1)
}

// Release drops one reference. The bitmap is freed when the count reaches
// zero; using it after that is a bug.
func (d *DecodedImage) Release() {
	if d.refs.Add(-1) == 0 {
		d.Bitmap = nil
	}
}

// Released reports whether the last reference has been dropped.
func (d *DecodedImage) Released() bool {
	return d.refs.Load() <= 0
}
