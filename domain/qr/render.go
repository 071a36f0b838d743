package qr

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
)

// defaultForeground matches the near-black used on the receive screen.
var defaultForeground = RGB{R: 0x23, G: 0x21, B: 0x1C}

// RenderScale returns the fraction of the target square that the non-scrim
// content occupies. Render magnifies the bitmap by the inverse so the
// content exactly fills the target.
func RenderScale(target float64, scrim int) float64 {
	if target <= 0 {
		return 1
	}
	return (target - 2*float64(scrim)) / target
}

// Render draws the decoded bitmap into a target×target image, centered and
// magnified so the measured scrim falls outside the canvas and the symbol
// fills the square with no residual border.
//
// When the foreground color was baked in by Recolor the bitmap is drawn
// as-is. Otherwise a compositing pass paints background pixels transparent
// and module pixels in the theme color at draw time; the two paths produce
// the same visible result.
func Render(img *DecodedImage, target float64, theme *RGB) *image.RGBA {
	side := int(math.Round(target))
	dc := gg.NewContext(side, side)

	src := image.Image(img.Bitmap)
	if !img.Themed {
		fg := defaultForeground
		if theme != nil {
			fg = *theme
		}
		src = compositeTheme(img.Bitmap, fg)
	}

	scale := RenderScale(target, img.Scrim)
	if scale > 0 && scale < 1 {
		zoom := 1 / scale
		dc.Push()
		dc.ScaleAbout(zoom, zoom, target/2, target/2)
		dc.DrawImageAnchored(src, side/2, side/2, 0.5, 0.5)
		dc.Pop()
	} else {
		dc.DrawImageAnchored(src, side/2, side/2, 0.5, 0.5)
	}

	return dc.Image().(*image.RGBA)
}

// Placeholder returns an empty transparent square shown in place of a failed
// encode. It keeps the display slot's footprint stable so a bad payload
// never collapses or crashes the surrounding layout.
func Placeholder(dimension int) *image.RGBA {
	if dimension < 1 {
		dimension = 1
	}
	return image.NewRGBA(image.Rect(0, 0, dimension, dimension))
}

// compositeTheme maps the inverted-alpha buffer to a normal bitmap: module
// pixels (alpha 0) become the foreground color, background pixels become
// fully transparent.
func compositeTheme(src *image.RGBA, fg RGB) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	uniform := image.NewUniform(color.NRGBA{R: fg.R, G: fg.G, B: fg.B, A: 0xFF})
	draw.DrawMask(out, src.Bounds(), uniform, image.Point{}, &moduleMask{src: src}, src.Bounds().Min, draw.Src)
	return out
}

// moduleMask exposes the buffer's inverted alpha channel as a draw mask:
// drawn modules are opaque, background is transparent.
type moduleMask struct {
	src *image.RGBA
}

func (m *moduleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *moduleMask) Bounds() image.Rectangle { return m.src.Bounds() }

func (m *moduleMask) At(x, y int) color.Color {
	off := m.src.PixOffset(x, y)
	return color.Alpha{A: 0xFF - m.src.Pix[off+3]}
}
