package qr

// maxScrim bounds the scrim walk. Anything wider than this is a malformed
// encode (for example a buffer that is entirely background).
const maxScrim = 50

// MeasureScrim returns the width in pixels of the uniform background border
// the encoding primitive left around the symbol, regardless of the margin
// that was requested. It walks diagonally from (0,0) toward the center and
// stops at the first pixel whose red byte is not 0xFF; the diagonal avoids a
// false positive from a degenerate single-pixel-wide mark on one axis. The
// walk is capped at min(dimension/4, maxScrim) and returns the cap when no
// module is found within it.
func MeasureScrim(buf RawImageBuffer) int {
	limit := buf.Dimension >> 2
	if limit > maxScrim {
		limit = maxScrim
	}
	for i := 0; i < limit; i++ {
		if buf.Pix[(i*buf.Dimension+i)*bytesPerPixel] != 0xFF {
			return i
		}
	}
	return limit
}
