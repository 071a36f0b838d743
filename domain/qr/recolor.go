package qr

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// RGB is an opaque foreground color.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses a 6-digit hex color, with or without a leading '#'.
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	var c RGB
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	return c, nil
}

// String returns the color as #rrggbb.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// word lays the color out as one RGBA pixel word in host byte order.
func (c RGB) word() uint32 {
	var px [bytesPerPixel]byte
	px[0] = c.R
	px[1] = c.G
	px[2] = c.B
	px[3] = 0xFF
	return binary.NativeEndian.Uint32(px[:])
}

// Recolor ORs the foreground color (at full alpha) onto every pixel word in
// place. Background pixels (0xFFFFFFFF) are already saturated and stay
// unchanged; module pixels (0x00000000) become exactly the foreground color
// at full opacity, so no blend step is needed at render time. The transform
// is irreversible: recoloring twice with different colors does not recover
// the original buffer, so a caller wanting a different color must re-encode.
func Recolor(buf RawImageBuffer, fg RGB) {
	word := fg.word()
	for i := 0; i+bytesPerPixel <= len(buf.Pix); i += bytesPerPixel {
		px := binary.NativeEndian.Uint32(buf.Pix[i : i+bytesPerPixel])
		binary.NativeEndian.PutUint32(buf.Pix[i:i+bytesPerPixel], px|word)
	}
}
