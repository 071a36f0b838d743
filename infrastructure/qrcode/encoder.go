// Package qrcode adapts skip2/go-qrcode to the pipeline's encoding
// primitive contract.
package qrcode

import (
	"fmt"
	"image"
	"strings"

	skip2 "github.com/skip2/go-qrcode"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/domain/qr"
	"github.com/prasetyowira/qrpix/infrastructure/logger"
)

// Encoder produces raw pixel buffers from payloads. It enforces a minimum
// symbol version so short payloads render at the same module density as long
// ones, and it normalizes the primitive's output into the inverted-alpha
// buffer convention the rest of the pipeline expects.
type Encoder struct {
	minVersion int
}

// NewEncoder creates an encoder. minVersion of 0 disables version padding.
func NewEncoder(minVersion int) *Encoder {
	return &Encoder{minVersion: minVersion}
}

// Encode renders the payload as a square raw buffer of exactly
// req.Dimension pixels per side. The requested margin is forwarded but not
// trusted: the primitive's quiet zone and fixed-size padding both end up in
// the buffer, so callers must measure the real border. No retries happen
// here; retry policy belongs to the caller.
func (e *Encoder) Encode(req qr.EncodeRequest) (qr.RawImageBuffer, error) {
	if err := req.Validate(); err != nil {
		return qr.RawImageBuffer{}, err
	}

	content := string(req.Payload)
	level := recoveryLevel(req.Level)

	code, err := skip2.New(content, level)
	if err != nil {
		return qr.RawImageBuffer{}, mapEncodeError(err)
	}

	if e.minVersion > 0 && code.VersionNumber < e.minVersion {
		code, err = skip2.NewWithForcedVersion(content, e.minVersion, level)
		if err != nil {
			return qr.RawImageBuffer{}, mapEncodeError(err)
		}
	}

	code.DisableBorder = req.Margin == 0

	logger.Debug("Encoded symbol", logger.LoggerInfo{
		ContextFunction: constant.CtxEncode,
		Data: map[string]interface{}{
			constant.DataPayloadLen: len(req.Payload),
			constant.DataDimension:  req.Dimension,
			constant.DataLevel:      req.Level.String(),
			constant.DataMargin:     req.Margin,
			constant.DataVersion:    code.VersionNumber,
		},
	})

	return rasterize(code.Image(int(req.Dimension)), int(req.Dimension)), nil
}

// recoveryLevel maps the pipeline's level names onto skip2's. skip2 calls
// quartile recovery "High" and the real high level "Highest".
func recoveryLevel(level qr.ECCLevel) skip2.RecoveryLevel {
	switch level {
	case qr.Low:
		return skip2.Low
	case qr.Medium:
		return skip2.Medium
	case qr.Quartile:
		return skip2.High
	case qr.High:
		return skip2.Highest
	default:
		return skip2.Medium
	}
}

// mapEncodeError translates primitive errors into the pipeline taxonomy.
func mapEncodeError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "too long") || strings.Contains(msg, "too large") {
		return qr.ErrCapacityExceeded
	}
	return fmt.Errorf("%w: %v", qr.ErrPrimitiveFailure, err)
}

// rasterize samples the primitive's image into a dimension×dimension raw
// buffer using the inverted-alpha convention: background 0xFFFFFFFF, module
// 0x00000000. Nearest-neighbor sampling also absorbs the case where the
// primitive returned a larger image than requested (it refuses to shrink
// below one pixel per module).
func rasterize(img image.Image, dimension int) qr.RawImageBuffer {
	buf := qr.NewRawImageBuffer(dimension)

	bounds := img.Bounds()
	side := bounds.Dx()

	for y := 0; y < dimension; y++ {
		sy := bounds.Min.Y + y*side/dimension
		for x := 0; x < dimension; x++ {
			sx := bounds.Min.X + x*side/dimension
			r, _, _, _ := img.At(sx, sy).RGBA()
			if uint8(r>>8) != 0xFF {
				buf.SetModule(x, y)
			}
		}
	}

	return buf
}
