// Package qr implements the QR image generation pipeline: payload bytes in,
// correctly scaled, themed, cached bitmap out.
//
// A QR code is an N×N grid of modules where N = 17 + 4*version (version 1-40).
// The error correction level (L/M/Q/H) lets roughly 7%/15%/25%/30% of the
// symbol be damaged while still scanning. Encoding always uses Byte mode;
// many wallet scanners mishandle the uppercase alphanumeric form of bech32
// addresses. The symbol placement and Reed-Solomon math live in the external
// encoding primitive; this package owns everything layered around it:
// measuring the true border the primitive leaves (the scrim), recoloring the
// pixel buffer, async dispatch with supersession, caching, and scale math.
package qr

import (
	"errors"
	"fmt"

	"github.com/prasetyowira/qrpix/constant"
)

// ECCLevel is the QR error correction strength.
type ECCLevel int

const (
	Low ECCLevel = iota
	Medium
	Quartile
	High
)

// String returns the lowercase level name.
func (l ECCLevel) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case Quartile:
		return "quartile"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// ParseECCLevel parses a level name as used in API query params.
func ParseECCLevel(s string) (ECCLevel, bool) {
	switch s {
	case "low", "l":
		return Low, true
	case "medium", "m":
		return Medium, true
	case "quartile", "q":
		return Quartile, true
	case "high", "h":
		return High, true
	default:
		return Low, false
	}
}

// EncodeRequest describes one encode operation. Dimension must be positive;
// Margin is passed to the primitive but is not trustworthy (see MeasureScrim).
type EncodeRequest struct {
	Payload   []byte
	Dimension uint32
	Level     ECCLevel
	Margin    uint32
}

// BarcodeEncoder is the external encoding primitive. Implementations must
// return a buffer of exactly Dimension×Dimension pixels and must not retry
// internally; retry policy belongs to the caller.
type BarcodeEncoder interface {
	Encode(req EncodeRequest) (RawImageBuffer, error)
}

// Sentinel errors for the encode/decode pipeline. Wrapped details carry the
// specific validation or primitive message; match with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid encode input")
	ErrCapacityExceeded = errors.New(constant.ErrPayloadTooLong)
	ErrPrimitiveFailure = errors.New(constant.ErrPrimitiveFailed)
	ErrPlatformFailure  = errors.New(constant.ErrPixelDecode)
)

// MinVersion pads short payloads up to version 15 (77 modules per side) so
// codes for a bitcoin address and a lightning invoice take up roughly the
// same space on screen. Short inputs get more error correction instead of a
// smaller symbol.
const MinVersion = 15

// Byte-mode capacity limits for the auto parameter policy.
const (
	maxLenHighV15     = 220
	maxLenQuartileV15 = 292
	maxLenMediumV15   = 412
	maxLenMediumV40   = 2331

	// MaxPayloadLen is the hard capacity limit: QR version 40 at level L.
	MaxPayloadLen = 2953
)

// ParamsForLength picks the error correction level for a payload of n bytes.
// Payloads that fit version 15 get the strongest level that still fits, so
// the symbol stays at MinVersion; longer payloads trade correction strength
// for capacity. Returns false when n exceeds MaxPayloadLen.
func ParamsForLength(n int) (ECCLevel, bool) {
	switch {
	case n <= maxLenHighV15:
		return High, true
	case n <= maxLenQuartileV15:
		return Quartile, true
	case n <= maxLenMediumV40:
		return Medium, true
	case n <= MaxPayloadLen:
		return Low, true
	default:
		return Low, false
	}
}

// Validate checks the request invariants shared by every encoder
// implementation.
func (r EncodeRequest) Validate() error {
	if r.Dimension == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, constant.ErrZeroDimension)
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, constant.ErrEmptyPayload)
	}
	if len(r.Payload) > MaxPayloadLen {
		return ErrCapacityExceeded
	}
	return nil
}
