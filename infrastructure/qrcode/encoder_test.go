package qrcode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/makiuchi-d/gozxing"
	gozxingQR "github.com/makiuchi-d/gozxing/qrcode"
	skip2 "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"

	"github.com/prasetyowira/qrpix/domain/qr"
)

const testAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func TestEncode_EmptyPayload(t *testing.T) {
	// Arrange
	enc := NewEncoder(qr.MinVersion)

	// Act
	_, err := enc.Encode(qr.EncodeRequest{Payload: nil, Dimension: 300, Level: qr.High})

	// Assert
	assert.True(t, errors.Is(err, qr.ErrInvalidInput))
}

func TestEncode_ZeroDimension(t *testing.T) {
	// Arrange
	enc := NewEncoder(qr.MinVersion)

	// Act
	_, err := enc.Encode(qr.EncodeRequest{Payload: []byte("hello"), Dimension: 0, Level: qr.High})

	// Assert
	assert.True(t, errors.Is(err, qr.ErrInvalidInput))
}

func TestEncode_PayloadOverHardLimit(t *testing.T) {
	// Arrange
	enc := NewEncoder(qr.MinVersion)
	payload := bytes.Repeat([]byte("a"), qr.MaxPayloadLen+1)

	// Act
	_, err := enc.Encode(qr.EncodeRequest{Payload: payload, Dimension: 300, Level: qr.Low})

	// Assert
	assert.True(t, errors.Is(err, qr.ErrCapacityExceeded))
}

func TestEncode_PayloadOverCapacityForLevel(t *testing.T) {
	// Arrange: 2500 bytes fit version 40 at L but not at H
	enc := NewEncoder(qr.MinVersion)
	payload := bytes.Repeat([]byte("a"), 2500)

	// Act
	_, err := enc.Encode(qr.EncodeRequest{Payload: payload, Dimension: 300, Level: qr.High})

	// Assert
	assert.True(t, errors.Is(err, qr.ErrCapacityExceeded))
}

func TestEncode_BufferConvention(t *testing.T) {
	// Arrange
	enc := NewEncoder(qr.MinVersion)

	// Act
	buf, err := enc.Encode(qr.EncodeRequest{
		Payload:   []byte(testAddress),
		Dimension: 300,
		Level:     qr.High,
		Margin:    4,
	})

	// Assert: exact size, and every pixel is either background or module
	assert.NoError(t, err)
	assert.Equal(t, 300, buf.Dimension)
	assert.Equal(t, 300*300*4, len(buf.Pix))

	background := [4]uint8{0xFF, 0xFF, 0xFF, 0xFF}
	module := [4]uint8{0x00, 0x00, 0x00, 0x00}
	modules := 0
	for i := 0; i < len(buf.Pix); i += 4 {
		px := [4]uint8(buf.Pix[i : i+4])
		switch px {
		case module:
			modules++
		case background:
		default:
			t.Fatalf("unexpected pixel %v at offset %d", px, i)
		}
	}
	assert.Greater(t, modules, 0, "symbol should contain drawn modules")
}

func TestEncode_ScrimIsMeasurable(t *testing.T) {
	// Arrange
	enc := NewEncoder(qr.MinVersion)

	// Act
	buf, err := enc.Encode(qr.EncodeRequest{
		Payload:   []byte(testAddress),
		Dimension: 300,
		Level:     qr.High,
		Margin:    4,
	})

	// Assert: the primitive leaves some background border, and the walk
	// finds it without hitting the cap
	assert.NoError(t, err)
	scrim := qr.MeasureScrim(buf)
	assert.Greater(t, scrim, 0)
	assert.Less(t, scrim, 50)
}

func TestEncode_MinimumVersionPadsShortPayloads(t *testing.T) {
	// Arrange: a short payload fits version 1; version padding makes the
	// symbol much denser, so each module covers fewer pixels.
	req := qr.EncodeRequest{Payload: []byte("hi"), Dimension: 300, Level: qr.High, Margin: 4}

	unpadded, err := NewEncoder(0).Encode(req)
	assert.NoError(t, err)

	// Act
	padded, err := NewEncoder(qr.MinVersion).Encode(req)
	assert.NoError(t, err)

	// Assert: the finder pattern's outer ring is exactly one module thick
	// along the diagonal, so the first dark run measures the module size.
	assert.Less(t, modulePixelSize(padded), modulePixelSize(unpadded))
}

// modulePixelSize walks the diagonal and returns the length of the first
// dark run, the pixel width of one module of the top-left finder pattern.
func modulePixelSize(buf qr.RawImageBuffer) int {
	start := 0
	for ; start < buf.Dimension; start++ {
		if buf.Pix[(start*buf.Dimension+start)*4] != 0xFF {
			break
		}
	}
	end := start
	for ; end < buf.Dimension; end++ {
		if buf.Pix[(end*buf.Dimension+end)*4] == 0xFF {
			break
		}
	}
	return end - start
}

func TestEncode_RoundTrip(t *testing.T) {
	// Arrange: 340px gives the reader's grid estimator whole pixels per
	// module (version 15 is 77 modules plus the quiet zone); at 300px the
	// estimate drifts and detection fails.
	enc := NewEncoder(qr.MinVersion)

	buf, err := enc.Encode(qr.EncodeRequest{
		Payload:   []byte(testAddress),
		Dimension: 340,
		Level:     qr.High,
		Margin:    4,
	})
	assert.NoError(t, err)

	// The reader composites alpha over white, so the inverted-alpha modules
	// must be made opaque first, the same way Recolor does for display.
	qr.Recolor(buf, qr.RGB{})
	bitmap, err := qr.DecodePixels(buf)
	assert.NoError(t, err)

	// Act: decode the rendered pixels with an independent reader
	source := gozxing.NewLuminanceSourceFromImage(bitmap)
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	assert.NoError(t, err)

	result, err := gozxingQR.NewQRCodeReader().DecodeWithoutHints(bmp)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, testAddress, result.GetText())
}

func TestRecoveryLevelMapping(t *testing.T) {
	// skip2 names quartile recovery "High" and the real high "Highest"
	assert.Equal(t, skip2.Low, recoveryLevel(qr.Low))
	assert.Equal(t, skip2.Medium, recoveryLevel(qr.Medium))
	assert.Equal(t, skip2.High, recoveryLevel(qr.Quartile))
	assert.Equal(t, skip2.Highest, recoveryLevel(qr.High))
	assert.Equal(t, skip2.Medium, recoveryLevel(qr.ECCLevel(42)))
}
