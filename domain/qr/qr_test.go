package qr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestECCLevel_String(t *testing.T) {
	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "quartile", Quartile.String())
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "unknown", ECCLevel(42).String())
}

func TestParseECCLevel(t *testing.T) {
	cases := []struct {
		in    string
		level ECCLevel
		ok    bool
	}{
		{"low", Low, true},
		{"l", Low, true},
		{"medium", Medium, true},
		{"m", Medium, true},
		{"quartile", Quartile, true},
		{"q", Quartile, true},
		{"high", High, true},
		{"h", High, true},
		{"", Low, false},
		{"HIGH", Low, false},
		{"ultra", Low, false},
	}

	for _, c := range cases {
		level, ok := ParseECCLevel(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.level, level, "input %q", c.in)
		}
	}
}

func TestParamsForLength_PrefersStrongestThatFits(t *testing.T) {
	cases := []struct {
		n     int
		level ECCLevel
		ok    bool
	}{
		{1, High, true},
		{220, High, true},
		{221, Quartile, true},
		{292, Quartile, true},
		{293, Medium, true},
		{2331, Medium, true},
		{2332, Low, true},
		{2953, Low, true},
		{2954, Low, false},
	}

	for _, c := range cases {
		level, ok := ParamsForLength(c.n)
		assert.Equal(t, c.ok, ok, "length %d", c.n)
		assert.Equal(t, c.level, level, "length %d", c.n)
	}
}

func TestEncodeRequestValidate_ZeroDimension(t *testing.T) {
	// Arrange
	req := EncodeRequest{Payload: []byte("hello"), Dimension: 0}

	// Act
	err := req.Validate()

	// Assert
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeRequestValidate_EmptyPayload(t *testing.T) {
	// Arrange
	req := EncodeRequest{Payload: nil, Dimension: 300}

	// Act
	err := req.Validate()

	// Assert
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeRequestValidate_PayloadTooLong(t *testing.T) {
	// Arrange
	req := EncodeRequest{Payload: bytes.Repeat([]byte("a"), MaxPayloadLen+1), Dimension: 300}

	// Act
	err := req.Validate()

	// Assert
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestEncodeRequestValidate_MaxPayloadAccepted(t *testing.T) {
	// Arrange
	req := EncodeRequest{Payload: bytes.Repeat([]byte("a"), MaxPayloadLen), Dimension: 300}

	// Act
	err := req.Validate()

	// Assert
	assert.NoError(t, err)
}
