package qr

import (
	"context"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/infrastructure/logger"
)

// EncodeResult is the worker's answer to one EncodeAsync call. Seq echoes the
// request's sequence number so the consumer can detect supersession. Err is
// set instead of Buffer when the encode failed.
type EncodeResult struct {
	Buffer RawImageBuffer
	Scrim  int
	Seq    uint64
	Err    error
}

// Dispatcher runs Encoder, ScrimDetector and (optionally) Recolorer on a
// worker goroutine per request so the calling control flow never blocks on
// pixel work. Cancellation is cooperative: a superseded result is dropped by
// the consumer, never interrupted mid-encode.
type Dispatcher struct {
	enc BarcodeEncoder
}

// NewDispatcher creates a dispatcher over the given encoding primitive.
func NewDispatcher(enc BarcodeEncoder) *Dispatcher {
	return &Dispatcher{enc: enc}
}

// EncodeAsync encodes the request off the calling goroutine and delivers one
// EncodeResult on the returned channel. When fg is non-nil the buffer is
// recolored on the worker before delivery; the scrim is always measured
// before recoloring so a light foreground cannot confuse the border walk.
// The channel is buffered and closed after the single send, so an abandoned
// result never leaks the worker.
func (d *Dispatcher) EncodeAsync(ctx context.Context, req EncodeRequest, fg *RGB, seq uint64) <-chan EncodeResult {
	out := make(chan EncodeResult, 1)

	go func() {
		defer close(out)

		buf, err := d.enc.Encode(req)
		if err != nil {
			logger.CtxWarn(ctx, "Encode failed", logger.LoggerInfo{
				ContextFunction: constant.CtxDispatch,
				Error: &logger.CustomError{
					Code:    constant.ErrCodePrimitiveFailure,
					Message: err.Error(),
					Type:    constant.ErrTypeEncode,
				},
				Data: map[string]interface{}{
					constant.DataPayloadLen: len(req.Payload),
					constant.DataDimension:  req.Dimension,
					constant.DataSeq:        seq,
				},
			})
			out <- EncodeResult{Seq: seq, Err: err}
			return
		}

		scrim := MeasureScrim(buf)
		if fg != nil {
			Recolor(buf, *fg)
		}

		logger.CtxDebug(ctx, "Encode completed", logger.LoggerInfo{
			ContextFunction: constant.CtxDispatch,
			Data: map[string]interface{}{
				constant.DataPayloadLen: len(req.Payload),
				constant.DataDimension:  req.Dimension,
				constant.DataScrim:      scrim,
				constant.DataSeq:        seq,
			},
		})

		out <- EncodeResult{Buffer: buf, Scrim: scrim, Seq: seq}
	}()

	return out
}
