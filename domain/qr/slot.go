package qr

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/infrastructure/cache"
	"github.com/prasetyowira/qrpix/infrastructure/logger"
)

// Slot is the capability handed to one display element. UpdateInput kicks
// off a fresh async encode; a newer call supersedes any in-flight one, and
// the superseded result is dropped without touching the slot. Dispose tears
// the slot down permanently; late results arriving afterwards are ignored.
type Slot interface {
	UpdateInput(ctx context.Context, payload []byte, dimension uint32)
	Current() (image.Image, bool)
	Dispose()
}

// displaySlot is the explicit state struct behind Slot. Supersession is a
// monotonically increasing sequence number: a result is applied only when
// its sequence matches the latest issued. Acting on a stale result could
// write into a torn-down or repurposed display element, so dropping is a
// correctness requirement, not an optimization.
type displaySlot struct {
	service *Service
	seq     atomic.Uint64

	mutex    sync.Mutex
	disposed bool
	current  image.Image
}

// NewSlot creates a display slot bound to this service's pipeline and cache.
func (s *Service) NewSlot() Slot {
	return &displaySlot{service: s}
}

// UpdateInput issues a new encode for the slot. The error correction level
// follows the auto policy: payloads that fit the minimum symbol version get
// the strongest level that still fits.
func (d *displaySlot) UpdateInput(ctx context.Context, payload []byte, dimension uint32) {
	seq := d.seq.Add(1)

	level, ok := ParamsForLength(len(payload))
	if !ok {
		// Let the encoder produce the capacity error; the slot shows the
		// placeholder either way.
		level = Low
	}

	logger.CtxDebug(ctx, "Slot input updated", logger.LoggerInfo{
		ContextFunction: constant.CtxUpdateInput,
		Data: map[string]interface{}{
			constant.DataPayloadLen: len(payload),
			constant.DataDimension:  dimension,
			constant.DataLevel:      level.String(),
			constant.DataSeq:        seq,
		},
	})

	req := EncodeRequest{Payload: payload, Dimension: dimension, Level: level, Margin: defaultMargin}
	results := d.service.dispatcher.EncodeAsync(ctx, req, d.service.theme, seq)

	go func() {
		res, ok := <-results
		if !ok {
			return
		}
		d.applyResult(ctx, res, payload, dimension)
	}()
}

// Current returns the most recently applied image, if any.
func (d *displaySlot) Current() (image.Image, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.current == nil {
		return nil, false
	}
	return d.current, true
}

// Dispose permanently tears the slot down. The cache keeps ownership of any
// decoded bitmaps the slot displayed; they are released on eviction.
func (d *displaySlot) Dispose() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.disposed = true
	d.current = nil

	logger.Debug("Slot disposed", logger.LoggerInfo{
		ContextFunction: constant.CtxDispose,
		Data: map[string]interface{}{
			constant.DataSeq: d.seq.Load(),
		},
	})
}

// applyResult applies a worker result to the slot, or drops it when stale.
func (d *displaySlot) applyResult(ctx context.Context, res EncodeResult, payload []byte, dimension uint32) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	latest := d.seq.Load()
	if d.disposed || res.Seq != latest {
		logger.CtxDebug(ctx, constant.MsgStaleResultDropped, logger.LoggerInfo{
			ContextFunction: constant.CtxApplyResult,
			Data: map[string]interface{}{
				constant.DataSeq:       res.Seq,
				constant.DataLatestSeq: latest,
			},
		})
		return
	}

	if res.Err != nil {
		// Failures never crash the host; log and show the placeholder.
		logger.CtxWarn(ctx, "Encode failed, showing placeholder", logger.LoggerInfo{
			ContextFunction: constant.CtxApplyResult,
			Error: &logger.CustomError{
				Code:    constant.ErrCodePrimitiveFailure,
				Message: res.Err.Error(),
				Type:    constant.ErrTypeEncode,
			},
			Data: map[string]interface{}{
				constant.DataDimension: dimension,
			},
		})
		d.current = Placeholder(int(dimension))
		return
	}

	target := float64(dimension)
	key := cache.NewKey(payload, target)

	value, err := d.service.cache.GetOrCreate(key, func() (cache.Value, error) {
		return d.service.decodeResult(res, target)
	})
	if err != nil {
		logger.CtxError(ctx, "Pixel decode failed, showing placeholder", logger.LoggerInfo{
			ContextFunction: constant.CtxApplyResult,
			Error: &logger.CustomError{
				Code:    constant.ErrCodePixelDecode,
				Message: err.Error(),
				Type:    constant.ErrTypeDecode,
			},
		})
		d.current = Placeholder(int(dimension))
		return
	}

	img := value.(*DecodedImage)
	d.current = Render(img, target, d.service.theme)
	img.Release()
}
