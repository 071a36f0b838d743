package qr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/png"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/infrastructure/cache"
	"github.com/prasetyowira/qrpix/infrastructure/logger"
)

// defaultMargin is the quiet zone requested from the primitive, in modules.
// The primitive does not honor it reliably, which is why the scrim is
// measured instead of assumed.
const defaultMargin = 4

// ErrRenderedNotFound is returned by a RenderStore when no persisted image
// exists for the key.
var ErrRenderedNotFound = errors.New(constant.ErrRenderedNotFound)

// RenderStore persists final rendered PNGs across restarts. The in-memory
// cache stays authoritative for decoded bitmaps; the store only short-cuts
// the full pipeline for repeat requests after a restart.
type RenderStore interface {
	Load(ctx context.Context, payloadSum string, dimension int, foreground string) ([]byte, error)
	Save(ctx context.Context, payloadSum string, dimension int, foreground string, data []byte) error
}

// Service wires the pipeline together: dispatch, decode, cache, render.
type Service struct {
	dispatcher *Dispatcher
	cache      *cache.ImageCache
	store      RenderStore
	theme      *RGB
}

// NewService creates the image generation service. store may be nil to run
// without persistence; theme may be nil to defer coloring to render time.
func NewService(enc BarcodeEncoder, imageCache *cache.ImageCache, store RenderStore, theme *RGB) *Service {
	ctx := logger.NewRequestContext()

	logger.CtxDebug(ctx, "Creating QR image service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService:    "qrimage",
			constant.DataForeground: theme != nil,
		},
	})

	return &Service{
		dispatcher: NewDispatcher(enc),
		cache:      imageCache,
		store:      store,
		theme:      theme,
	}
}

// Generate produces the final drawable image for the payload at the given
// square dimension. Repeated requests for the same payload and dimension are
// served from the cache without re-invoking the encoding primitive.
func (s *Service) Generate(ctx context.Context, payload []byte, dimension uint32, level ECCLevel) (image.Image, error) {
	req := EncodeRequest{Payload: payload, Dimension: dimension, Level: level, Margin: defaultMargin}
	if err := req.Validate(); err != nil {
		code := constant.ErrCodeEmptyPayload
		switch {
		case errors.Is(err, ErrCapacityExceeded):
			code = constant.ErrCodeCapacityExceeded
		case dimension == 0:
			code = constant.ErrCodeZeroDimension
		}
		logger.CtxWarn(ctx, "Rejecting encode request", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    code,
				Message: err.Error(),
				Type:    constant.ErrTypeValidation,
			},
			Data: map[string]interface{}{
				constant.DataPayloadLen: len(payload),
				constant.DataDimension:  dimension,
			},
		})
		return nil, err
	}

	target := float64(dimension)
	key := cache.NewKey(payload, target)

	value, err := s.cache.GetOrCreate(key, func() (cache.Value, error) {
		res := <-s.dispatcher.EncodeAsync(ctx, req, s.theme, 0)
		if res.Err != nil {
			return nil, res.Err
		}
		return s.decodeResult(res, target)
	})
	if err != nil {
		logger.CtxError(ctx, "Failed to produce QR image", logger.LoggerInfo{
			ContextFunction: constant.CtxGenerate,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeProduceFail,
				Message: err.Error(),
				Type:    constant.ErrTypeEncode,
			},
			Data: map[string]interface{}{
				constant.DataPayloadLen: len(payload),
				constant.DataDimension:  dimension,
				constant.DataLevel:      level.String(),
			},
		})
		return nil, err
	}

	img := value.(*DecodedImage)
	defer img.Release()

	logger.CtxDebug(ctx, "QR image ready", logger.LoggerInfo{
		ContextFunction: constant.CtxGenerate,
		Data: map[string]interface{}{
			constant.DataDimension: dimension,
			constant.DataScrim:     img.Scrim,
			constant.DataScale:     img.Scale,
		},
	})

	return Render(img, target, s.theme), nil
}

// GeneratePNG returns the rendered image encoded as PNG, consulting the
// persistent store before running the pipeline and saving fresh renders
// back. Store failures degrade to a plain Generate; they are logged, never
// surfaced.
func (s *Service) GeneratePNG(ctx context.Context, payload []byte, dimension uint32, level ECCLevel) ([]byte, error) {
	sum := payloadSum(payload)
	foreground := ""
	if s.theme != nil {
		foreground = s.theme.String()
	}

	if s.store != nil {
		data, err := s.store.Load(ctx, sum, int(dimension), foreground)
		if err == nil {
			logger.CtxDebug(ctx, "Rendered image served from store", logger.LoggerInfo{
				ContextFunction: constant.CtxGeneratePNG,
				Data: map[string]interface{}{
					constant.DataPayloadSum: sum,
					constant.DataDimension:  dimension,
				},
			})
			return data, nil
		}
		if !errors.Is(err, ErrRenderedNotFound) {
			logger.CtxWarn(ctx, "Render store lookup failed", logger.LoggerInfo{
				ContextFunction: constant.CtxGeneratePNG,
				Error: &logger.CustomError{
					Code:    constant.ErrCodeDBLookup,
					Message: err.Error(),
					Type:    constant.ErrTypeDB,
				},
			})
		}
	}

	img, err := s.Generate(ctx, payload, dimension, level)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Join(ErrPlatformFailure, err)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, sum, int(dimension), foreground, buf.Bytes()); err != nil {
			logger.CtxWarn(ctx, "Render store save failed", logger.LoggerInfo{
				ContextFunction: constant.CtxGeneratePNG,
				Error: &logger.CustomError{
					Code:    constant.ErrCodeDBInsert,
					Message: err.Error(),
					Type:    constant.ErrTypeDB,
				},
			})
		}
	}

	return buf.Bytes(), nil
}

// InvalidateCache drops the cached bitmap for one payload and dimension,
// releasing its handle.
func (s *Service) InvalidateCache(payload []byte, dimension uint32) {
	s.cache.Invalidate(cache.NewKey(payload, float64(dimension)))
}

// decodeResult turns a worker result into a reference-counted DecodedImage.
// The pixel decode runs here, on the consuming side of the dispatch channel.
func (s *Service) decodeResult(res EncodeResult, target float64) (*DecodedImage, error) {
	bitmap, err := DecodePixels(res.Buffer)
	if err != nil {
		return nil, err
	}
	return NewDecodedImage(bitmap, res.Scrim, RenderScale(target, res.Scrim), s.theme != nil), nil
}

// payloadSum is the store key for a payload: SHA-256, hex encoded.
func payloadSum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
