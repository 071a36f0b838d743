package qr

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/prasetyowira/qrpix/infrastructure/cache"
)

// MockRenderStore is a testify mock of the persistent PNG store.
type MockRenderStore struct {
	mock.Mock
}

func (m *MockRenderStore) Load(ctx context.Context, payloadSum string, dimension int, foreground string) ([]byte, error) {
	args := m.Called(ctx, payloadSum, dimension, foreground)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderStore) Save(ctx context.Context, payloadSum string, dimension int, foreground string, data []byte) error {
	args := m.Called(ctx, payloadSum, dimension, foreground, data)
	return args.Error(0)
}

func newTestService(enc BarcodeEncoder, store RenderStore) *Service {
	return NewService(enc, cache.NewImageCache(8), store, nil)
}

func TestGenerate_InvalidInputRejectedBeforeDispatch(t *testing.T) {
	// Arrange
	mockEnc := new(MockEncoder)
	service := newTestService(mockEnc, nil)

	// Act
	img, err := service.Generate(context.Background(), nil, 300, High)

	// Assert
	assert.Nil(t, img)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	mockEnc.AssertNotCalled(t, "Encode")
}

func TestGenerate_RepeatRequestServedFromCache(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	service := newTestService(enc, nil)
	ctx := context.Background()
	payload := []byte("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")

	// Act
	first, err1 := service.Generate(ctx, payload, 300, High)
	second, err2 := service.Generate(ctx, payload, 300, High)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, 300, first.Bounds().Dx())
	assert.Equal(t, 300, first.Bounds().Dy())
	assert.Equal(t, int32(1), enc.calls.Load(), "second request must not re-run the encoder")
}

func TestGenerate_DifferentDimensionMissesCache(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	service := newTestService(enc, nil)
	ctx := context.Background()
	payload := []byte("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")

	// Act
	_, err1 := service.Generate(ctx, payload, 300, High)
	_, err2 := service.Generate(ctx, payload, 150, High)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, int32(2), enc.calls.Load())
}

func TestGenerate_FailureNotCached(t *testing.T) {
	// Arrange
	enc := &gateEncoder{err: errors.New("transient encode failure")}
	service := newTestService(enc, nil)
	ctx := context.Background()
	payload := []byte("hello")

	// Act: first attempt fails, then the encoder recovers
	_, err1 := service.Generate(ctx, payload, 300, High)
	enc.err = nil
	img, err2 := service.Generate(ctx, payload, 300, High)

	// Assert
	assert.Error(t, err1)
	assert.NoError(t, err2)
	assert.NotNil(t, img)
	assert.Equal(t, int32(2), enc.calls.Load(), "a failed produce must be retried")
}

func TestInvalidateCache_ForcesReencode(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	service := newTestService(enc, nil)
	ctx := context.Background()
	payload := []byte("hello")

	_, err := service.Generate(ctx, payload, 300, High)
	assert.NoError(t, err)

	// Act
	service.InvalidateCache(payload, 300)
	_, err = service.Generate(ctx, payload, 300, High)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int32(2), enc.calls.Load())
}

func TestGenerate_EvictionDuringRenderKeepsBitmapValid(t *testing.T) {
	// Arrange: capacity one, so any second payload evicts the first
	enc := &gateEncoder{}
	c := cache.NewImageCache(1)
	service := NewService(enc, c, nil, nil)
	ctx := context.Background()

	// Hold a decoded image the way Generate does between lookup and draw
	payload := []byte("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	req := EncodeRequest{Payload: payload, Dimension: 100, Level: High, Margin: defaultMargin}
	res := <-service.dispatcher.EncodeAsync(ctx, req, nil, 0)
	assert.NoError(t, res.Err)
	value, err := c.GetOrCreate(cache.NewKey(payload, 100), func() (cache.Value, error) {
		return service.decodeResult(res, 100)
	})
	assert.NoError(t, err)

	// Act: a second payload evicts the first entry while it is still held
	_, err = service.Generate(ctx, []byte("other"), 100, High)
	assert.NoError(t, err)

	// Assert: the held image stays drawable; only the last release frees it
	img := value.(*DecodedImage)
	assert.NotNil(t, img.Bitmap)
	out := Render(img, 100, nil)
	assert.Equal(t, 100, out.Bounds().Dx())

	img.Release()
	assert.True(t, img.Released())
}

func TestGeneratePNG_RendersAndPersists(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	mockStore := new(MockRenderStore)
	service := newTestService(enc, mockStore)

	mockStore.On("Load", mock.Anything, mock.Anything, 300, "").Return(nil, ErrRenderedNotFound)
	mockStore.On("Save", mock.Anything, mock.Anything, 300, "", mock.Anything).Return(nil)

	// Act
	data, err := service.GeneratePNG(context.Background(), []byte("hello"), 300, High)

	// Assert
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
	mockStore.AssertExpectations(t)
}

func TestGeneratePNG_ServedFromStore(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	mockStore := new(MockRenderStore)
	service := newTestService(enc, mockStore)

	persisted := []byte("persisted png bytes")
	mockStore.On("Load", mock.Anything, mock.Anything, 300, "").Return(persisted, nil)

	// Act
	data, err := service.GeneratePNG(context.Background(), []byte("hello"), 300, High)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, persisted, data)
	assert.Equal(t, int32(0), enc.calls.Load(), "a store hit must skip the pipeline")
	mockStore.AssertNotCalled(t, "Save")
}

func TestGeneratePNG_StoreFailuresDegradeGracefully(t *testing.T) {
	// Arrange
	enc := &gateEncoder{}
	mockStore := new(MockRenderStore)
	service := newTestService(enc, mockStore)

	mockStore.On("Load", mock.Anything, mock.Anything, 300, "").Return(nil, errors.New("disk on fire"))
	mockStore.On("Save", mock.Anything, mock.Anything, 300, "", mock.Anything).Return(errors.New("still on fire"))

	// Act
	data, err := service.GeneratePNG(context.Background(), []byte("hello"), 300, High)

	// Assert: storage trouble never blocks image generation
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

func TestGeneratePNG_PropagatesEncodeErrors(t *testing.T) {
	// Arrange
	enc := &gateEncoder{err: errors.New("boom")}
	service := newTestService(enc, nil)

	// Act
	data, err := service.GeneratePNG(context.Background(), []byte("hello"), 300, High)

	// Assert
	assert.Nil(t, data)
	assert.Error(t, err)
}
