package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/prasetyowira/qrpix/constant"
)

func setupTestRouter(mockService *MockService) *Router {
	handler := NewHandler(mockService)
	router := NewRouter(handler)
	router.SetupRoutes()
	return router
}

func TestRouter_Healthcheck(t *testing.T) {
	// Arrange
	router := setupTestRouter(new(MockService))

	req := httptest.NewRequest("GET", constant.RouteHealthcheck, nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.MsgHealthy, w.Body.String())
}

func TestRouter_QRImageRoute(t *testing.T) {
	// Arrange
	mockService := new(MockService)
	mockService.On("GeneratePNG", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]byte("png"), nil)
	router := setupTestRouter(mockService)

	req := httptest.NewRequest("GET", constant.RouteQRImage+"?data=hello", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(constant.HeaderRequestID))
}

func TestRouter_UnknownRoute(t *testing.T) {
	// Arrange
	router := setupTestRouter(new(MockService))

	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}
