package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prasetyowira/qrpix/constant"
	"github.com/prasetyowira/qrpix/domain/qr"
	appLogger "github.com/prasetyowira/qrpix/infrastructure/logger"
)

// maxDimension bounds the size query parameter so a single request cannot
// allocate arbitrarily large bitmaps.
const maxDimension = 4096

// defaultDimension is used when the size parameter is absent.
const defaultDimension = 300

// ImageService is the subset of the domain service the handlers need.
type ImageService interface {
	GeneratePNG(ctx context.Context, payload []byte, dimension uint32, level qr.ECCLevel) ([]byte, error)
}

// Handler contains service dependencies for API handlers
type Handler struct {
	service ImageService
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewHandler creates a new API handler
func NewHandler(service ImageService) *Handler {
	return &Handler{
		service: service,
	}
}

// GetQRImage serves a rendered QR code as a PNG.
//
// Query parameters:
//
//	data  - the payload to encode (required)
//	size  - target dimension in pixels (optional, default 300)
//	level - error correction level: low|medium|quartile|high
//	        (optional, chosen from payload length when absent)
func (h *Handler) GetQRImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := r.URL.Query().Get("data")
	if data == "" {
		WriteJSONError(w, "Missing data parameter", http.StatusBadRequest)
		return
	}

	dimension := defaultDimension
	if sizeParam := r.URL.Query().Get("size"); sizeParam != "" {
		parsed, err := strconv.Atoi(sizeParam)
		if err != nil || parsed <= 0 || parsed > maxDimension {
			appLogger.CtxWarn(ctx, "Invalid size parameter", appLogger.LoggerInfo{
				ContextFunction: constant.CtxQRImage,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAPIBadParams,
					Message: "size must be a positive integer up to 4096",
					Type:    constant.ErrTypeAPI,
				},
				Data: map[string]interface{}{
					constant.DataSize: sizeParam,
				},
			})

			WriteJSONError(w, "Invalid size parameter", http.StatusBadRequest)
			return
		}
		dimension = parsed
	}

	level, ok := qr.ParamsForLength(len(data))
	if levelParam := r.URL.Query().Get("level"); levelParam != "" {
		parsed, valid := qr.ParseECCLevel(levelParam)
		if !valid {
			WriteJSONError(w, "Invalid level parameter", http.StatusBadRequest)
			return
		}
		level = parsed
	} else if !ok {
		WriteJSONError(w, "Payload exceeds QR code capacity", http.StatusUnprocessableEntity)
		return
	}

	appLogger.CtxDebug(ctx, "Handling QR image request", appLogger.LoggerInfo{
		ContextFunction: constant.CtxQRImage,
		Data: map[string]interface{}{
			constant.DataPayloadLen: len(data),
			constant.DataDimension:  dimension,
			constant.DataLevel:      level.String(),
		},
	})

	png, err := h.service.GeneratePNG(ctx, []byte(data), uint32(dimension), level)
	if err != nil {
		if errors.Is(err, qr.ErrInvalidInput) {
			WriteJSONError(w, "Invalid QR parameters", http.StatusBadRequest)
			return
		}
		if errors.Is(err, qr.ErrCapacityExceeded) {
			WriteJSONError(w, "Payload exceeds QR code capacity", http.StatusUnprocessableEntity)
			return
		}

		appLogger.CtxError(ctx, "Error generating QR image", appLogger.LoggerInfo{
			ContextFunction: constant.CtxQRImage,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataPayloadLen: len(data),
				constant.DataDimension:  dimension,
			},
		})

		WriteJSONError(w, "Failed to generate QR image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}
