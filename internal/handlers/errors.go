package handlers

import (
	"errors"
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

const msgInternal = "Internal server error"

// handleError turns a service error into the JSON error body. Anything
// that is not a BusinessError is logged and answered with a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		logger.Error("HTTP: unexpected service error", err, zap.String("request_id", requestID))
		responseWithError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: service failure", businessErr.Err,
			zap.String("request_id", requestID),
			zap.String("error_code", businessErr.Code))
	} else {
		logger.Warn("HTTP: business error",
			zap.String("request_id", requestID),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))
	}

	payload := []Payload{toPayload("error", businessErr.Message)}
	if len(businessErr.Details) > 0 {
		payload = append(payload, toPayload("details", businessErr.Details))
	}
	responseWithJSON(w, statusCode, payload...)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation, service.CodeMissingFields:
		return http.StatusBadRequest
	case service.CodeUnauthorized, service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
