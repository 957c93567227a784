// Package handlers implements the HTTP handlers for the matchmaking
// API. Success responses are plain JSON payloads; errors share the
// structured envelope below.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Success   bool       `json:"success"`
	Error     *ErrorInfo `json:"error"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorInfo describes one API error.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a structured error response from a types.Error.
func WriteError(w http.ResponseWriter, err *types.Error, logger *zap.Logger) {
	status := err.HTTPStatus
	if status == 0 {
		status = mapErrorCodeToHTTPStatus(err.Code)
	}

	if logger != nil {
		logger.Error("API error",
			zap.String("code", string(err.Code)),
			zap.String("message", err.Message),
			zap.Int("status", status),
			zap.Bool("retryable", err.Retryable),
			zap.Error(err.Cause),
		)
	}

	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(err.Code),
			Message:   err.Message,
			Retryable: err.Retryable,
		},
		Timestamp: time.Now(),
	})
}

// WriteErrorMessage writes a one-off error with an explicit status.
func WriteErrorMessage(w http.ResponseWriter, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, types.NewError(code, message).WithHTTPStatus(status), logger)
}

// WriteAnyError coerces any error into the envelope. Provider errors
// keep their code and retryability.
func WriteAnyError(w http.ResponseWriter, err error, logger *zap.Logger) {
	WriteError(w, toAPIError(err), logger)
}

// toAPIError normalizes errors from the agent and llm layers.
func toAPIError(err error) *types.Error {
	var typed *types.Error
	if errors.As(err, &typed) {
		return typed
	}

	var provErr *llm.Error
	if errors.As(err, &provErr) {
		status := provErr.HTTPStatus
		if status < 500 && status != http.StatusTooManyRequests {
			// Client-side upstream errors (bad key, bad request) are
			// still our fault from the caller's perspective.
			status = http.StatusBadGateway
		}
		return types.NewError(types.ErrUpstreamError, provErr.Message).
			WithHTTPStatus(status).
			WithRetryable(provErr.Retryable).
			WithCause(provErr)
	}

	return types.NewError(types.ErrInternalError, err.Error()).
		WithHTTPStatus(http.StatusInternalServerError)
}

func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrUnauthorized:
		return http.StatusUnauthorized
	case types.ErrNotFound, types.ErrSessionComplete:
		return http.StatusNotFound
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrTimeout:
		return http.StatusGatewayTimeout
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	case types.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody strictly decodes a JSON request body into dst,
// writing the error response itself on failure.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) error {
	if r.Body == nil {
		err := types.NewError(types.ErrInvalidRequest, "request body is empty")
		WriteError(w, err, logger)
		return err
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		apiErr := types.NewError(types.ErrInvalidRequest, "invalid JSON body").
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
		WriteError(w, apiErr, logger)
		return apiErr
	}
	return nil
}
