package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"scheme-eligibility-service/internal/domain"
)

// ErrorCode is the machine-readable reason attached to an error response.
type ErrorCode string

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidJSON     ErrorCode = "INVALID_JSON"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSchemeNotFound  ErrorCode = "SCHEME_NOT_FOUND"
	ErrCodeUnknownQuestion ErrorCode = "UNKNOWN_QUESTION"
	ErrCodeOutOfOrder      ErrorCode = "OUT_OF_ORDER"
	ErrCodeComplete        ErrorCode = "QUESTIONNAIRE_COMPLETE"
	ErrCodeInvalidAnswer   ErrorCode = "INVALID_ANSWER"
)

type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      ErrorCode `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
}

// statusFor maps domain sentinels onto HTTP statuses.
func statusFor(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ErrCodeSessionNotFound
	case errors.Is(err, domain.ErrSchemeNotFound):
		return http.StatusNotFound, ErrCodeSchemeNotFound
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, ErrCodeUnknownQuestion
	case errors.Is(err, domain.ErrUnexpectedQuestion):
		return http.StatusConflict, ErrCodeOutOfOrder
	case errors.Is(err, domain.ErrFlowComplete):
		return http.StatusConflict, ErrCodeComplete
	case errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusUnprocessableEntity, ErrCodeInvalidAnswer
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeErrorResponse(w, r, status, code, message)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
