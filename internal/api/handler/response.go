package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"loan-servicing/internal/api/handler/dto"
	"loan-servicing/internal/domain/schedule"
	"loan-servicing/internal/pkg/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error","code":"INTERNAL"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError maps domain and infrastructure errors onto an HTTP status and
// the common error body.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	detail := dto.ErrorDetail{Message: "An unexpected error occurred.", Code: "INTERNAL"}
	status := http.StatusInternalServerError

	var validationErr *apperrors.ValidationError
	var termsErr *schedule.InvalidLoanTermsError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, detail = http.StatusNotFound, dto.ErrorDetail{Message: "Resource not found.", Code: "NOT_FOUND"}
	case errors.As(err, &validationErr):
		status, detail = http.StatusBadRequest, dto.ErrorDetail{Message: validationErr.Message, Field: validationErr.Field, Code: "VALIDATION_FAILED"}
	case errors.As(err, &termsErr):
		status, detail = http.StatusBadRequest, dto.ErrorDetail{Message: termsErr.Error(), Field: termsErr.Field, Code: "INVALID_LOAN_TERMS"}
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status, detail = http.StatusBadRequest, dto.ErrorDetail{Message: err.Error(), Code: "INVALID_ARGUMENT"}
	case errors.Is(err, apperrors.ErrNotSchedulable):
		status, detail = http.StatusConflict, dto.ErrorDetail{Message: err.Error(), Code: "NOT_SCHEDULABLE"}
	case errors.Is(err, apperrors.ErrUpstream):
		status, detail = http.StatusBadGateway, dto.ErrorDetail{Message: "Loan API request failed.", Code: "UPSTREAM_ERROR"}
		if errors.As(err, &appErr) {
			detail.Code = appErr.Code
		}
		logger.ErrorContext(r.Context(), "Loan API request failed", "error", err)
	case errors.Is(err, context.DeadlineExceeded):
		status, detail = http.StatusGatewayTimeout, dto.ErrorDetail{Message: "Request timed out.", Code: "TIMEOUT"}
		logger.WarnContext(r.Context(), "Request timed out", "error", err)
	case errors.As(err, &appErr):
		detail.Code = appErr.Code
		logger.ErrorContext(r.Context(), "Request failed", "error", err)
	default:
		logger.ErrorContext(r.Context(), "Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}
