package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"loan-servicing/internal/api/handler/dto"
	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/pkg/apperrors"
)

const (
	defaultTransitionLimit = 50
	maxTransitionLimit     = 500
)

// TransitionReader is the read side of the snapshot store.
type TransitionReader interface {
	ListTransitions(ctx context.Context, loanID string, limit int) ([]loan.StatusTransition, error)
}

type ScheduleHandler struct {
	service     loan.ScheduleService
	transitions TransitionReader
	logger      *slog.Logger
}

func NewScheduleHandler(s loan.ScheduleService, tr TransitionReader, l *slog.Logger) *ScheduleHandler {
	if s == nil {
		panic("schedule service cannot be nil")
	}
	if tr == nil {
		panic("transition reader cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ScheduleHandler{
		service:     s,
		transitions: tr,
		logger:      l.With("component", "ScheduleHandler"),
	}
}

func getLoanIDFromURL(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "loanID"))
	if id == "" {
		return "", fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument)
	}
	return id, nil
}

// GetSchedule returns a loan's installments with statuses derived as of now.
//
// @Summary Get a loan's payment schedule
// @Description Derives every installment's status (paid, pending, overdue, missed) from the loan API's payment records. When the loan has no payment records a schedule is generated from its terms and source is "generated".
// @Tags Schedules
// @Produce json
// @Param loanID path string true "Loan ID"
// @Success 200 {object} dto.LoanScheduleResponse "Derived schedule"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or unusable loan terms"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is not active or approved"
// @Failure 502 {object} dto.ErrorResponse "Loan API unavailable"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/schedule [get]
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ls, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanScheduleResponse(ls))
}

// ListTransitions returns the status changes the sweep recorded for a loan, newest first.
//
// @Summary List installment status transitions
// @Tags Schedules
// @Produce json
// @Param loanID path string true "Loan ID"
// @Param limit query int false "Maximum number of transitions (default 50, max 500)"
// @Success 200 {object} dto.TransitionListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or limit"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/transitions [get]
func (h *ScheduleHandler) ListTransitions(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	transitions, err := h.transitions.ListTransitions(r.Context(), loanID, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTransitionListResponse(loanID, transitions))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultTransitionLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxTransitionLimit {
		return 0, apperrors.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxTransitionLimit))
	}
	return limit, nil
}
