package handler

import (
	"log/slog"
	"net/http"

	"loan-servicing/internal/api/handler/dto"
	"loan-servicing/internal/domain/loan"
)

type CalculatorHandler struct {
	service loan.ScheduleService
	logger  *slog.Logger
}

func NewCalculatorHandler(s loan.ScheduleService, l *slog.Logger) *CalculatorHandler {
	if s == nil {
		panic("schedule service cannot be nil")
	}
	return &CalculatorHandler{
		service: s,
		logger:  l.With("component", "CalculatorHandler"),
	}
}

// QuoteInstallment prices a prospective loan.
//
// @Summary Quote a monthly installment
// @Description Returns the amortized and flat monthly installment for a principal, annual rate in percent and term in months, with total repayment and interest on the amortized basis.
// @Tags Calculator
// @Produce json
// @Param principal query string true "Principal amount, greater than zero"
// @Param annualRate query string true "Annual interest rate in percent, zero or more"
// @Param termMonths query int true "Term in months (1-600)"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /calculator/installment [get]
func (h *CalculatorHandler) QuoteInstallment(w http.ResponseWriter, r *http.Request) {
	req, err := dto.ParseInstallmentQuoteRequest(r.URL.Query())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	principal, rate := req.Amounts()
	quote, err := h.service.Quote(principal, rate, req.TermMonths)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Quoted installment", "principal", req.Principal, "annualRate", req.AnnualRate, "termMonths", req.TermMonths)
	respondJSON(w, http.StatusOK, dto.NewQuoteResponse(quote))
}
