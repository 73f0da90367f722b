package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/api/handler/dto"
	"loan-servicing/internal/domain/loan"
)

func TestCalculatorHandlerQuoteInstallment(t *testing.T) {
	t.Run("quotes a valid request", func(t *testing.T) {
		svc := new(MockScheduleService)
		h := NewCalculatorHandler(svc, testLogger())
		svc.On("Quote", "120000", "12", 12).Return(&loan.Quote{
			Principal:            decimal.NewFromInt(120000),
			AnnualInterestRate:   decimal.NewFromInt(12),
			TermMonths:           12,
			AmortizedInstallment: decimal.RequireFromString("10661.85"),
			FlatInstallment:      decimal.RequireFromString("10000.00"),
			TotalRepayment:       decimal.RequireFromString("127942.20"),
			TotalInterest:        decimal.RequireFromString("7942.20"),
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.QuoteInstallment(rec, httptest.NewRequest(http.MethodGet, "/calculator/installment?principal=120000&annualRate=12&termMonths=12", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.QuoteResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "120000.00", resp.Principal)
		assert.Equal(t, "10661.85", resp.AmortizedInstallment)
		assert.Equal(t, "10000.00", resp.FlatInstallment)
		assert.Equal(t, "127942.20", resp.TotalRepayment)
		assert.Equal(t, "7942.20", resp.TotalInterest)
		svc.AssertExpectations(t)
	})

	t.Run("zero rate is allowed", func(t *testing.T) {
		svc := new(MockScheduleService)
		h := NewCalculatorHandler(svc, testLogger())
		svc.On("Quote", "1200", "0", 12).Return(&loan.Quote{
			Principal:            decimal.NewFromInt(1200),
			AnnualInterestRate:   decimal.Zero,
			TermMonths:           12,
			AmortizedInstallment: decimal.NewFromInt(100),
			FlatInstallment:      decimal.NewFromInt(100),
			TotalRepayment:       decimal.NewFromInt(1200),
			TotalInterest:        decimal.Zero,
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.QuoteInstallment(rec, httptest.NewRequest(http.MethodGet, "/calculator/installment?principal=1200&annualRate=0&termMonths=12", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name      string
		query     string
		wantField string
	}{
		{"missing principal", "annualRate=12&termMonths=12", "principal"},
		{"zero principal", "principal=0&annualRate=12&termMonths=12", "principal"},
		{"non numeric principal", "principal=abc&annualRate=12&termMonths=12", "principal"},
		{"negative rate", "principal=1000&annualRate=-1&termMonths=12", "annualRate"},
		{"missing term", "principal=1000&annualRate=12", "termMonths"},
		{"zero term", "principal=1000&annualRate=12&termMonths=0", "termMonths"},
		{"term too long", "principal=1000&annualRate=12&termMonths=601", "termMonths"},
		{"fractional term", "principal=1000&annualRate=12&termMonths=1.5", "termMonths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockScheduleService)
			h := NewCalculatorHandler(svc, testLogger())

			rec := httptest.NewRecorder()
			h.QuoteInstallment(rec, httptest.NewRequest(http.MethodGet, "/calculator/installment?"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantField, resp.Error.Field)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
