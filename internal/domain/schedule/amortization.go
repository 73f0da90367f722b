package schedule

import (
	"github.com/shopspring/decimal"

	"loan-servicing/internal/pkg/apperrors"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ComputeAmortizedInstallment returns the fixed monthly payment that repays
// principal with interest at annualRatePercent (nominal, e.g. 12 for 12%) over
// termMonths, rounded to cents.
func ComputeAmortizedInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, &InvalidTermError{TermMonths: termMonths}
	}
	if principal.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError("principal", "must not be negative")
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError("annualInterestRate", "must not be negative")
	}

	n := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRatePercent.Div(hundred).Div(twelve)
	if monthlyRate.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	growth := one.Add(monthlyRate).Pow(n)
	payment := principal.Mul(monthlyRate.Mul(growth)).Div(growth.Sub(one))
	return payment.Round(2), nil
}

// ComputeFlatInstallment splits principal evenly over termMonths without
// interest, rounded to cents.
func ComputeFlatInstallment(principal decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, &InvalidTermError{TermMonths: termMonths}
	}
	if principal.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError("principal", "must not be negative")
	}
	return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2), nil
}
