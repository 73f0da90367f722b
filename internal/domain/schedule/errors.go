package schedule

import (
	"errors"
	"fmt"

	"loan-servicing/internal/pkg/apperrors"
)

var ErrIllegalTransition = errors.New("illegal installment status transition")

// InvalidLoanTermsError rejects a loan whose terms cannot produce a schedule.
type InvalidLoanTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidLoanTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

func (e *InvalidLoanTermsError) Unwrap() error {
	return apperrors.ErrValidation
}

// InvalidTermError rejects an installment calculation over a non-positive number of months.
type InvalidTermError struct {
	TermMonths int
}

func (e *InvalidTermError) Error() string {
	return fmt.Sprintf("invalid term: %d months", e.TermMonths)
}

func (e *InvalidTermError) Unwrap() error {
	return apperrors.ErrValidation
}
