package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusDefaulted Status = "defaulted"
)

// Schedulable reports whether loans in this state take part in payment scheduling.
func (s Status) Schedulable() bool {
	return s == StatusActive || s == StatusApproved
}

// Loan is the subset of the loan API's loan record this service reads.
type Loan struct {
	ID               string
	PrincipalAmount  decimal.Decimal
	ApprovedAmount   *decimal.Decimal
	InterestRate     decimal.Decimal
	TermMonths       int
	DisbursementDate *time.Time
	StartDate        *time.Time
	MonthlyPayment   *decimal.Decimal
	Status           Status
}

// Terms returns the loan as engine input. The approved amount wins over the
// requested principal and the disbursement date wins over the start date.
func (l *Loan) Terms() schedule.LoanTerms {
	principal := l.PrincipalAmount
	if l.ApprovedAmount != nil && l.ApprovedAmount.IsPositive() {
		principal = *l.ApprovedAmount
	}

	anchor := l.DisbursementDate
	if anchor == nil {
		anchor = l.StartDate
	}

	return schedule.LoanTerms{
		Principal:          principal,
		AnnualInterestRate: l.InterestRate,
		TermMonths:         l.TermMonths,
		DisbursementDate:   anchor,
		MonthlyPayment:     l.MonthlyPayment,
	}
}
