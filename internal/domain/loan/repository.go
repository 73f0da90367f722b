package loan

import (
	"context"

	"loan-servicing/internal/domain/schedule"
)

// Source reads loans and their payment records from the system that owns them.
type Source interface {
	GetLoan(ctx context.Context, loanID string) (*Loan, error)

	GetPayments(ctx context.Context, loanID string) ([]schedule.PaymentRecord, error)

	ListLoanIDs(ctx context.Context, status Status) ([]string, error)
}

// Cache holds loan terms between requests. Payment records are never cached.
type Cache interface {
	Get(ctx context.Context, loanID string) (loan *Loan, found bool, err error)

	Set(ctx context.Context, loan *Loan) error

	Invalidate(ctx context.Context, loanID string) error
}

// SnapshotRepository stores the installment statuses last observed for each
// loan, and the transitions detected between observations.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, loanID string) ([]InstallmentSnapshot, error)

	// SaveSnapshot replaces the loan's snapshot and appends transitions atomically.
	SaveSnapshot(ctx context.Context, loanID string, entries []InstallmentSnapshot, transitions []StatusTransition) error

	ListTransitions(ctx context.Context, loanID string, limit int) ([]StatusTransition, error)
}
