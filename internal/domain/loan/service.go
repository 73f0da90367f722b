package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/schedule"
	"loan-servicing/internal/infrastructure/monitoring"
	"loan-servicing/internal/pkg/apperrors"
)

const (
	SourceBackend   = "backend"
	SourceGenerated = "generated"
)

type LoanSchedule struct {
	Loan         *Loan
	Installments []schedule.Installment
	Warnings     []schedule.Warning
	Summary      schedule.Summary
	Source       string
	AsOf         time.Time
}

type Quote struct {
	Principal            decimal.Decimal
	AnnualInterestRate   decimal.Decimal
	TermMonths           int
	AmortizedInstallment decimal.Decimal
	FlatInstallment      decimal.Decimal
	TotalRepayment       decimal.Decimal
	TotalInterest        decimal.Decimal
}

type ScheduleService interface {
	GetSchedule(ctx context.Context, loanID string) (*LoanSchedule, error)

	// RefreshSchedule is GetSchedule with the cached loan terms discarded first.
	RefreshSchedule(ctx context.Context, loanID string) (*LoanSchedule, error)

	Quote(principal, annualRatePercent decimal.Decimal, termMonths int) (*Quote, error)

	// ListSchedulableLoanIDs lists active and approved loans, active first.
	ListSchedulableLoanIDs(ctx context.Context) ([]string, error)
}

type scheduleServiceImpl struct {
	source Source
	cache  Cache
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// NewScheduleService builds the service. cache may be nil; now is read once per
// GetSchedule call and defaults to time.Now. loc is the zone the source's
// calendar dates are in; the as-of instant is moved into it so "today" is the
// same calendar day the due dates use. nil means time.Local.
func NewScheduleService(source Source, cache Cache, now func() time.Time, loc *time.Location, logger *slog.Logger) ScheduleService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &scheduleServiceImpl{
		source: source,
		cache:  cache,
		now:    now,
		loc:    loc,
		logger: logger.With("component", "schedule_service"),
	}
}

func (s *scheduleServiceImpl) GetSchedule(ctx context.Context, loanID string) (*LoanSchedule, error) {
	s.logger.InfoContext(ctx, "Deriving payment schedule", "loanID", loanID)

	ln, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !ln.Status.Schedulable() {
		s.logger.WarnContext(ctx, "Loan is not schedulable", "loanID", loanID, "status", ln.Status)
		return nil, fmt.Errorf("%w: loan %s is %s", apperrors.ErrNotSchedulable, loanID, ln.Status)
	}

	records, err := s.source.GetPayments(ctx, loanID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "Payment records unavailable, falling back to generated schedule", "loanID", loanID, "error", err)
		records = nil
	}

	now := s.now().In(s.loc)
	source := SourceBackend
	var result schedule.Result
	if len(records) == 0 {
		result, err = schedule.GenerateSchedule(ln.Terms(), now)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to generate schedule", "loanID", loanID, "error", err)
			return nil, fmt.Errorf("failed to generate schedule for loan %s: %w", loanID, err)
		}
		source = SourceGenerated
	} else {
		result = schedule.ReconcileStatuses(records, now)
	}

	for _, w := range result.Warnings {
		s.logger.WarnContext(ctx, "Payment record excluded from schedule",
			"loanID", loanID, "paymentNumber", w.PaymentNumber, "recordID", w.RecordID, "reason", w.Reason)
	}
	monitoring.RecordIntegrityWarnings(len(result.Warnings))
	for _, inst := range result.Installments {
		monitoring.RecordInstallmentStatus(string(inst.Status))
	}
	monitoring.RecordScheduleServed(source)

	return &LoanSchedule{
		Loan:         ln,
		Installments: result.Installments,
		Warnings:     result.Warnings,
		Summary:      schedule.Summarize(result.Installments),
		Source:       source,
		AsOf:         now,
	}, nil
}

func (s *scheduleServiceImpl) RefreshSchedule(ctx context.Context, loanID string) (*LoanSchedule, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, loanID); err != nil {
			s.logger.WarnContext(ctx, "Loan cache invalidation failed", "loanID", loanID, "error", err)
		}
	}
	return s.GetSchedule(ctx, loanID)
}

func (s *scheduleServiceImpl) loadLoan(ctx context.Context, loanID string) (*Loan, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, loanID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "Loan cache read failed", "loanID", loanID, "error", err)
		case found:
			return cached, nil
		}
	}

	ln, err := s.source.GetLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
		} else {
			s.logger.ErrorContext(ctx, "Failed to fetch loan", "loanID", loanID, "error", err)
		}
		return nil, fmt.Errorf("failed to get loan %s: %w", loanID, err)
	}

	// Only schedulable loans are cached so a loan moving into scheduling is not
	// rejected from a stale entry.
	if s.cache != nil && ln.Status.Schedulable() {
		if err := s.cache.Set(ctx, ln); err != nil {
			s.logger.WarnContext(ctx, "Loan cache write failed", "loanID", loanID, "error", err)
		}
	}
	return ln, nil
}

func (s *scheduleServiceImpl) Quote(principal, annualRatePercent decimal.Decimal, termMonths int) (*Quote, error) {
	amortized, err := schedule.ComputeAmortizedInstallment(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}
	flat, err := schedule.ComputeFlatInstallment(principal, termMonths)
	if err != nil {
		return nil, err
	}

	total := amortized.Mul(decimal.NewFromInt(int64(termMonths)))
	return &Quote{
		Principal:            principal,
		AnnualInterestRate:   annualRatePercent,
		TermMonths:           termMonths,
		AmortizedInstallment: amortized,
		FlatInstallment:      flat,
		TotalRepayment:       total,
		TotalInterest:        total.Sub(principal),
	}, nil
}

func (s *scheduleServiceImpl) ListSchedulableLoanIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, status := range []Status{StatusActive, StatusApproved} {
		batch, err := s.source.ListLoanIDs(ctx, status)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to list loans", "status", status, "error", err)
			return nil, fmt.Errorf("failed to list %s loans: %w", status, err)
		}
		for _, id := range batch {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
