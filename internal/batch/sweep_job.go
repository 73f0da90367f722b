package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/event"
	"loan-servicing/internal/infrastructure/monitoring"
	"loan-servicing/internal/pkg/apperrors"
)

// StatusSweepJob re-derives the schedule of every active or approved loan, compares it with
// the snapshot taken on the previous run and publishes the status changes.
type StatusSweepJob struct {
	scheduleService loan.ScheduleService
	snapshots       loan.SnapshotRepository
	publisher       event.EventPublisher
	workers         int
	logger          *slog.Logger
}

type sweepCounters struct {
	processed   atomic.Int32
	skipped     atomic.Int32
	transitions atomic.Int32
	illegal     atomic.Int32
	errors      atomic.Int32
}

func NewStatusSweepJob(
	scheduleSvc loan.ScheduleService,
	snapshots loan.SnapshotRepository,
	publisher event.EventPublisher,
	workers int,
	logger *slog.Logger,
) *StatusSweepJob {
	if scheduleSvc == nil || snapshots == nil || publisher == nil || logger == nil {
		panic("StatusSweepJob dependencies cannot be nil")
	}
	if workers <= 0 {
		workers = 1
	}
	return &StatusSweepJob{
		scheduleService: scheduleSvc,
		snapshots:       snapshots,
		publisher:       publisher,
		workers:         workers,
		logger:          logger.With("job", "StatusSweep"),
	}
}

func (j *StatusSweepJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting installment status sweep.")

	loanIDs, err := j.scheduleService.ListSchedulableLoanIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list schedulable loans, aborting sweep.", slog.Any("error", err))
		monitoring.RecordSweepRun("failure", time.Since(startTime))
		return fmt.Errorf("cannot run sweep, failed to list schedulable loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched schedulable loan IDs.", slog.Int("count", len(loanIDs)))

	var counters sweepCounters
	jobs := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < j.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for loanID := range jobs {
				j.sweepLoan(ctx, loanID, &counters)
			}
		}()
	}

dispatch:
	for _, loanID := range loanIDs {
		select {
		case jobs <- loanID:
		case <-ctx.Done():
			j.logger.WarnContext(ctx, "Sweep interrupted before all loans were dispatched.", slog.Any("error", ctx.Err()))
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	duration := time.Since(startTime)
	errorCount := counters.errors.Load()
	summaryLog := j.logger.With(
		slog.Duration("duration", duration),
		slog.Int("total_loans", len(loanIDs)),
		slog.Int("loans_processed", int(counters.processed.Load())),
		slog.Int("loans_skipped", int(counters.skipped.Load())),
		slog.Int("transitions", int(counters.transitions.Load())),
		slog.Int("illegal_transitions", int(counters.illegal.Load())),
		slog.Int("errors_encountered", int(errorCount)),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		summaryLog.WarnContext(ctx, "Installment status sweep aborted.")
		monitoring.RecordSweepRun("aborted", duration)
		return fmt.Errorf("sweep aborted: %w", ctxErr)
	}
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Installment status sweep finished with errors.")
		monitoring.RecordSweepRun("partial", duration)
		return fmt.Errorf("sweep completed with %d errors", errorCount)
	}

	summaryLog.InfoContext(ctx, "Installment status sweep finished successfully.")
	monitoring.RecordSweepRun("success", duration)
	return nil
}

func (j *StatusSweepJob) sweepLoan(ctx context.Context, loanID string, counters *sweepCounters) {
	logCtx := j.logger.With(slog.String("loanID", loanID))

	ls, err := j.scheduleService.RefreshSchedule(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrNotSchedulable) {
			logCtx.WarnContext(ctx, "Loan left the schedulable set since listing, skipping.", slog.Any("error", err))
			counters.skipped.Add(1)
			return
		}
		logCtx.ErrorContext(ctx, "Failed to derive schedule", slog.Any("error", err))
		counters.errors.Add(1)
		return
	}

	previous, err := j.snapshots.LoadSnapshot(ctx, loanID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to load previous snapshot", slog.Any("error", err))
		counters.errors.Add(1)
		return
	}

	current := loan.SnapshotOf(ls)
	transitions := loan.DiffSnapshots(previous, current)
	for _, t := range transitions {
		if !t.Legal {
			logCtx.WarnContext(ctx, "Illegal installment status transition observed",
				slog.Int("paymentNumber", t.PaymentNumber),
				slog.String("from", string(t.From)),
				slog.String("to", string(t.To)))
			counters.illegal.Add(1)
		}
		monitoring.RecordTransition(string(t.To), t.Legal)
	}

	// Events go out before the snapshot is committed. If any publish fails the
	// snapshot is left as it was, so the next run detects the same transitions
	// again and redelivers them.
	for _, t := range transitions {
		if err := j.publisher.PublishInstallmentStatusChanged(ctx, event.NewInstallmentStatusChangedEvent(t)); err != nil {
			logCtx.ErrorContext(ctx, "Failed to publish status change, snapshot not advanced",
				slog.Int("paymentNumber", t.PaymentNumber), slog.Any("error", err))
			counters.errors.Add(1)
			return
		}
	}

	if err := j.snapshots.SaveSnapshot(ctx, loanID, current, transitions); err != nil {
		logCtx.ErrorContext(ctx, "Failed to save snapshot", slog.Any("error", err))
		counters.errors.Add(1)
		return
	}

	counters.transitions.Add(int32(len(transitions)))
	counters.processed.Add(1)
	logCtx.DebugContext(ctx, "Loan swept.", slog.Int("installments", len(current)), slog.Int("transitions", len(transitions)))
}
