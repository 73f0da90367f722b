package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/domain/schedule"
	"loan-servicing/internal/infrastructure/monitoring"
	"loan-servicing/internal/pkg/apperrors"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

type SnapshotRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.SnapshotRepository = (*SnapshotRepository)(nil)

const (
	selectSnapshotSQL = `
	SELECT loan_id, payment_number, status, amount, due_date, observed_at
	FROM installment_status_snapshots
	WHERE loan_id = $1
	ORDER BY payment_number`

	deleteSnapshotSQL = `
	DELETE FROM installment_status_snapshots
	WHERE loan_id = $1`

	insertSnapshotSQL = `
	INSERT INTO installment_status_snapshots (loan_id, payment_number, status, amount, due_date, observed_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	insertTransitionSQL = `
	INSERT INTO installment_status_transitions (id, loan_id, payment_number, from_status, to_status, legal, amount, due_date, observed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectTransitionsSQL = `
	SELECT id, loan_id, payment_number, from_status, to_status, legal, amount, due_date, observed_at
	FROM installment_status_transitions
	WHERE loan_id = $1
	ORDER BY observed_at DESC, payment_number
	LIMIT $2`
)

func NewSnapshotRepository(db DBPool, logger *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger.With("component", "SnapshotRepository")}
}

func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, loanID string) ([]loan.InstallmentSnapshot, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, selectSnapshotSQL, loanID)
	if err != nil {
		monitoring.RecordDBQuery("load_snapshot", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to query snapshot", "loanID", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to load snapshot")
	}
	defer rows.Close()

	var entries []loan.InstallmentSnapshot
	for rows.Next() {
		var e loan.InstallmentSnapshot
		var status string
		if err := rows.Scan(&e.LoanID, &e.PaymentNumber, &status, &e.Amount, &e.DueDate, &e.ObservedAt); err != nil {
			monitoring.RecordDBQuery("load_snapshot", "error", time.Since(start))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan snapshot row")
		}
		e.Status = schedule.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		monitoring.RecordDBQuery("load_snapshot", "error", time.Since(start))
		return nil, apperrors.WrapDatabaseError(err, "failed iterating snapshot rows")
	}

	monitoring.RecordDBQuery("load_snapshot", "success", time.Since(start))
	return entries, nil
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, loanID string, entries []loan.InstallmentSnapshot, transitions []loan.StatusTransition) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		monitoring.RecordDBQuery("save_snapshot", status, time.Since(start))
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return apperrors.WrapDatabaseError(err, "could not begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, deleteSnapshotSQL, loanID); err != nil {
		r.logger.ErrorContext(ctx, "Failed to clear snapshot", "loanID", loanID, "error", err)
		return apperrors.WrapDatabaseError(err, "failed to clear snapshot")
	}

	for _, e := range entries {
		if _, err = tx.Exec(ctx, insertSnapshotSQL, loanID, e.PaymentNumber, string(e.Status), e.Amount, e.DueDate, e.ObservedAt); err != nil {
			r.logger.ErrorContext(ctx, "Failed to insert snapshot entry", "loanID", loanID, "paymentNumber", e.PaymentNumber, "error", err)
			return apperrors.WrapDatabaseError(err, fmt.Sprintf("failed to insert snapshot entry %d", e.PaymentNumber))
		}
	}

	for _, t := range transitions {
		if _, err = tx.Exec(ctx, insertTransitionSQL,
			t.ID, loanID, t.PaymentNumber, string(t.From), string(t.To), t.Legal, t.Amount, t.DueDate, t.ObservedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to record transition", "loanID", loanID, "paymentNumber", t.PaymentNumber, "error", err)
			return apperrors.WrapDatabaseError(err, "failed to record transition")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "loanID", loanID, "error", err)
		return apperrors.WrapDatabaseError(err, "could not commit snapshot")
	}

	r.logger.DebugContext(ctx, "Snapshot saved", "loanID", loanID, "entries", len(entries), "transitions", len(transitions))
	return nil
}

func (r *SnapshotRepository) ListTransitions(ctx context.Context, loanID string, limit int) ([]loan.StatusTransition, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, selectTransitionsSQL, loanID, limit)
	if err != nil {
		monitoring.RecordDBQuery("list_transitions", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to query transitions", "loanID", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to list transitions")
	}
	defer rows.Close()

	transitions := []loan.StatusTransition{}
	for rows.Next() {
		var t loan.StatusTransition
		var from, to string
		if err := rows.Scan(&t.ID, &t.LoanID, &t.PaymentNumber, &from, &to, &t.Legal, &t.Amount, &t.DueDate, &t.ObservedAt); err != nil {
			monitoring.RecordDBQuery("list_transitions", "error", time.Since(start))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan transition row")
		}
		t.From = schedule.Status(from)
		t.To = schedule.Status(to)
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		monitoring.RecordDBQuery("list_transitions", "error", time.Since(start))
		return nil, apperrors.WrapDatabaseError(err, "failed iterating transition rows")
	}

	monitoring.RecordDBQuery("list_transitions", "success", time.Since(start))
	return transitions, nil
}
