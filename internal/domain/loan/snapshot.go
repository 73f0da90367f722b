package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/schedule"
)

type InstallmentSnapshot struct {
	LoanID        string
	PaymentNumber int
	Status        schedule.Status
	Amount        decimal.Decimal
	DueDate       time.Time
	ObservedAt    time.Time
}

// StatusTransition is a change in an installment's derived status between two
// observations. Legal is false when the change breaks the installment
// lifecycle, which means the loan API rewrote history.
type StatusTransition struct {
	ID            uuid.UUID
	LoanID        string
	PaymentNumber int
	From          schedule.Status
	To            schedule.Status
	Legal         bool
	Amount        decimal.Decimal
	DueDate       time.Time
	ObservedAt    time.Time
}

// SnapshotOf captures a derived schedule for storage.
func SnapshotOf(ls *LoanSchedule) []InstallmentSnapshot {
	entries := make([]InstallmentSnapshot, len(ls.Installments))
	for i, inst := range ls.Installments {
		entries[i] = InstallmentSnapshot{
			LoanID:        ls.Loan.ID,
			PaymentNumber: inst.PaymentNumber,
			Status:        inst.Status,
			Amount:        inst.Amount,
			DueDate:       inst.DueDate,
			ObservedAt:    ls.AsOf,
		}
	}
	return entries
}

// DiffSnapshots lists the transitions from previous to current. Installments
// seen for the first time produce no transition.
func DiffSnapshots(previous, current []InstallmentSnapshot) []StatusTransition {
	before := make(map[int]schedule.Status, len(previous))
	for _, p := range previous {
		before[p.PaymentNumber] = p.Status
	}

	var transitions []StatusTransition
	for _, c := range current {
		from, seen := before[c.PaymentNumber]
		if !seen || from == c.Status {
			continue
		}
		transitions = append(transitions, StatusTransition{
			ID:            uuid.New(),
			LoanID:        c.LoanID,
			PaymentNumber: c.PaymentNumber,
			From:          from,
			To:            c.Status,
			Legal:         schedule.Transition(from, c.Status) == nil,
			Amount:        c.Amount,
			DueDate:       c.DueDate,
			ObservedAt:    c.ObservedAt,
		})
	}
	return transitions
}
