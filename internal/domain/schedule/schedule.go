// Package schedule derives a loan's installment schedule and classifies every
// installment as paid, pending, overdue or missed relative to an as-of date.
//
// Everything in this package is a pure function of its inputs. Callers supply
// the as-of time explicitly; nothing here reads the wall clock.
package schedule

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MissedAfterDays is the number of whole days past due after which an unpaid
// installment stops being overdue and becomes missed.
const MissedAfterDays = 30

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusMissed  Status = "missed"
)

var allStatuses = []Status{StatusPaid, StatusPending, StatusOverdue, StatusMissed}

func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no time-driven transition leaves s. A missed
// installment can still be paid late.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusMissed
}

// LoanTerms is the part of a loan the engine needs to synthesize a schedule.
type LoanTerms struct {
	Principal          decimal.Decimal
	AnnualInterestRate decimal.Decimal
	TermMonths         int
	DisbursementDate   *time.Time
	MonthlyPayment     *decimal.Decimal
}

// PaymentRecord is a payment row as reported by the loan API, or one
// synthesized by GenerateSchedule. Status carries the raw backend value
// (paid, pending, overdue, missed, awaiting_verification, rejected).
type PaymentRecord struct {
	ID            string
	PaymentNumber int
	Amount        decimal.Decimal
	DueDate       *time.Time
	PaidDate      *time.Time
	Status        string
}

func (r PaymentRecord) isPaid() bool {
	return r.PaidDate != nil || strings.EqualFold(strings.TrimSpace(r.Status), string(StatusPaid))
}

type Installment struct {
	PaymentNumber int
	Amount        decimal.Decimal
	DueDate       time.Time
	PaidDate      *time.Time
	Status        Status
}

// Warning reports a payment record that was left out of a schedule.
type Warning struct {
	PaymentNumber int
	RecordID      string
	Reason        string
}

type Result struct {
	Installments []Installment
	Warnings     []Warning
}

// midnight drops the time of day, keeping the calendar date in t's own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDay numbers calendar dates so that subtracting two of them yields whole
// days regardless of location or DST.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
