package schedule

import (
	"sort"
	"time"
)

const reasonMissingDueDate = "due date missing or malformed"

// ReconcileStatuses classifies payment records as of asOf. Records without a
// usable due date are left out and reported in Result.Warnings. The input
// slice is not modified.
func ReconcileStatuses(records []PaymentRecord, asOf time.Time) Result {
	usable := make([]PaymentRecord, 0, len(records))
	var warnings []Warning
	for _, r := range records {
		if r.DueDate == nil || r.DueDate.IsZero() {
			warnings = append(warnings, Warning{
				PaymentNumber: r.PaymentNumber,
				RecordID:      r.ID,
				Reason:        reasonMissingDueDate,
			})
			continue
		}
		usable = append(usable, r)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].PaymentNumber < usable[j].PaymentNumber
	})

	lastPaidIndex := -1
	for i, r := range usable {
		if r.isPaid() {
			lastPaidIndex = i
		}
	}

	today := civilDay(asOf)
	installments := make([]Installment, len(usable))
	for i, r := range usable {
		inst := Installment{
			PaymentNumber: r.PaymentNumber,
			Amount:        r.Amount,
			DueDate:       midnight(*r.DueDate),
		}

		switch {
		case r.isPaid():
			inst.Status = StatusPaid
			inst.PaidDate = r.PaidDate
		case i <= lastPaidIndex:
			// An unpaid record ahead of a later paid one is reported as pending,
			// whatever its due date.
			inst.Status = StatusPending
		default:
			inst.Status = classifyUnpaid(civilDay(*r.DueDate), today)
		}

		installments[i] = inst
	}

	return Result{Installments: installments, Warnings: warnings}
}

func classifyUnpaid(dueDay, today int64) Status {
	if dueDay >= today {
		return StatusPending
	}
	if today-dueDay > MissedAfterDays {
		return StatusMissed
	}
	return StatusOverdue
}
