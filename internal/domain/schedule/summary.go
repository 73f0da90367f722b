package schedule

import "github.com/shopspring/decimal"

type Summary struct {
	Total             int
	Paid              int
	Pending           int
	Overdue           int
	Missed            int
	AmountPaid        decimal.Decimal
	AmountOutstanding decimal.Decimal
	AmountPastDue     decimal.Decimal
	NextDue           *Installment
}

// Summarize totals installments by status. NextDue is the earliest unpaid
// installment, or nil when everything is paid.
func Summarize(installments []Installment) Summary {
	s := Summary{
		Total:             len(installments),
		AmountPaid:        decimal.Zero,
		AmountOutstanding: decimal.Zero,
		AmountPastDue:     decimal.Zero,
	}

	for i := range installments {
		inst := installments[i]
		switch inst.Status {
		case StatusPaid:
			s.Paid++
			s.AmountPaid = s.AmountPaid.Add(inst.Amount)
			continue
		case StatusPending:
			s.Pending++
		case StatusOverdue:
			s.Overdue++
			s.AmountPastDue = s.AmountPastDue.Add(inst.Amount)
		case StatusMissed:
			s.Missed++
			s.AmountPastDue = s.AmountPastDue.Add(inst.Amount)
		}
		s.AmountOutstanding = s.AmountOutstanding.Add(inst.Amount)
		if s.NextDue == nil {
			s.NextDue = &installments[i]
		}
	}

	return s
}
