package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusSchedulable(t *testing.T) {
	assert.True(t, StatusActive.Schedulable())
	assert.True(t, StatusApproved.Schedulable())
	for _, s := range []Status{StatusPending, StatusCompleted, StatusRejected, StatusDefaulted, Status("")} {
		assert.False(t, s.Schedulable(), s)
	}
}

func TestLoanTerms(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	disbursed := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	approved := decimal.NewFromInt(8000)

	t.Run("approved amount and disbursement date win", func(t *testing.T) {
		ln := &Loan{
			PrincipalAmount:  decimal.NewFromInt(10000),
			ApprovedAmount:   &approved,
			TermMonths:       6,
			StartDate:        &start,
			DisbursementDate: &disbursed,
		}
		terms := ln.Terms()
		assert.True(t, approved.Equal(terms.Principal))
		assert.Equal(t, &disbursed, terms.DisbursementDate)
		assert.Equal(t, 6, terms.TermMonths)
	})

	t.Run("falls back to principal and start date", func(t *testing.T) {
		zero := decimal.Zero
		ln := &Loan{
			PrincipalAmount: decimal.NewFromInt(10000),
			ApprovedAmount:  &zero,
			TermMonths:      6,
			StartDate:       &start,
		}
		terms := ln.Terms()
		assert.Equal(t, "10000", terms.Principal.String())
		assert.Equal(t, &start, terms.DisbursementDate)
	})

	t.Run("no dates", func(t *testing.T) {
		ln := &Loan{PrincipalAmount: decimal.NewFromInt(1), TermMonths: 1}
		assert.Nil(t, ln.Terms().DisbursementDate)
	})
}
