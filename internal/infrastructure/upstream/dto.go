package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/domain/schedule"
)

// loanResponse mirrors GET /loans/{id}.
type loanResponse struct {
	ID               flexibleID       `json:"id"`
	PrincipalAmount  decimal.Decimal  `json:"principal_amount"`
	ApprovedAmount   *decimal.Decimal `json:"approved_amount"`
	InterestRate     decimal.Decimal  `json:"interest_rate"`
	TermMonths       int              `json:"term_months"`
	DisbursementDate string           `json:"disbursement_date"`
	StartDate        string           `json:"start_date"`
	MonthlyPayment   *decimal.Decimal `json:"monthly_payment"`
	Status           string           `json:"status"`
}

// paymentResponse mirrors one element of GET /loans/{id}/payments.
type paymentResponse struct {
	ID            flexibleID      `json:"id"`
	PaymentNumber int             `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date"`
	PaidDate      string          `json:"paid_date"`
	Status        string          `json:"status"`
}

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate reads a date in any of the layouts the loan API has been seen to
// emit. Empty or unparseable values yield nil.
func parseDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			t = t.In(loc)
			return &t
		}
	}
	return nil
}

func (r loanResponse) toDomain(loc *time.Location) *loan.Loan {
	return &loan.Loan{
		ID:               string(r.ID),
		PrincipalAmount:  r.PrincipalAmount,
		ApprovedAmount:   r.ApprovedAmount,
		InterestRate:     r.InterestRate,
		TermMonths:       r.TermMonths,
		DisbursementDate: parseDate(r.DisbursementDate, loc),
		StartDate:        parseDate(r.StartDate, loc),
		MonthlyPayment:   r.MonthlyPayment,
		Status:           loan.Status(strings.ToLower(strings.TrimSpace(r.Status))),
	}
}

func (r paymentResponse) toDomain(loc *time.Location) schedule.PaymentRecord {
	return schedule.PaymentRecord{
		ID:            string(r.ID),
		PaymentNumber: r.PaymentNumber,
		Amount:        r.Amount,
		DueDate:       parseDate(r.DueDate, loc),
		PaidDate:      parseDate(r.PaidDate, loc),
		Status:        r.Status,
	}
}
