package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/domain/schedule"
)

const dateLayout = "2006-01-02"

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
}

type LoanScheduleResponse struct {
	LoanID           string                `json:"loanId"`
	Status           string                `json:"status"`
	PrincipalAmount  string                `json:"principalAmount"`
	InterestRate     string                `json:"interestRate"`
	TermMonths       int                   `json:"termMonths"`
	MonthlyPayment   *string               `json:"monthlyPayment,omitempty"`
	DisbursementDate *string               `json:"disbursementDate,omitempty"`
	Source           string                `json:"source"`
	AsOf             time.Time             `json:"asOf"`
	Summary          ScheduleSummary       `json:"summary"`
	Installments     []InstallmentResponse `json:"installments"`
	Warnings         []WarningResponse     `json:"warnings"`
}

type InstallmentResponse struct {
	PaymentNumber int     `json:"paymentNumber"`
	Amount        string  `json:"amount"`
	DueDate       string  `json:"dueDate"`
	PaidDate      *string `json:"paidDate,omitempty"`
	Status        string  `json:"status"`
}

type WarningResponse struct {
	PaymentNumber int    `json:"paymentNumber"`
	RecordID      string `json:"recordId,omitempty"`
	Reason        string `json:"reason"`
}

type ScheduleSummary struct {
	Total             int                  `json:"total"`
	Paid              int                  `json:"paid"`
	Pending           int                  `json:"pending"`
	Overdue           int                  `json:"overdue"`
	Missed            int                  `json:"missed"`
	AmountPaid        string               `json:"amountPaid"`
	AmountOutstanding string               `json:"amountOutstanding"`
	AmountPastDue     string               `json:"amountPastDue"`
	NextDue           *InstallmentResponse `json:"nextDue,omitempty"`
}

type TransitionResponse struct {
	ID            string    `json:"id"`
	PaymentNumber int       `json:"paymentNumber"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Legal         bool      `json:"legal"`
	Amount        string    `json:"amount"`
	DueDate       string    `json:"dueDate"`
	ObservedAt    time.Time `json:"observedAt"`
}

type TransitionListResponse struct {
	LoanID      string               `json:"loanId"`
	Transitions []TransitionResponse `json:"transitions"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func NewInstallmentResponse(in schedule.Installment) InstallmentResponse {
	return InstallmentResponse{
		PaymentNumber: in.PaymentNumber,
		Amount:        money(in.Amount),
		DueDate:       in.DueDate.Format(dateLayout),
		PaidDate:      optionalDate(in.PaidDate),
		Status:        string(in.Status),
	}
}

func NewLoanScheduleResponse(ls *loan.LoanSchedule) LoanScheduleResponse {
	if ls == nil || ls.Loan == nil {
		return LoanScheduleResponse{}
	}
	ln := ls.Loan
	terms := ln.Terms()

	resp := LoanScheduleResponse{
		LoanID:           ln.ID,
		Status:           string(ln.Status),
		PrincipalAmount:  money(terms.Principal),
		InterestRate:     terms.AnnualInterestRate.String(),
		TermMonths:       terms.TermMonths,
		DisbursementDate: optionalDate(terms.DisbursementDate),
		Source:           ls.Source,
		AsOf:             ls.AsOf,
		Installments:     make([]InstallmentResponse, 0, len(ls.Installments)),
		Warnings:         make([]WarningResponse, 0, len(ls.Warnings)),
	}
	if ln.MonthlyPayment != nil {
		mp := money(*ln.MonthlyPayment)
		resp.MonthlyPayment = &mp
	}

	for _, in := range ls.Installments {
		resp.Installments = append(resp.Installments, NewInstallmentResponse(in))
	}
	for _, w := range ls.Warnings {
		resp.Warnings = append(resp.Warnings, WarningResponse{
			PaymentNumber: w.PaymentNumber,
			RecordID:      w.RecordID,
			Reason:        w.Reason,
		})
	}

	sum := ls.Summary
	resp.Summary = ScheduleSummary{
		Total:             sum.Total,
		Paid:              sum.Paid,
		Pending:           sum.Pending,
		Overdue:           sum.Overdue,
		Missed:            sum.Missed,
		AmountPaid:        money(sum.AmountPaid),
		AmountOutstanding: money(sum.AmountOutstanding),
		AmountPastDue:     money(sum.AmountPastDue),
	}
	if sum.NextDue != nil {
		next := NewInstallmentResponse(*sum.NextDue)
		resp.Summary.NextDue = &next
	}

	return resp
}

func NewTransitionListResponse(loanID string, transitions []loan.StatusTransition) TransitionListResponse {
	resp := TransitionListResponse{
		LoanID:      loanID,
		Transitions: make([]TransitionResponse, 0, len(transitions)),
	}
	for _, tr := range transitions {
		resp.Transitions = append(resp.Transitions, TransitionResponse{
			ID:            tr.ID.String(),
			PaymentNumber: tr.PaymentNumber,
			From:          string(tr.From),
			To:            string(tr.To),
			Legal:         tr.Legal,
			Amount:        money(tr.Amount),
			DueDate:       tr.DueDate.Format(dateLayout),
			ObservedAt:    tr.ObservedAt,
		})
	}
	return resp
}
