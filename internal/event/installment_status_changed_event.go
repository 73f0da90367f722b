package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/loan"
)

const routingKeyInstallmentStatusPrefix = "installment.status."

// InstallmentStatusChangedEvent announces that an installment's derived status
// moved between two sweeps. Consumers can bind to installment.status.missed to
// act on missed payments only.
type InstallmentStatusChangedEvent struct {
	EventID       uuid.UUID       `json:"eventId"`
	LoanID        string          `json:"loanId"`
	PaymentNumber int             `json:"paymentNumber"`
	OldStatus     string          `json:"oldStatus"`
	NewStatus     string          `json:"newStatus"`
	Legal         bool            `json:"legal"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"dueDate"`
	ObservedAt    time.Time       `json:"observedAt"`
}

func NewInstallmentStatusChangedEvent(t loan.StatusTransition) InstallmentStatusChangedEvent {
	return InstallmentStatusChangedEvent{
		EventID:       t.ID,
		LoanID:        t.LoanID,
		PaymentNumber: t.PaymentNumber,
		OldStatus:     string(t.From),
		NewStatus:     string(t.To),
		Legal:         t.Legal,
		Amount:        t.Amount,
		DueDate:       t.DueDate.Format(time.DateOnly),
		ObservedAt:    t.ObservedAt,
	}
}

func (e InstallmentStatusChangedEvent) RoutingKey() string {
	return routingKeyInstallmentStatusPrefix + e.NewStatus
}
