package schedule

import "time"

// GenerateSchedule synthesizes one installment per month of the term and
// classifies them as of asOf. It is the fallback for loans the loan API has
// no payment records for.
//
// Installment i falls due i months after the disbursement date, or after asOf
// when the loan has none. The amount is the loan's own monthly payment when it
// carries one, otherwise the flat share of the principal.
func GenerateSchedule(terms LoanTerms, asOf time.Time) (Result, error) {
	if terms.TermMonths <= 0 {
		return Result{}, &InvalidLoanTermsError{Field: "termMonths", Reason: "must be positive"}
	}
	if !terms.Principal.IsPositive() {
		return Result{}, &InvalidLoanTermsError{Field: "principal", Reason: "must be positive"}
	}

	amount, err := ComputeFlatInstallment(terms.Principal, terms.TermMonths)
	if err != nil {
		return Result{}, err
	}
	if terms.MonthlyPayment != nil && terms.MonthlyPayment.IsPositive() {
		amount = *terms.MonthlyPayment
	}

	anchor := asOf
	if terms.DisbursementDate != nil && !terms.DisbursementDate.IsZero() {
		anchor = *terms.DisbursementDate
	}
	anchor = midnight(anchor)

	records := make([]PaymentRecord, terms.TermMonths)
	for i := range records {
		due := anchor.AddDate(0, i+1, 0)
		records[i] = PaymentRecord{
			PaymentNumber: i + 1,
			Amount:        amount,
			DueDate:       &due,
			Status:        string(StatusPending),
		}
	}

	return ReconcileStatuses(records, asOf), nil
}
