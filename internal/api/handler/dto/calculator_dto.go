package dto

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/pkg/apperrors"
)

// InstallmentQuoteRequest carries the calculator query parameters. Amounts
// stay strings until validated so they can be parsed as exact decimals.
type InstallmentQuoteRequest struct {
	Principal  string `query:"principal" validate:"required,decimal_gt=0"`
	AnnualRate string `query:"annualRate" validate:"required,decimal_gte=0"`
	TermMonths int    `query:"termMonths" validate:"min=1,max=600"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("decimal_gt", decimalCompare(func(c int) bool { return c > 0 }))
	_ = v.RegisterValidation("decimal_gte", decimalCompare(func(c int) bool { return c >= 0 }))
	return v
}

// decimalCompare builds a validator for decimal strings compared against the tag parameter.
func decimalCompare(ok func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(value.Cmp(bound))
	}
}

// ParseInstallmentQuoteRequest reads and validates the calculator query.
func ParseInstallmentQuoteRequest(q url.Values) (*InstallmentQuoteRequest, error) {
	req := &InstallmentQuoteRequest{
		Principal:  strings.TrimSpace(q.Get("principal")),
		AnnualRate: strings.TrimSpace(q.Get("annualRate")),
	}

	if raw := strings.TrimSpace(q.Get("termMonths")); raw != "" {
		term, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("termMonths", "must be a whole number of months")
		}
		req.TermMonths = term
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *InstallmentQuoteRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	fe := fieldErrs[0]
	return apperrors.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "decimal_gt":
		return "must be a number greater than " + fe.Param()
	case "decimal_gte":
		return "must be a number not less than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// Amounts returns the validated amounts as decimals.
func (r *InstallmentQuoteRequest) Amounts() (principal, annualRate decimal.Decimal) {
	return decimal.RequireFromString(r.Principal), decimal.RequireFromString(r.AnnualRate)
}

type QuoteResponse struct {
	Principal            string `json:"principal"`
	AnnualInterestRate   string `json:"annualInterestRate"`
	TermMonths           int    `json:"termMonths"`
	AmortizedInstallment string `json:"amortizedInstallment"`
	FlatInstallment      string `json:"flatInstallment"`
	TotalRepayment       string `json:"totalRepayment"`
	TotalInterest        string `json:"totalInterest"`
}

func NewQuoteResponse(q *loan.Quote) QuoteResponse {
	if q == nil {
		return QuoteResponse{}
	}
	return QuoteResponse{
		Principal:            money(q.Principal),
		AnnualInterestRate:   q.AnnualInterestRate.String(),
		TermMonths:           q.TermMonths,
		AmortizedInstallment: money(q.AmortizedInstallment),
		FlatInstallment:      money(q.FlatInstallment),
		TotalRepayment:       money(q.TotalRepayment),
		TotalInterest:        money(q.TotalInterest),
	}
}
