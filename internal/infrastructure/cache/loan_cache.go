// Package cache keeps loan terms in Redis so schedule requests do not refetch
// a loan that rarely changes. Payment records are deliberately absent: they
// are always read fresh.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/pkg/apperrors"
)

const keyPrefix = "loan-servicing:loan:"

// redisClient is the slice of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type LoanCache struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ loan.Cache = (*LoanCache)(nil)

func NewLoanCache(client redisClient, ttl time.Duration, logger *slog.Logger) *LoanCache {
	return &LoanCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "loan_cache"),
	}
}

type cachedLoan struct {
	ID               string           `json:"id"`
	PrincipalAmount  decimal.Decimal  `json:"principalAmount"`
	ApprovedAmount   *decimal.Decimal `json:"approvedAmount,omitempty"`
	InterestRate     decimal.Decimal  `json:"interestRate"`
	TermMonths       int              `json:"termMonths"`
	DisbursementDate *time.Time       `json:"disbursementDate,omitempty"`
	StartDate        *time.Time       `json:"startDate,omitempty"`
	MonthlyPayment   *decimal.Decimal `json:"monthlyPayment,omitempty"`
	Status           loan.Status      `json:"status"`
}

func key(loanID string) string {
	return keyPrefix + loanID
}

func (c *LoanCache) Get(ctx context.Context, loanID string) (*loan.Loan, bool, error) {
	raw, err := c.client.Get(ctx, key(loanID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get loan %s: %v", apperrors.ErrCache, loanID, err)
	}

	var cl cachedLoan
	if err := json.Unmarshal(raw, &cl); err != nil {
		c.logger.WarnContext(ctx, "Dropping unreadable cache entry", "loanID", loanID, "error", err)
		_ = c.client.Del(ctx, key(loanID)).Err()
		return nil, false, nil
	}

	return &loan.Loan{
		ID:               cl.ID,
		PrincipalAmount:  cl.PrincipalAmount,
		ApprovedAmount:   cl.ApprovedAmount,
		InterestRate:     cl.InterestRate,
		TermMonths:       cl.TermMonths,
		DisbursementDate: cl.DisbursementDate,
		StartDate:        cl.StartDate,
		MonthlyPayment:   cl.MonthlyPayment,
		Status:           cl.Status,
	}, true, nil
}

func (c *LoanCache) Set(ctx context.Context, l *loan.Loan) error {
	raw, err := json.Marshal(cachedLoan{
		ID:               l.ID,
		PrincipalAmount:  l.PrincipalAmount,
		ApprovedAmount:   l.ApprovedAmount,
		InterestRate:     l.InterestRate,
		TermMonths:       l.TermMonths,
		DisbursementDate: l.DisbursementDate,
		StartDate:        l.StartDate,
		MonthlyPayment:   l.MonthlyPayment,
		Status:           l.Status,
	})
	if err != nil {
		return fmt.Errorf("%w: encode loan %s: %v", apperrors.ErrCache, l.ID, err)
	}

	if err := c.client.Set(ctx, key(l.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set loan %s: %v", apperrors.ErrCache, l.ID, err)
	}
	return nil
}

// Invalidate drops a loan so the next read goes to the loan API.
func (c *LoanCache) Invalidate(ctx context.Context, loanID string) error {
	if err := c.client.Del(ctx, key(loanID)).Err(); err != nil {
		return fmt.Errorf("%w: delete loan %s: %v", apperrors.ErrCache, loanID, err)
	}
	return nil
}
