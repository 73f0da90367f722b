// Package upstream is a read-only client for the loan API that owns loans and
// their payment records.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/traceid"

	"loan-servicing/internal/config"
	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/domain/schedule"
	"loan-servicing/internal/infrastructure/monitoring"
	"loan-servicing/internal/pkg/apperrors"
)

const traceIDHeader = "TraceId"

type Client struct {
	baseURL  string
	http     *http.Client
	tokens   *TokenSource
	location *time.Location
	logger   *slog.Logger
}

var _ loan.Source = (*Client)(nil)

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid upstream base url %q: %w", cfg.BaseURL, err)
	}

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		tokens:   NewTokenSource(cfg.TokenSecret, cfg.ServiceName, cfg.TokenTTL),
		location: loc,
		logger:   logger.With("component", "loan_api_client"),
	}, nil
}

// Location is the zone the loan API's calendar dates are read in.
func (c *Client) Location() *time.Location {
	return c.location
}

func (c *Client) GetLoan(ctx context.Context, loanID string) (*loan.Loan, error) {
	var body loanResponse
	if err := c.get(ctx, "get_loan", "/loans/"+url.PathEscape(loanID), &body); err != nil {
		return nil, err
	}
	ln := body.toDomain(c.location)
	if ln.ID == "" {
		ln.ID = loanID
	}
	return ln, nil
}

func (c *Client) GetPayments(ctx context.Context, loanID string) ([]schedule.PaymentRecord, error) {
	var body []paymentResponse
	if err := c.get(ctx, "get_payments", "/loans/"+url.PathEscape(loanID)+"/payments", &body); err != nil {
		return nil, err
	}
	records := make([]schedule.PaymentRecord, len(body))
	for i, p := range body {
		records[i] = p.toDomain(c.location)
	}
	return records, nil
}

func (c *Client) ListLoanIDs(ctx context.Context, status loan.Status) ([]string, error) {
	q := url.Values{}
	q.Set("status", string(status))

	var body []loanResponse
	if err := c.get(ctx, "list_loans", "/loans?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(body))
	for _, l := range body {
		if l.ID != "" {
			ids = append(ids, string(l.ID))
		}
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := traceid.FromContext(ctx); id != "" {
		req.Header.Set(traceIDHeader, id)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.RecordUpstreamRequest(endpoint, "error", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		c.logger.ErrorContext(ctx, "Loan API request failed", "endpoint", endpoint, "error", err)
		return apperrors.WrapUpstreamError(err, 0, "loan api unreachable")
	}
	defer resp.Body.Close()
	monitoring.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.ErrorContext(ctx, "Loan API returned an error", "endpoint", endpoint, "status", resp.StatusCode, "body", string(snippet))
		return apperrors.WrapUpstreamError(
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			resp.StatusCode,
			endpoint+" failed",
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.ErrorContext(ctx, "Malformed loan API response", "endpoint", endpoint, "error", err)
		return apperrors.WrapUpstreamError(err, resp.StatusCode, "malformed "+endpoint+" response")
	}
	return nil
}
