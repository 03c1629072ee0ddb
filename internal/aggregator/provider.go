// Package aggregator is the boundary to the bank-aggregation provider.
// The rest of the service only sees the Provider interface and the plain
// record types below.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"cashdash/internal/models"
)

// Transaction is one record from the provider's transaction feed.
type Transaction struct {
	ExternalID   string
	AccountID    string
	Amount       decimal.Decimal
	Date         models.Date
	Name         string
	MerchantName *string
	Pending      bool
}

// Balance is one sub-account's balance. Current is nil when the provider omits it.
type Balance struct {
	AccountID string
	Current   *decimal.Decimal
}

// Provider is the contract the linking flow and the sync orchestrator consume.
type Provider interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	GetInstitutionID(ctx context.Context, accessToken string) (*string, error)
	GetInstitutionName(ctx context.Context, institutionID string) (string, error)
	GetTransactions(ctx context.Context, accessToken string, start, end models.Date) ([]Transaction, error)
	GetBalances(ctx context.Context, accessToken string) ([]Balance, error)
}

// ProviderError describes a failed provider call. StatusCode is 0 when the
// request never got a response.
type ProviderError struct {
	Op         string
	StatusCode int
	Code       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: provider error %s (status %d): %v", e.Op, e.Code, e.StatusCode, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the call may succeed.
func (e *ProviderError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RetryPolicy bounds retries of temporary provider failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs fn, retrying temporary ProviderErrors with exponential backoff.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.BaseDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var perr *ProviderError
		if attempt >= p.MaxRetries || !errors.As(err, &perr) || !perr.Temporary() {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
}

// SumCurrent adds the current balances, counting a missing value as zero.
func SumCurrent(balances []Balance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if b.Current != nil {
			total = total.Add(*b.Current)
		}
	}
	return total
}
