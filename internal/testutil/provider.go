package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"cashdash/internal/aggregator"
	"cashdash/internal/models"
)

// Window is one transactions request seen by FakeProvider.
type Window struct {
	AccessToken string
	Start       models.Date
	End         models.Date
}

// FakeProvider is an in-memory aggregator.Provider keyed by access token.
// It is safe for concurrent use.
type FakeProvider struct {
	mu sync.Mutex

	LinkToken    string
	LinkTokenErr error

	// Exchanges maps public token to the access token and item id it yields.
	Exchanges   map[string][2]string
	ExchangeErr error

	InstitutionIDs   map[string]string
	InstitutionNames map[string]string
	InstitutionErr   error

	Transactions    map[string][]aggregator.Transaction
	TransactionErrs map[string]error
	Balances        map[string][]aggregator.Balance
	BalanceErrs     map[string]error

	Windows []Window
}

// NewFakeProvider returns an empty FakeProvider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		LinkToken:        "link-sandbox-test",
		Exchanges:        map[string][2]string{},
		InstitutionIDs:   map[string]string{},
		InstitutionNames: map[string]string{},
		Transactions:     map[string][]aggregator.Transaction{},
		TransactionErrs:  map[string]error{},
		Balances:         map[string][]aggregator.Balance{},
		BalanceErrs:      map[string]error{},
	}
}

// SetTransactions replaces the feed returned for accessToken.
func (f *FakeProvider) SetTransactions(accessToken string, txns ...aggregator.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Transactions[accessToken] = txns
}

// SetBalances replaces the balances returned for accessToken. A nil entry
// means the provider omitted the current balance.
func (f *FakeProvider) SetBalances(accessToken string, current ...*string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balances := make([]aggregator.Balance, 0, len(current))
	for i, c := range current {
		b := aggregator.Balance{AccountID: "acct-" + string(rune('a'+i))}
		if c != nil {
			d := decimal.RequireFromString(*c)
			b.Current = &d
		}
		balances = append(balances, b)
	}
	f.Balances[accessToken] = balances
}

// RecordedWindows returns a copy of the transaction windows requested so far.
func (f *FakeProvider) RecordedWindows() []Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Window(nil), f.Windows...)
}

func (f *FakeProvider) CreateLinkToken(_ context.Context, _ string) (string, error) {
	if f.LinkTokenErr != nil {
		return "", f.LinkTokenErr
	}
	return f.LinkToken, nil
}

func (f *FakeProvider) ExchangePublicToken(_ context.Context, publicToken string) (string, string, error) {
	if f.ExchangeErr != nil {
		return "", "", f.ExchangeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pair, ok := f.Exchanges[publicToken]
	if !ok {
		return "", "", &aggregator.ProviderError{Op: "item/public_token/exchange", StatusCode: 400, Code: "INVALID_PUBLIC_TOKEN", Err: errors.New("unknown public token")}
	}
	return pair[0], pair[1], nil
}

func (f *FakeProvider) GetInstitutionID(_ context.Context, accessToken string) (*string, error) {
	if f.InstitutionErr != nil {
		return nil, f.InstitutionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.InstitutionIDs[accessToken]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *FakeProvider) GetInstitutionName(_ context.Context, institutionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.InstitutionNames[institutionID]; ok {
		return name, nil
	}
	return "Unknown Institution", nil
}

func (f *FakeProvider) GetTransactions(_ context.Context, accessToken string, start, end models.Date) ([]aggregator.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Windows = append(f.Windows, Window{AccessToken: accessToken, Start: start, End: end})
	if err := f.TransactionErrs[accessToken]; err != nil {
		return nil, err
	}
	return append([]aggregator.Transaction(nil), f.Transactions[accessToken]...), nil
}

func (f *FakeProvider) GetBalances(_ context.Context, accessToken string) ([]aggregator.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.BalanceErrs[accessToken]; err != nil {
		return nil, err
	}
	return f.Balances[accessToken], nil
}

// ProviderTransaction builds a feed record dated date with the given amount.
func ProviderTransaction(externalID, amount string, date models.Date) aggregator.Transaction {
	return aggregator.Transaction{
		ExternalID: externalID,
		AccountID:  "acct-a",
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		Name:       "Transaction " + externalID,
	}
}
