package aggregator

import (
	"errors"
	"net/http"
	"testing"

	"github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"
)

func TestMapTransaction(t *testing.T) {
	merchant := "Blue Bottle"
	src := plaid.Transaction{
		TransactionId: "txn-1",
		AccountId:     "acct-1",
		Amount:        4.5,
		Date:          "2024-03-01",
		Name:          "BLUE BOTTLE #12",
		MerchantName:  *plaid.NewNullableString(&merchant),
		Pending:       true,
	}

	got, err := mapTransaction(&src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExternalID != "txn-1" || got.AccountID != "acct-1" {
		t.Errorf("unexpected ids: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("expected 4.50, got %s", got.Amount)
	}
	if got.Date != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %s", got.Date)
	}
	if got.MerchantName == nil || *got.MerchantName != "Blue Bottle" {
		t.Errorf("expected merchant Blue Bottle, got %v", got.MerchantName)
	}
	if !got.Pending {
		t.Error("expected pending")
	}
}

func TestMapTransaction_MissingMerchant(t *testing.T) {
	empty := ""
	for name, src := range map[string]plaid.Transaction{
		"unset": {TransactionId: "a", Date: "2024-03-01", Amount: -20},
		"empty": {TransactionId: "b", Date: "2024-03-01", Amount: -20, MerchantName: *plaid.NewNullableString(&empty)},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := mapTransaction(&src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MerchantName != nil {
				t.Errorf("expected nil merchant, got %q", *got.MerchantName)
			}
			if !got.Amount.Equal(decimal.NewFromInt(-20)) {
				t.Errorf("expected -20, got %s", got.Amount)
			}
		})
	}
}

func TestMapTransaction_BadDate(t *testing.T) {
	if _, err := mapTransaction(&plaid.Transaction{TransactionId: "x", Date: "03/01/2024"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestMapBalance(t *testing.T) {
	current := 120.5
	withValue := plaid.AccountBase{AccountId: "a", Balances: plaid.AccountBalance{Current: *plaid.NewNullableFloat64(&current)}}
	withoutValue := plaid.AccountBase{AccountId: "b"}

	got := mapBalance(&withValue)
	if got.Current == nil || !got.Current.Equal(decimal.RequireFromString("120.50")) {
		t.Errorf("expected 120.50, got %v", got.Current)
	}
	if got := mapBalance(&withoutValue); got.Current != nil {
		t.Errorf("expected nil current, got %s", got.Current)
	}
}

func TestWrapPlaidError(t *testing.T) {
	cause := errors.New("boom")

	err := wrapPlaidError("transactions/get", &http.Response{StatusCode: http.StatusServiceUnavailable}, cause)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if perr.StatusCode != http.StatusServiceUnavailable || !perr.Temporary() {
		t.Errorf("expected temporary 503, got %+v", perr)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause")
	}

	noResp := wrapPlaidError("item/get", nil, cause).(*ProviderError)
	if noResp.StatusCode != 0 || !noResp.Temporary() {
		t.Errorf("expected network failure to be temporary, got %+v", noResp)
	}
}
