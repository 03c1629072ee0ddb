package aggregator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cashdash/internal/logger"
	"cashdash/internal/models"
)

const (
	linkClientName  = "Cash Dashboard"
	linkLanguage    = "en"
	transactionPage = 500
	unknownName     = "Unknown Institution"
)

// PlaidConfig holds what the Plaid adapter needs from application config.
type PlaidConfig struct {
	ClientID     string
	Secret       string
	Environment  string
	CountryCodes []string
	Timeout      time.Duration
	Retry        RetryPolicy
}

type plaidProvider struct {
	api          *plaid.PlaidApiService
	countryCodes []plaid.CountryCode
	retry        RetryPolicy
	log          *zap.SugaredLogger
}

// NewPlaidProvider creates a Provider backed by the Plaid API.
func NewPlaidProvider(cfg PlaidConfig) Provider {
	pc := plaid.NewConfiguration()
	pc.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	pc.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	if cfg.Environment == "production" {
		pc.UseEnvironment(plaid.Production)
	} else {
		pc.UseEnvironment(plaid.Sandbox)
	}
	pc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	codes := make([]plaid.CountryCode, 0, len(cfg.CountryCodes))
	for _, c := range cfg.CountryCodes {
		codes = append(codes, plaid.CountryCode(c))
	}

	return &plaidProvider{
		api:          plaid.NewAPIClient(pc).PlaidApi,
		countryCodes: codes,
		retry:        cfg.Retry,
		log:          logger.Named("plaid"),
	}
}

func (p *plaidProvider) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(linkClientName, linkLanguage, p.countryCodes,
		plaid.LinkTokenCreateRequestUser{ClientUserId: clientUserID})
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	var token string
	err := p.retry.Do(ctx, func() error {
		resp, httpResp, err := p.api.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
		if err != nil {
			return wrapPlaidError("link/token/create", httpResp, err)
		}
		token = resp.GetLinkToken()
		return nil
	})
	return token, err
}

func (p *plaidProvider) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	// Public tokens are single use, so the exchange is never retried.
	resp, httpResp, err := p.api.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", wrapPlaidError("item/public_token/exchange", httpResp, err)
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (p *plaidProvider) GetInstitutionID(ctx context.Context, accessToken string) (*string, error) {
	req := plaid.NewItemGetRequest(accessToken)

	var id *string
	err := p.retry.Do(ctx, func() error {
		resp, httpResp, err := p.api.ItemGet(ctx).ItemGetRequest(*req).Execute()
		if err != nil {
			return wrapPlaidError("item/get", httpResp, err)
		}
		item := resp.GetItem()
		if v, ok := item.GetInstitutionIdOk(); ok && v != nil && *v != "" {
			s := *v
			id = &s
		}
		return nil
	})
	return id, err
}

func (p *plaidProvider) GetInstitutionName(ctx context.Context, institutionID string) (string, error) {
	req := plaid.NewInstitutionsGetByIdRequest(institutionID, p.countryCodes)

	name := unknownName
	err := p.retry.Do(ctx, func() error {
		resp, httpResp, err := p.api.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*req).Execute()
		if err != nil {
			return wrapPlaidError("institutions/get_by_id", httpResp, err)
		}
		inst := resp.GetInstitution()
		if n := inst.GetName(); n != "" {
			name = n
		}
		return nil
	})
	return name, err
}

// GetTransactions pages through transactions/get until the reported total is reached.
func (p *plaidProvider) GetTransactions(ctx context.Context, accessToken string, start, end models.Date) ([]Transaction, error) {
	var out []Transaction
	offset := 0
	for {
		opts := plaid.NewTransactionsGetRequestOptions()
		opts.SetCount(transactionPage)
		opts.SetOffset(int32(offset))
		req := plaid.NewTransactionsGetRequest(accessToken, start.String(), end.String())
		req.SetOptions(*opts)

		var (
			page  []plaid.Transaction
			total int
		)
		err := p.retry.Do(ctx, func() error {
			resp, httpResp, err := p.api.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
			if err != nil {
				return wrapPlaidError("transactions/get", httpResp, err)
			}
			page = resp.GetTransactions()
			total = int(resp.GetTotalTransactions())
			return nil
		})
		if err != nil {
			return nil, err
		}

		for i := range page {
			txn, err := mapTransaction(&page[i])
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		}

		offset += len(page)
		if len(page) == 0 || offset >= total {
			break
		}
	}

	p.log.Debugw("Fetched transactions", "start", start, "end", end, "count", len(out))
	return out, nil
}

func (p *plaidProvider) GetBalances(ctx context.Context, accessToken string) ([]Balance, error) {
	req := plaid.NewAccountsBalanceGetRequest(accessToken)

	var out []Balance
	err := p.retry.Do(ctx, func() error {
		resp, httpResp, err := p.api.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*req).Execute()
		if err != nil {
			return wrapPlaidError("accounts/balance/get", httpResp, err)
		}
		accounts := resp.GetAccounts()
		out = make([]Balance, 0, len(accounts))
		for i := range accounts {
			out = append(out, mapBalance(&accounts[i]))
		}
		return nil
	})
	return out, err
}

func mapTransaction(t *plaid.Transaction) (Transaction, error) {
	date, err := models.ParseDate(t.GetDate())
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", t.GetTransactionId(), err)
	}

	txn := Transaction{
		ExternalID: t.GetTransactionId(),
		AccountID:  t.GetAccountId(),
		Amount:     decimal.NewFromFloat(t.GetAmount()).Round(2),
		Date:       date,
		Name:       t.GetName(),
		Pending:    t.GetPending(),
	}
	if v, ok := t.GetMerchantNameOk(); ok && v != nil && *v != "" {
		m := *v
		txn.MerchantName = &m
	}
	return txn, nil
}

func mapBalance(a *plaid.AccountBase) Balance {
	b := Balance{AccountID: a.GetAccountId()}
	if v, ok := a.Balances.GetCurrentOk(); ok && v != nil {
		d := decimal.NewFromFloat(*v).Round(2)
		b.Current = &d
	}
	return b
}

func wrapPlaidError(op string, httpResp *http.Response, err error) error {
	perr := &ProviderError{Op: op, Err: err}
	if httpResp != nil {
		perr.StatusCode = httpResp.StatusCode
	}
	if pe, convErr := plaid.ToPlaidError(err); convErr == nil {
		perr.Code = pe.GetErrorCode()
	}
	return perr
}
