package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cashdash/internal/errors"
	"cashdash/internal/models"
	"cashdash/internal/services"
)

func setupPlaidRouter(handler *PlaidHandler) *gin.Engine {
	r := gin.New()
	r.POST("/plaid/link-token", handler.CreateLinkToken)
	r.POST("/plaid/exchange-token", handler.ExchangeToken)
	r.POST("/plaid/sync", handler.Sync)
	r.POST("/pipeline/sync", handler.PipelineSync)
	r.GET("/linked-accounts", handler.ListLinkedAccounts)
	return r
}

func TestPlaidHandler_CreateLinkToken(t *testing.T) {
	t.Run("returns the link token", func(t *testing.T) {
		linkSvc := &mockLinkService{createLinkTokenFn: func() (string, error) { return "link-sandbox-123", nil }}
		r := setupPlaidRouter(NewPlaidHandler(linkSvc, &mockSyncService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/plaid/link-token", "")

		assertStatus(t, rec, http.StatusOK)
		if tok := parseJSON(t, rec)["link_token"]; tok != "link-sandbox-123" {
			t.Errorf("unexpected link_token %v", tok)
		}
	})

	t.Run("returns 502 on provider failure", func(t *testing.T) {
		linkSvc := &mockLinkService{createLinkTokenFn: func() (string, error) {
			return "", apperrors.Wrap(apperrors.ErrLinkTokenFailed, errors.New("INVALID_API_KEYS"))
		}}
		r := setupPlaidRouter(NewPlaidHandler(linkSvc, &mockSyncService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/plaid/link-token", "")

		assertStatus(t, rec, http.StatusBadGateway)
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "LINK_TOKEN_FAILED")
		if msg := result["error"].(map[string]interface{})["message"]; msg != "Failed to create link token" {
			t.Errorf("provider detail leaked: %v", msg)
		}
	})
}

func TestPlaidHandler_ExchangeToken(t *testing.T) {
	t.Run("returns 201 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		name := "First Platypus Bank"
		linkSvc := &mockLinkService{completeLinkFn: func(pub string) (*models.LinkedAccount, error) {
			if pub != "public-sandbox-1" {
				t.Errorf("unexpected public token %q", pub)
			}
			return &models.LinkedAccount{
				Base:             models.Base{ID: "la-1"},
				ItemID:           "item-1",
				AccessCredential: "sealed",
				InstitutionName:  &name,
			}, nil
		}}
		r := setupPlaidRouter(NewPlaidHandler(linkSvc, &mockSyncService{}, audit, nil))

		rec := doRequest(r, "POST", "/plaid/exchange-token", `{"public_token":"public-sandbox-1"}`)

		assertStatus(t, rec, http.StatusCreated)
		acct := parseJSON(t, rec)["linked_account"].(map[string]interface{})
		if acct["institution_name"] != name {
			t.Errorf("unexpected institution %v", acct["institution_name"])
		}
		if _, ok := acct["access_credential"]; ok {
			t.Error("access credential must never be serialized")
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "LINK_ACCOUNT" {
			t.Errorf("expected LINK_ACCOUNT audit, got %v", got)
		}
	})

	t.Run("returns 400 without public token", func(t *testing.T) {
		r := setupPlaidRouter(NewPlaidHandler(&mockLinkService{}, &mockSyncService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/plaid/exchange-token", `{}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 when already linked", func(t *testing.T) {
		linkSvc := &mockLinkService{completeLinkFn: func(string) (*models.LinkedAccount, error) {
			return nil, apperrors.ErrAlreadyLinked
		}}
		r := setupPlaidRouter(NewPlaidHandler(linkSvc, &mockSyncService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/plaid/exchange-token", `{"public_token":"public-sandbox-1"}`)

		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "ALREADY_LINKED")
	})
}

func TestPlaidHandler_ListLinkedAccounts(t *testing.T) {
	linkSvc := &mockLinkService{listLinkedAccountsFn: func() ([]models.LinkedAccount, error) {
		return []models.LinkedAccount{{ItemID: "item-1"}, {ItemID: "item-2"}}, nil
	}}
	r := setupPlaidRouter(NewPlaidHandler(linkSvc, &mockSyncService{}, &mockAuditService{}, nil))

	rec := doRequest(r, "GET", "/linked-accounts", "")

	assertStatus(t, rec, http.StatusOK)
	if data := parseJSON(t, rec)["linked_accounts"].([]interface{}); len(data) != 2 {
		t.Errorf("expected 2 linked accounts, got %d", len(data))
	}
}

func TestPlaidHandler_Sync(t *testing.T) {
	t.Run("reports counts and failures", func(t *testing.T) {
		audit := &mockAuditService{}
		var today models.Date
		syncSvc := &mockSyncService{syncAllFn: func(d models.Date) (*services.SyncSummary, error) {
			today = d
			return &services.SyncSummary{
				TransactionCount: 42,
				AccountsSynced:   1,
				Message:          "Synced 42 transactions",
				Failures: []services.AccountFailure{
					{LinkedAccountID: "la-2", ItemID: "item-2", Stage: services.StageTransactions, Err: errors.New("ITEM_LOGIN_REQUIRED")},
				},
			}, nil
		}}
		r := setupPlaidRouter(NewPlaidHandler(&mockLinkService{}, syncSvc, audit, fixedClock("2024-03-10")))

		rec := doRequest(r, "POST", "/plaid/sync", "")

		assertStatus(t, rec, http.StatusOK)
		if today != "2024-03-10" {
			t.Errorf("expected sync for 2024-03-10, got %s", today)
		}
		result := parseJSON(t, rec)
		if result["transaction_count"].(float64) != 42 || result["accounts_synced"].(float64) != 1 {
			t.Errorf("unexpected counts %v", result)
		}
		if result["failed_accounts"].(float64) != 1 {
			t.Errorf("expected 1 failed account, got %v", result["failed_accounts"])
		}
		failure := result["failures"].([]interface{})[0].(map[string]interface{})
		if failure["stage"] != "transactions" || failure["item_id"] != "item-2" {
			t.Errorf("unexpected failure %v", failure)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "SYNC" {
			t.Errorf("expected SYNC audit, got %v", got)
		}
	})

	t.Run("empty failures is an array", func(t *testing.T) {
		r := setupPlaidRouter(NewPlaidHandler(&mockLinkService{}, &mockSyncService{}, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/pipeline/sync", "")

		assertStatus(t, rec, http.StatusOK)
		if f, ok := parseJSON(t, rec)["failures"].([]interface{}); !ok || len(f) != 0 {
			t.Errorf("expected empty failures array, got %v", f)
		}
	})

	t.Run("returns 500 when the run cannot start", func(t *testing.T) {
		syncSvc := &mockSyncService{syncAllFn: func(models.Date) (*services.SyncSummary, error) {
			return nil, apperrors.Wrap(apperrors.ErrSyncFailed, errors.New("db down"))
		}}
		r := setupPlaidRouter(NewPlaidHandler(&mockLinkService{}, syncSvc, &mockAuditService{}, nil))

		rec := doRequest(r, "POST", "/plaid/sync", "")

		assertStatus(t, rec, http.StatusInternalServerError)
		assertErrorCode(t, parseJSON(t, rec), "SYNC_FAILED")
	})
}
