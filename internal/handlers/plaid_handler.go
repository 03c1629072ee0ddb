package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashdash/internal/errors"
	"cashdash/internal/models"
	"cashdash/internal/services"
)

// PlaidHandler handles bank linking and sync requests.
type PlaidHandler struct {
	linkService  services.LinkServicer
	syncService  services.SyncServicer
	auditService services.AuditServicer
	clock        Clock
}

// NewPlaidHandler creates a new PlaidHandler. A nil clock uses the wall clock.
func NewPlaidHandler(linkService services.LinkServicer, syncService services.SyncServicer, auditService services.AuditServicer, clock Clock) *PlaidHandler {
	return &PlaidHandler{linkService: linkService, syncService: syncService, auditService: auditService, clock: clock}
}

// LinkTokenResponse carries a short-lived link token for the client widget.
type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// ExchangeTokenRequest represents the request payload for completing a link
type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token" binding:"required"`
}

// LinkedAccountResponse wraps a newly linked account.
type LinkedAccountResponse struct {
	LinkedAccount *models.LinkedAccount `json:"linked_account"`
}

// SyncFailure is one account that did not sync cleanly.
type SyncFailure struct {
	LinkedAccountID string `json:"linked_account_id"`
	ItemID          string `json:"item_id"`
	Stage           string `json:"stage"`
}

// SyncResponse reports the outcome of a sync run.
type SyncResponse struct {
	Message          string        `json:"message" example:"Synced 42 transactions"`
	TransactionCount int           `json:"transaction_count"`
	AccountsSynced   int           `json:"accounts_synced"`
	FailedAccounts   int           `json:"failed_accounts"`
	Failures         []SyncFailure `json:"failures"`
}

// CreateLinkToken handles link session creation
// @Summary     Create a link token
// @Description Start a bank-linking session scoped to transactions
// @Tags        plaid
// @Produce     json
// @Success     200 {object} LinkTokenResponse
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /plaid/link-token [post]
func (h *PlaidHandler) CreateLinkToken(c *gin.Context) {
	token, err := h.linkService.CreateLinkToken(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkTokenResponse{LinkToken: token})
}

// ExchangeToken completes a link
// @Summary     Exchange a public token
// @Description Exchange the widget's public token and register the linked account
// @Tags        plaid
// @Accept      json
// @Produce     json
// @Param       request body ExchangeTokenRequest true "Public token"
// @Success     201 {object} LinkedAccountResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Already linked"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /plaid/exchange-token [post]
func (h *PlaidHandler) ExchangeToken(c *gin.Context) {
	var req ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "public_token is required"))
		return
	}

	account, err := h.linkService.CompleteLink(c.Request.Context(), req.PublicToken)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "LINK_ACCOUNT", "linked_account", account.ID, c.ClientIP(),
		map[string]interface{}{"item_id": account.ItemID})

	c.JSON(http.StatusCreated, LinkedAccountResponse{LinkedAccount: account})
}

// ListLinkedAccounts lists connected banks
// @Summary     List linked accounts
// @Tags        plaid
// @Produce     json
// @Success     200 {object} map[string][]models.LinkedAccount
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /linked-accounts [get]
func (h *PlaidHandler) ListLinkedAccounts(c *gin.Context) {
	accounts, err := h.linkService.ListLinkedAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"linked_accounts": accounts})
}

// Sync runs a sync for every linked account
// @Summary     Sync transactions
// @Description Pull the trailing transaction window and current balances for every linked account
// @Tags        plaid
// @Produce     json
// @Success     200 {object} SyncResponse
// @Failure     500 {object} ErrorResponse "Sync failed"
// @Router      /plaid/sync [post]
func (h *PlaidHandler) Sync(c *gin.Context) {
	h.runSync(c, "user")
}

// PipelineSync is the scheduled-sync entry point
// @Summary     Scheduled sync
// @Tags        pipeline
// @Produce     json
// @Security    PipelineAPIKey
// @Success     200 {object} SyncResponse
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Sync failed"
// @Router      /pipeline/sync [post]
func (h *PlaidHandler) PipelineSync(c *gin.Context) {
	h.runSync(c, "pipeline")
}

func (h *PlaidHandler) runSync(c *gin.Context, trigger string) {
	summary, err := h.syncService.SyncAll(c.Request.Context(), h.clock.today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := SyncResponse{
		Message:          summary.Message,
		TransactionCount: summary.TransactionCount,
		AccountsSynced:   summary.AccountsSynced,
		FailedAccounts:   len(summary.Failures),
		Failures:         make([]SyncFailure, 0, len(summary.Failures)),
	}
	for _, f := range summary.Failures {
		resp.Failures = append(resp.Failures, SyncFailure{LinkedAccountID: f.LinkedAccountID, ItemID: f.ItemID, Stage: f.Stage})
	}

	h.auditService.Log(c.Request.Context(), "SYNC", "sync", "", c.ClientIP(), map[string]interface{}{
		"trigger":           trigger,
		"transaction_count": resp.TransactionCount,
		"failed_accounts":   resp.FailedAccounts,
	})

	c.JSON(http.StatusOK, resp)
}
