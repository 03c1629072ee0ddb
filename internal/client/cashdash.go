// Package client provides an HTTP client for the Cash Dashboard pipeline API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// SyncFailure is one linked account that did not sync cleanly.
type SyncFailure struct {
	LinkedAccountID string `json:"linked_account_id"`
	ItemID          string `json:"item_id"`
	Stage           string `json:"stage"`
}

// SyncResult is the server's report of a sync run.
type SyncResult struct {
	Message          string        `json:"message"`
	TransactionCount int           `json:"transaction_count"`
	AccountsSynced   int           `json:"accounts_synced"`
	FailedAccounts   int           `json:"failed_accounts"`
	Failures         []SyncFailure `json:"failures"`
}

// APIError is a non-200 response carrying the server's error code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// CashdashClient communicates with the Cash Dashboard pipeline API.
type CashdashClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCashdashClient creates a new pipeline API client.
func NewCashdashClient(baseURL, apiKey string, httpClient *http.Client) *CashdashClient {
	return &CashdashClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// TriggerSync asks the server to sync every linked account and waits for the report.
func (c *CashdashClient) TriggerSync(ctx context.Context) (*SyncResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/pipeline/sync", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("triggering sync: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Code, apiErr.Message = body.Error.Code, body.Error.Message
		}
		return nil, fmt.Errorf("triggering sync: %w", apiErr)
	}

	var result SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding sync response: %w", err)
	}
	return &result, nil
}
