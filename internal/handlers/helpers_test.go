package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cashdash/internal/models"
	"cashdash/internal/pagination"
	"cashdash/internal/services"
	"cashdash/internal/validator"
)

// --- mock services ---

type mockCategoryService struct {
	createCategoryFn  func(name string, categoryType models.CategoryType, color *string) (*models.Category, error)
	listCategoriesFn  func(categoryType *models.CategoryType) ([]models.Category, error)
	getCategoryByIDFn func(categoryID string) (*models.Category, error)
	updateCategoryFn  func(categoryID, name string, categoryType *models.CategoryType, color *string) (*models.Category, error)
	deleteCategoryFn  func(categoryID string) error
}

func (m *mockCategoryService) CreateCategory(_ context.Context, name string, categoryType models.CategoryType, color *string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, categoryType, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories(_ context.Context, categoryType *models.CategoryType) ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(categoryType)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, categoryID, name string, categoryType *models.CategoryType, color *string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(categoryID, name, categoryType, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

type mockTransactionService struct {
	listTransactionsFn   func(filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(transactionID string) (*models.Transaction, error)
	assignCategoryFn     func(transactionID string, categoryID *string) (*models.Transaction, error)
}

func (m *mockTransactionService) ListTransactions(_ context.Context, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(filter, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) AssignCategory(_ context.Context, transactionID string, categoryID *string) (*models.Transaction, error) {
	if m.assignCategoryFn != nil {
		return m.assignCategoryFn(transactionID, categoryID)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}, CategoryID: categoryID}, nil
}

func (m *mockTransactionService) MergeTransactions(_ context.Context, _ []models.Transaction) error {
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockSnapshotService struct {
	listSnapshotsFn func(from, to *models.Date) ([]models.CashSnapshot, error)
	cashFlowFn      func(from, to models.Date) (*services.CashFlowSummary, error)
}

func (m *mockSnapshotService) UpsertSnapshot(_ context.Context, _ string, _ models.Date, _ decimal.Decimal) error {
	return nil
}

func (m *mockSnapshotService) ListSnapshots(_ context.Context, from, to *models.Date) ([]models.CashSnapshot, error) {
	if m.listSnapshotsFn != nil {
		return m.listSnapshotsFn(from, to)
	}
	return []models.CashSnapshot{}, nil
}

func (m *mockSnapshotService) CashFlow(_ context.Context, from, to models.Date) (*services.CashFlowSummary, error) {
	if m.cashFlowFn != nil {
		return m.cashFlowFn(from, to)
	}
	return &services.CashFlowSummary{FromDate: from, ToDate: to, ByCategory: []services.CategoryFlow{}}, nil
}

var _ services.SnapshotServicer = (*mockSnapshotService)(nil)

type mockLinkService struct {
	createLinkTokenFn    func() (string, error)
	completeLinkFn       func(publicToken string) (*models.LinkedAccount, error)
	listLinkedAccountsFn func() ([]models.LinkedAccount, error)
}

func (m *mockLinkService) CreateLinkToken(_ context.Context) (string, error) {
	if m.createLinkTokenFn != nil {
		return m.createLinkTokenFn()
	}
	return "link-token", nil
}

func (m *mockLinkService) CompleteLink(_ context.Context, publicToken string) (*models.LinkedAccount, error) {
	if m.completeLinkFn != nil {
		return m.completeLinkFn(publicToken)
	}
	return &models.LinkedAccount{}, nil
}

func (m *mockLinkService) ListLinkedAccounts(_ context.Context) ([]models.LinkedAccount, error) {
	if m.listLinkedAccountsFn != nil {
		return m.listLinkedAccountsFn()
	}
	return []models.LinkedAccount{}, nil
}

var _ services.LinkServicer = (*mockLinkService)(nil)

type mockSyncService struct {
	syncAllFn func(today models.Date) (*services.SyncSummary, error)
}

func (m *mockSyncService) SyncAll(_ context.Context, today models.Date) (*services.SyncSummary, error) {
	if m.syncAllFn != nil {
		return m.syncAllFn(today)
	}
	return &services.SyncSummary{Message: "Synced 0 transactions"}, nil
}

var _ services.SyncServicer = (*mockSyncService)(nil)

type auditEntry struct {
	Action       string
	ResourceType string
	ResourceID   string
	Changes      map[string]interface{}
}

// mockAuditService records every entry so tests can assert on audited actions.
type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(_ context.Context, action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{Action: action, ResourceType: resourceType, ResourceID: resourceID, Changes: changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func fixedClock(day string) Clock {
	t, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestRespondWithError_HidesUnexpectedErrors(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondWithError(c, context.DeadlineExceeded)
	})

	rec := doRequest(r, http.MethodGet, "/boom", "")

	assertStatus(t, rec, http.StatusInternalServerError)
	result := parseJSON(t, rec)
	assertErrorCode(t, result, "INTERNAL_ERROR")
	if msg := result["error"].(map[string]interface{})["message"]; msg != "An internal error occurred" {
		t.Errorf("expected generic message, got %v", msg)
	}
}
