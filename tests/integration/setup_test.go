package integration

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashdash/internal/cache"
	"cashdash/internal/handlers"
	"cashdash/internal/logger"
	"cashdash/internal/middleware"
	"cashdash/internal/services"
	"cashdash/internal/testutil"
	"cashdash/internal/validator"
)

const pipelineKey = "pipeline-test-key"

// today is the calendar day every request in these tests runs on.
const today = "2024-03-10"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Provider *testutil.FakeProvider
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func pinnedClock() time.Time {
	t, _ := time.ParseInLocation("2006-01-02", today, time.Local)
	return t.Add(12 * time.Hour)
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database and a fake aggregation provider.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	provider := testutil.NewFakeProvider()
	sealer := testutil.TestSealer(t)
	readCache := cache.NewNoop()

	// Services
	auditService := services.NewAuditService(db)
	categoryService := services.NewCategoryService(db, readCache)
	transactionService := services.NewTransactionService(db, readCache)
	snapshotService := services.NewSnapshotService(db, readCache)
	linkService := services.NewLinkService(db, provider, sealer, "user-test")
	syncService := services.NewSyncService(db, provider, sealer, transactionService, snapshotService,
		services.SyncOptions{WindowDays: 90, Concurrency: 2})

	// Handlers
	plaidHandler := handlers.NewPlaidHandler(linkService, syncService, auditService, pinnedClock)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(snapshotService, pinnedClock)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	plaid := v1.Group("/plaid")
	plaid.POST("/link-token", plaidHandler.CreateLinkToken)
	plaid.POST("/exchange-token", plaidHandler.ExchangeToken)
	plaid.POST("/sync", plaidHandler.Sync)
	v1.GET("/linked-accounts", plaidHandler.ListLinkedAccounts)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.POST("/assign-category", transactionHandler.AssignCategory)

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	v1.GET("/snapshots", dashboardHandler.ListSnapshots)
	v1.GET("/dashboard/cash-flow", dashboardHandler.CashFlow)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineKey))
	pipeline.POST("/sync", plaidHandler.PipelineSync)

	return &testApp{DB: db, Router: router, Provider: provider}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// expectMoney compares a JSON decimal (encoded as a string) to want.
func expectMoney(t *testing.T, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", got, got)
	}
	if !decimal.RequireFromString(s).Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s, got %s", want, s)
	}
}

// linkBank completes a link for publicToken and returns the linked account id.
func (app *testApp) linkBank(t *testing.T, publicToken, accessToken, itemID string) string {
	t.Helper()
	app.Provider.Exchanges[publicToken] = [2]string{accessToken, itemID}

	rec := app.request("POST", "/api/v1/plaid/exchange-token", `{"public_token":"`+publicToken+`"}`)
	expectStatus(t, rec, 201)
	return parseJSON(t, rec)["linked_account"].(map[string]interface{})["id"].(string)
}
