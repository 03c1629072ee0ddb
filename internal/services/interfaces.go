package services

import (
	"context"

	"github.com/shopspring/decimal"

	"cashdash/internal/models"
	"cashdash/internal/pagination"
)

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, color *string) (*models.Category, error)
	ListCategories(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, name string, categoryType *models.CategoryType, color *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// LinkServicer defines the contract for connecting bank accounts through the provider.
type LinkServicer interface {
	CreateLinkToken(ctx context.Context) (string, error)
	CompleteLink(ctx context.Context, publicToken string) (*models.LinkedAccount, error)
	ListLinkedAccounts(ctx context.Context) ([]models.LinkedAccount, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate        *models.Date
	ToDate          *models.Date
	CategoryID      *string
	Uncategorized   bool
	LinkedAccountID *string
	Pending         *bool
}

// TransactionServicer defines the contract for the transaction ledger.
type TransactionServicer interface {
	ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	AssignCategory(ctx context.Context, transactionID string, categoryID *string) (*models.Transaction, error)
	MergeTransactions(ctx context.Context, txns []models.Transaction) error
}

// CategoryFlow is the inflow and outflow attributed to one category.
// CategoryID is nil for uncategorized transactions.
type CategoryFlow struct {
	CategoryID   *string         `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Inflow       decimal.Decimal `json:"inflow"`
	Outflow      decimal.Decimal `json:"outflow"`
}

// CashFlowSummary aggregates money in and out over a date range.
type CashFlowSummary struct {
	FromDate   models.Date     `json:"from_date"`
	ToDate     models.Date     `json:"to_date"`
	Inflow     decimal.Decimal `json:"inflow"`
	Outflow    decimal.Decimal `json:"outflow"`
	NetChange  decimal.Decimal `json:"net_change"`
	ByCategory []CategoryFlow  `json:"by_category"`
}

// SnapshotServicer defines the contract for balance snapshots and cash-flow reads.
type SnapshotServicer interface {
	UpsertSnapshot(ctx context.Context, linkedAccountID string, date models.Date, balance decimal.Decimal) error
	ListSnapshots(ctx context.Context, from, to *models.Date) ([]models.CashSnapshot, error)
	CashFlow(ctx context.Context, from, to models.Date) (*CashFlowSummary, error)
}

// Sync stages recorded on an AccountFailure.
const (
	StageCredential   = "credential"
	StageTransactions = "transactions"
	StageMerge        = "merge"
	StageBalances     = "balances"
	StageSnapshot     = "snapshot"
)

// AccountFailure records why one linked account did not sync cleanly.
type AccountFailure struct {
	LinkedAccountID string `json:"linked_account_id"`
	ItemID          string `json:"item_id"`
	Stage           string `json:"stage"`
	Err             error  `json:"-"`
}

// SyncSummary is the outcome of one sync run.
type SyncSummary struct {
	TransactionCount int              `json:"transaction_count"`
	AccountsSynced   int              `json:"accounts_synced"`
	Failures         []AccountFailure `json:"failures"`
	Message          string           `json:"message"`
}

// SyncServicer defines the contract for the sync orchestrator.
type SyncServicer interface {
	SyncAll(ctx context.Context, today models.Date) (*SyncSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
