package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cashdash/internal/models"
	"cashdash/internal/secret"
)

// TestCredentialKey is the hex sealing key used by fixtures and test services.
const TestCredentialKey = "6b6579206b6579206b6579206b6579206b6579206b6579206b6579206b657921"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestSealer returns a Sealer keyed with TestCredentialKey.
func TestSealer(t *testing.T) *secret.Sealer {
	t.Helper()

	s, err := secret.NewSealer(TestCredentialKey)
	if err != nil {
		t.Fatalf("failed to create sealer: %v", err)
	}
	return s
}

// CreateTestCategory creates a category of the given type with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestCategoryNamed creates a category with the given name and type.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Type: categoryType}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestLinkedAccount registers a linked account whose access credential
// is accessToken sealed with TestCredentialKey.
func CreateTestLinkedAccount(t *testing.T, db *gorm.DB, accessToken string) *models.LinkedAccount {
	t.Helper()

	sealed, err := TestSealer(t).Seal(accessToken)
	if err != nil {
		t.Fatalf("failed to seal credential: %v", err)
	}

	name := "Test Bank"
	account := &models.LinkedAccount{
		ItemID:           fmt.Sprintf("item-%d", nextID()),
		AccessCredential: sealed,
		InstitutionName:  &name,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test linked account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction for the linked account.
// amount uses the provider sign convention: positive is money out.
func CreateTestTransaction(t *testing.T, db *gorm.DB, linkedAccountID string, amount string, date models.Date) *models.Transaction {
	t.Helper()

	n := nextID()
	txn := &models.Transaction{
		ExternalID:      fmt.Sprintf("ext-%d", n),
		LinkedAccountID: linkedAccountID,
		AccountID:       "acct-1",
		Amount:          decimal.RequireFromString(amount),
		Date:            date,
		Name:            fmt.Sprintf("Test Transaction %d", n),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestSnapshot creates a cash snapshot for the linked account on date.
func CreateTestSnapshot(t *testing.T, db *gorm.DB, linkedAccountID string, date models.Date, balance string) *models.CashSnapshot {
	t.Helper()

	snap := &models.CashSnapshot{
		SnapshotDate:    date,
		LinkedAccountID: linkedAccountID,
		Balance:         decimal.RequireFromString(balance),
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return snap
}
