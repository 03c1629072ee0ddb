package models

import "github.com/shopspring/decimal"

// Transaction is one ledger row merged from the provider feed.
// Amount keeps the provider's sign: positive leaves the cash pool, negative enters it.
type Transaction struct {
	Base
	ExternalID      string          `gorm:"not null;uniqueIndex" json:"external_id"`
	LinkedAccountID string          `gorm:"type:uuid;not null;index" json:"linked_account_id"`
	AccountID       string          `gorm:"not null" json:"account_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Date            Date            `gorm:"type:date;not null;index" json:"date"`
	Name            string          `gorm:"not null" json:"name"`
	MerchantName    *string         `json:"merchant_name,omitempty"`
	CategoryID      *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Pending         bool            `gorm:"not null;default:false" json:"pending"`

	// Category is joined at read time, never written through this struct.
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// MergeColumns are the provider-owned columns overwritten when a transaction
// with the same external id is ingested again. category_id is deliberately absent.
var MergeColumns = []string{
	"linked_account_id",
	"account_id",
	"amount",
	"date",
	"name",
	"merchant_name",
	"pending",
	"updated_at",
}
