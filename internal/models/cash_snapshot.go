package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashSnapshot is the aggregate current balance of one linked account on one day.
// Time-series data: no updated_at, one row per (snapshot_date, linked_account_id).
type CashSnapshot struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	SnapshotDate    Date            `gorm:"type:date;not null;uniqueIndex:idx_cash_snapshots_date_account" json:"snapshot_date"`
	LinkedAccountID string          `gorm:"type:uuid;not null;uniqueIndex:idx_cash_snapshots_date_account" json:"linked_account_id"`
	Balance         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *CashSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}
