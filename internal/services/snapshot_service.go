package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cashdash/internal/cache"
	apperrors "cashdash/internal/errors"
	"cashdash/internal/models"
)

const uncategorizedName = "Uncategorized"

// snapshotService handles daily balance snapshots and the cash-flow read model.
type snapshotService struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewSnapshotService creates a new SnapshotServicer.
func NewSnapshotService(db *gorm.DB, c cache.Cache) SnapshotServicer {
	return &snapshotService{db: db, cache: c}
}

// UpsertSnapshot records the balance of a linked account for date, replacing
// any balance already recorded for that day.
func (s *snapshotService) UpsertSnapshot(ctx context.Context, linkedAccountID string, date models.Date, balance decimal.Decimal) error {
	snap := &models.CashSnapshot{
		SnapshotDate:    date,
		LinkedAccountID: linkedAccountID,
		Balance:         balance.Round(2),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_date"}, {Name: "linked_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}).Create(snap).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Invalidate(ctx, cache.PrefixSnapshots)
	return nil
}

// ListSnapshots returns snapshots in the optional date range, oldest first.
func (s *snapshotService) ListSnapshots(ctx context.Context, from, to *models.Date) ([]models.CashSnapshot, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	key := cache.Key(cache.PrefixSnapshots, dateOrDash(from), dateOrDash(to))
	snapshots := []models.CashSnapshot{}
	if s.cache.GetJSON(ctx, key, &snapshots) {
		return snapshots, nil
	}

	query := s.db.WithContext(ctx).Model(&models.CashSnapshot{})
	if from != nil {
		query = query.Where("snapshot_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("snapshot_date <= ?", *to)
	}
	if err := query.Order("snapshot_date ASC").Order("linked_account_id ASC").Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.SetJSON(ctx, key, snapshots)
	return snapshots, nil
}

type categoryTotals struct {
	CategoryID   *string
	CategoryName *string
	Inflow       decimal.Decimal
	Outflow      decimal.Decimal
}

// CashFlow totals money in and out between from and to inclusive. A negative
// amount is inflow, a positive amount is outflow.
func (s *snapshotService) CashFlow(ctx context.Context, from, to models.Date) (*CashFlowSummary, error) {
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	key := cache.Key(cache.PrefixCashFlow, from, to)
	var cached CashFlowSummary
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var rows []categoryTotals
	err := s.db.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.category_id AS category_id,
			c.name AS category_name,
			COALESCE(SUM(CASE WHEN t.amount < 0 THEN -t.amount ELSE 0 END), 0) AS inflow,
			COALESCE(SUM(CASE WHEN t.amount > 0 THEN t.amount ELSE 0 END), 0) AS outflow`).
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Where("t.date >= ? AND t.date <= ?", from, to).
		Group("t.category_id, c.name").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &CashFlowSummary{
		FromDate:   from,
		ToDate:     to,
		Inflow:     decimal.Zero,
		Outflow:    decimal.Zero,
		ByCategory: make([]CategoryFlow, 0, len(rows)),
	}
	for _, r := range rows {
		flow := CategoryFlow{
			CategoryID:   r.CategoryID,
			CategoryName: uncategorizedName,
			Inflow:       r.Inflow.Round(2),
			Outflow:      r.Outflow.Round(2),
		}
		if r.CategoryID != nil && r.CategoryName != nil {
			flow.CategoryName = *r.CategoryName
		}
		summary.Inflow = summary.Inflow.Add(flow.Inflow)
		summary.Outflow = summary.Outflow.Add(flow.Outflow)
		summary.ByCategory = append(summary.ByCategory, flow)
	}
	summary.NetChange = summary.Inflow.Sub(summary.Outflow)

	sort.SliceStable(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Outflow.Equal(b.Outflow) {
			return a.Outflow.GreaterThan(b.Outflow)
		}
		return a.CategoryName < b.CategoryName
	})

	s.cache.SetJSON(ctx, key, summary)
	return summary, nil
}

func dateOrDash(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
