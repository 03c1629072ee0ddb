package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cashdash/internal/cache"
	apperrors "cashdash/internal/errors"
	"cashdash/internal/models"
	"cashdash/internal/pagination"
)

const mergeBatchSize = 200

// transactionService handles the transaction ledger.
type transactionService struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, c cache.Cache) TransactionServicer {
	return &transactionService{db: db, cache: c}
}

// ListTransactions returns a filtered page of transactions, newest first, with
// their category attached.
func (s *transactionService) ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	key := cache.Key(cache.PrefixTransactions, filter.cacheKey(), page.Page, page.PageSize)
	var cached pagination.PageResponse[models.Transaction]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Scopes(filterTransactions(filter)).
		Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := s.db.WithContext(ctx).
		Scopes(filterTransactions(filter), pagination.Paginate(page)).
		Preload("Category").
		Order("date DESC").Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	s.cache.SetJSON(ctx, key, result)
	return &result, nil
}

func filterTransactions(f TransactionFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.FromDate != nil {
			q = q.Where("date >= ?", *f.FromDate)
		}
		if f.ToDate != nil {
			q = q.Where("date <= ?", *f.ToDate)
		}
		if f.Uncategorized {
			q = q.Where("category_id IS NULL")
		} else if f.CategoryID != nil {
			q = q.Where("category_id = ?", *f.CategoryID)
		}
		if f.LinkedAccountID != nil {
			q = q.Where("linked_account_id = ?", *f.LinkedAccountID)
		}
		if f.Pending != nil {
			q = q.Where("pending = ?", *f.Pending)
		}
		return q
	}
}

func (f TransactionFilter) cacheKey() string {
	opt := func(s *string) string {
		if s == nil {
			return "-"
		}
		return *s
	}
	date := func(d *models.Date) string {
		if d == nil {
			return "-"
		}
		return d.String()
	}
	pending := "-"
	if f.Pending != nil {
		pending = "false"
		if *f.Pending {
			pending = "true"
		}
	}
	return cache.Key("", date(f.FromDate), date(f.ToDate), opt(f.CategoryID), f.Uncategorized, opt(f.LinkedAccountID), pending)
}

// GetTransactionByID retrieves a transaction with its category.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// AssignCategory sets the transaction's category, or clears it when categoryID is nil.
func (s *transactionService) AssignCategory(ctx context.Context, transactionID string, categoryID *string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	if err := s.db.WithContext(ctx).Model(&models.Transaction{Base: transaction.Base}).
		Update("category_id", categoryID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.cache.Invalidate(ctx, cache.PrefixTransactions, cache.PrefixCashFlow)

	return s.GetTransactionByID(ctx, transactionID)
}

// MergeTransactions upserts the batch on external_id inside one database
// transaction. Provider-owned columns are overwritten; id, created_at and
// category_id of existing rows are left alone.
func (s *transactionService) MergeTransactions(ctx context.Context, txns []models.Transaction) error {
	batch := dedupeByExternalID(txns)
	if len(batch) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns(models.MergeColumns),
			}).
			CreateInBatches(&batch, mergeBatchSize).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Invalidate(ctx, cache.PrefixTransactions, cache.PrefixCashFlow)
	return nil
}

// dedupeByExternalID keeps the last record for each external id, preserving
// first-seen order. Postgres rejects an upsert that touches the same row twice.
func dedupeByExternalID(txns []models.Transaction) []models.Transaction {
	index := make(map[string]int, len(txns))
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if i, ok := index[t.ExternalID]; ok {
			out[i] = t
			continue
		}
		index[t.ExternalID] = len(out)
		out = append(out, t)
	}
	return out
}
