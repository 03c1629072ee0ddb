package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"cashdash/internal/aggregator"
	apperrors "cashdash/internal/errors"
	"cashdash/internal/logger"
	"cashdash/internal/models"
	"cashdash/internal/secret"
)

// SyncOptions tunes the sync orchestrator.
type SyncOptions struct {
	WindowDays  int
	Concurrency int
}

// syncService pulls each linked account's trailing transaction window and
// current balances, merging them into the ledger and the snapshot store.
type syncService struct {
	db           *gorm.DB
	provider     aggregator.Provider
	sealer       *secret.Sealer
	transactions TransactionServicer
	snapshots    SnapshotServicer
	opts         SyncOptions
	log          *zap.SugaredLogger
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(
	db *gorm.DB,
	provider aggregator.Provider,
	sealer *secret.Sealer,
	transactions TransactionServicer,
	snapshots SnapshotServicer,
	opts SyncOptions,
) SyncServicer {
	if opts.WindowDays < 1 {
		opts.WindowDays = 90
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &syncService{
		db:           db,
		provider:     provider,
		sealer:       sealer,
		transactions: transactions,
		snapshots:    snapshots,
		opts:         opts,
		log:          logger.Named("sync"),
	}
}

type accountResult struct {
	fetched int
	failure *AccountFailure
}

// SyncAll syncs every linked account for the window ending on today.
// A failing account is recorded and skipped; only failing to list the
// accounts fails the whole run.
func (s *syncService) SyncAll(ctx context.Context, today models.Date) (*SyncSummary, error) {
	if _, err := models.ParseDate(today.String()); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	var accounts []models.LinkedAccount
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&accounts).Error; err != nil {
		s.log.Errorw("Failed to list linked accounts", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrSyncFailed, err)
	}

	start := today.AddDays(-s.opts.WindowDays)
	results := make([]accountResult, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i := range accounts {
		g.Go(func() error {
			results[i] = s.syncAccount(ctx, &accounts[i], start, today)
			return nil
		})
	}
	_ = g.Wait()

	summary := &SyncSummary{Failures: []AccountFailure{}}
	for _, r := range results {
		summary.TransactionCount += r.fetched
		if r.failure != nil {
			summary.Failures = append(summary.Failures, *r.failure)
			continue
		}
		summary.AccountsSynced++
	}
	summary.Message = fmt.Sprintf("Synced %d transactions", summary.TransactionCount)

	s.log.Infow("Sync finished",
		"accounts", len(accounts),
		"accounts_synced", summary.AccountsSynced,
		"failed_accounts", len(summary.Failures),
		"transaction_count", summary.TransactionCount,
		"window_start", start,
		"window_end", today,
	)
	return summary, nil
}

func (s *syncService) syncAccount(ctx context.Context, account *models.LinkedAccount, start, end models.Date) accountResult {
	fail := func(fetched int, stage string, err error) accountResult {
		s.log.Errorw("Account sync failed",
			"linked_account_id", account.ID,
			"item_id", account.ItemID,
			"fetched", fetched,
			"stage", stage,
			"error", err,
		)
		return accountResult{
			fetched: fetched,
			failure: &AccountFailure{LinkedAccountID: account.ID, ItemID: account.ItemID, Stage: stage, Err: err},
		}
	}

	accessToken, err := s.sealer.Open(account.AccessCredential)
	if err != nil {
		return fail(0, StageCredential, err)
	}

	fetched, err := s.provider.GetTransactions(ctx, accessToken, start, end)
	if err != nil {
		return fail(0, StageTransactions, err)
	}

	rows := make([]models.Transaction, 0, len(fetched))
	for _, t := range fetched {
		rows = append(rows, toLedgerTransaction(account.ID, t))
	}
	if err := s.transactions.MergeTransactions(ctx, rows); err != nil {
		return fail(0, StageMerge, err)
	}

	balances, err := s.provider.GetBalances(ctx, accessToken)
	if err != nil {
		return fail(len(fetched), StageBalances, err)
	}
	if err := s.snapshots.UpsertSnapshot(ctx, account.ID, end, aggregator.SumCurrent(balances)); err != nil {
		return fail(len(fetched), StageSnapshot, err)
	}

	s.log.Infow("Account synced",
		"linked_account_id", account.ID,
		"item_id", account.ItemID,
		"fetched", len(fetched),
	)
	return accountResult{fetched: len(fetched)}
}

func toLedgerTransaction(linkedAccountID string, t aggregator.Transaction) models.Transaction {
	txn := models.Transaction{
		ExternalID:      t.ExternalID,
		LinkedAccountID: linkedAccountID,
		AccountID:       t.AccountID,
		Amount:          t.Amount.Round(2),
		Date:            t.Date,
		Name:            t.Name,
		Pending:         t.Pending,
	}
	if t.MerchantName != nil && *t.MerchantName != "" {
		m := *t.MerchantName
		txn.MerchantName = &m
	}
	return txn
}
