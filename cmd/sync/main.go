// Command sync runs one sync of every linked account. With CASHDASH_API_URL set
// it triggers the server's pipeline endpoint; otherwise it syncs in-process
// against the database. It exits 2 when any account failed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"cashdash/internal/aggregator"
	"cashdash/internal/cache"
	"cashdash/internal/client"
	"cashdash/internal/config"
	"cashdash/internal/database"
	"cashdash/internal/logger"
	"cashdash/internal/models"
	"cashdash/internal/secret"
	"cashdash/internal/services"
)

// syncFunc performs one sync run and reports the outcome.
type syncFunc func(ctx context.Context) (*client.SyncResult, error)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.Named("sync")

	var (
		run     syncFunc
		closeDB = func() error { return nil }
	)
	if cfg.APIURL != "" {
		run = remoteSync(cfg)
		log.Infow("triggering remote sync", "api_url", cfg.APIURL)
	} else {
		run, closeDB, err = localSync(cfg)
		if err != nil {
			log.Errorw("sync setup failed", "error", err)
			logger.Sync()
			os.Exit(1)
		}
	}

	code := execute(context.Background(), run, log)
	if err := closeDB(); err != nil {
		log.Warnw("closing database failed", "error", err)
	}
	logger.Sync()
	os.Exit(code)
}

// execute runs one sync and maps its outcome to an exit code.
func execute(ctx context.Context, run syncFunc, log *zap.SugaredLogger) int {
	start := time.Now()
	result, err := run(ctx)
	if err != nil {
		log.Errorw("sync run failed", "error", err)
		return 1
	}

	log.Infow("sync run completed",
		"transaction_count", result.TransactionCount,
		"accounts_synced", result.AccountsSynced,
		"failed_accounts", len(result.Failures),
		"duration", time.Since(start).String(),
	)
	for _, f := range result.Failures {
		log.Warnw("account sync failed",
			"linked_account_id", f.LinkedAccountID,
			"item_id", f.ItemID,
			"stage", f.Stage,
		)
	}

	if len(result.Failures) > 0 {
		return 2
	}
	return 0
}

func remoteSync(cfg *config.Config) syncFunc {
	// A full sync can take a while on the server side, so allow well beyond one provider call.
	httpClient := &http.Client{Timeout: 10 * cfg.RequestTimeout}
	c := client.NewCashdashClient(cfg.APIURL, cfg.PipelineAPIKey, httpClient)
	return c.TriggerSync
}

func localSync(cfg *config.Config) (syncFunc, func() error, error) {
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	sealer, err := secret.NewSealer(cfg.CredentialKey)
	if err != nil {
		_ = dbManager.Close()
		return nil, nil, fmt.Errorf("invalid CREDENTIAL_KEY: %w", err)
	}

	provider := aggregator.NewPlaidProvider(aggregator.PlaidConfig{
		ClientID:     cfg.PlaidClientID,
		Secret:       cfg.PlaidSecret,
		Environment:  cfg.PlaidEnv,
		CountryCodes: cfg.PlaidCountryCodes,
		Timeout:      cfg.RequestTimeout,
		Retry:        aggregator.RetryPolicy{MaxRetries: cfg.ProviderRetries, BaseDelay: cfg.ProviderBaseDelay},
	})

	// Share the server's cache so a local run still drops stale dashboard reads.
	readCache := cache.Open(context.Background(), cfg.RedisURL, cfg.CacheTTL)

	db := dbManager.DB()
	syncService := services.NewSyncService(db, provider, sealer,
		services.NewTransactionService(db, readCache),
		services.NewSnapshotService(db, readCache),
		services.SyncOptions{WindowDays: cfg.SyncWindowDays, Concurrency: cfg.SyncConcurrency},
	)

	run := func(ctx context.Context) (*client.SyncResult, error) {
		summary, err := syncService.SyncAll(ctx, models.NewDate(time.Now()))
		if err != nil {
			return nil, err
		}
		return toResult(summary), nil
	}
	return run, dbManager.Close, nil
}

func toResult(summary *services.SyncSummary) *client.SyncResult {
	result := &client.SyncResult{
		Message:          summary.Message,
		TransactionCount: summary.TransactionCount,
		AccountsSynced:   summary.AccountsSynced,
		FailedAccounts:   len(summary.Failures),
	}
	for _, f := range summary.Failures {
		result.Failures = append(result.Failures, client.SyncFailure{
			LinkedAccountID: f.LinkedAccountID,
			ItemID:          f.ItemID,
			Stage:           f.Stage,
		})
	}
	return result
}
