package main

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"cashdash/internal/client"
	"cashdash/internal/services"
)

func TestExecute_ExitCodes(t *testing.T) {
	log := zap.NewNop().Sugar()

	tests := []struct {
		name string
		run  syncFunc
		want int
	}{
		{
			name: "clean_run",
			run: func(context.Context) (*client.SyncResult, error) {
				return &client.SyncResult{TransactionCount: 3, AccountsSynced: 1}, nil
			},
			want: 0,
		},
		{
			name: "partial_failure",
			run: func(context.Context) (*client.SyncResult, error) {
				return &client.SyncResult{AccountsSynced: 1, Failures: []client.SyncFailure{{ItemID: "item-2", Stage: "balances"}}}, nil
			},
			want: 2,
		},
		{
			name: "run_error",
			run: func(context.Context) (*client.SyncResult, error) {
				return nil, errors.New("connection refused")
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := execute(context.Background(), tt.run, log); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestToResult(t *testing.T) {
	summary := &services.SyncSummary{
		TransactionCount: 5,
		AccountsSynced:   2,
		Message:          "Synced 5 transactions",
		Failures: []services.AccountFailure{
			{LinkedAccountID: "la-3", ItemID: "item-3", Stage: services.StageCredential, Err: errors.New("bad seal")},
		},
	}

	got := toResult(summary)

	if got.TransactionCount != 5 || got.AccountsSynced != 2 || got.FailedAccounts != 1 {
		t.Errorf("unexpected counts %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].Stage != "credential" || got.Failures[0].ItemID != "item-3" {
		t.Errorf("unexpected failures %+v", got.Failures)
	}
}
