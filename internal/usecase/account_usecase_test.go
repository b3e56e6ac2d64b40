package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/internal/usecase/mocks"
)

func newAccountUseCase(accountRepo *mocks.MockAccountRepository, ledgerRepo usecase.LedgerRepository, cache usecase.Cache) *usecase.AccountUseCase {
	return usecase.NewAccountUseCase(
		accountRepo,
		mocks.NewMockScheduleRepository(),
		mocks.NewMockTransactionRepository(),
		ledgerRepo,
		cache,
	)
}

func TestAccountUseCase_GetSummary_CachesResult(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	cache := mocks.NewMockCache()
	uc := newAccountUseCase(accountRepo, nil, cache)

	account := &domain.LoanAccount{
		ID:               "acc-1",
		PrincipalAmount:  12_000_000,
		PrincipalBalance: 11_000_000,
		Status:           domain.AccountActive,
	}
	if err := accountRepo.Create(context.Background(), nil, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	first, err := uc.GetSummary(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PrincipalBalance != 11_000_000 {
		t.Errorf("expected balance 11000000, got %d", first.PrincipalBalance)
	}

	// A repo change without invalidation is not visible: the summary is
	// served from cache.
	account.PrincipalBalance = 10_000_000
	second, err := uc.GetSummary(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.PrincipalBalance != 11_000_000 {
		t.Errorf("expected cached balance 11000000, got %d", second.PrincipalBalance)
	}

	uc.InvalidateSummary(context.Background(), "acc-1")
	third, err := uc.GetSummary(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.PrincipalBalance != 10_000_000 {
		t.Errorf("expected fresh balance 10000000, got %d", third.PrincipalBalance)
	}
}

func TestAccountUseCase_GetSummary_CacheFailureFallsThrough(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	cache := mocks.NewMockCache()
	cache.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("redis unavailable")
	}

	uc := newAccountUseCase(accountRepo, nil, cache)
	if err := accountRepo.Create(context.Background(), nil, &domain.LoanAccount{ID: "acc-1", Status: domain.AccountActive}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	summary, err := uc.GetSummary(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AccountID != "acc-1" {
		t.Errorf("expected acc-1, got %s", summary.AccountID)
	}
}

func TestAccountUseCase_GetSummary_UnknownAccount(t *testing.T) {
	uc := newAccountUseCase(mocks.NewMockAccountRepository(), nil, nil)

	if _, err := uc.GetSummary(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name       string
		mismatched int
		err        error
		consistent bool
	}{
		{name: "consistent ledger", mismatched: 0, consistent: true},
		{name: "two drifted accounts", mismatched: 2, consistent: false},
		{name: "query failure", err: errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
			ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(tt.mismatched, tt.err)

			uc := newAccountUseCase(mocks.NewMockAccountRepository(), ledgerRepo, nil)
			result, err := uc.CheckConsistency(context.Background())

			if tt.err != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Consistent != tt.consistent {
				t.Errorf("expected consistent=%v, got %v", tt.consistent, result.Consistent)
			}
			if result.Mismatched != tt.mismatched {
				t.Errorf("expected %d mismatched, got %d", tt.mismatched, result.Mismatched)
			}
		})
	}
}

func TestAccountUseCase_ListTransactions_ClampsLimit(t *testing.T) {
	txnRepo := mocks.NewMockTransactionRepository()
	var gotLimit int
	txnRepo.ListByAccountFunc = func(ctx context.Context, accountID string, limit, offset int) ([]*domain.RepaymentTransaction, error) {
		gotLimit = limit
		return nil, nil
	}

	uc := usecase.NewAccountUseCase(
		mocks.NewMockAccountRepository(),
		mocks.NewMockScheduleRepository(),
		txnRepo,
		nil,
		nil,
	)

	if _, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{AccountID: "acc-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("expected default limit 20, got %d", gotLimit)
	}

	if _, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{AccountID: "acc-1", Limit: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("expected clamped limit 100, got %d", gotLimit)
	}
}
