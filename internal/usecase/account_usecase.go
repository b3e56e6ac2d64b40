package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/loanledger/internal/domain"
)

// AccountUseCase serves read projections: account summary, schedule, and
// transaction history. The summary is cached and invalidated on mutation.
type AccountUseCase struct {
	accountRepo  AccountRepository
	scheduleRepo ScheduleRepository
	txnRepo      TransactionRepository
	ledgerRepo   LedgerRepository
	cache        Cache
}

// NewAccountUseCase creates a new AccountUseCase. The cache may be nil, in
// which case summaries are always computed.
func NewAccountUseCase(
	accountRepo AccountRepository,
	scheduleRepo ScheduleRepository,
	txnRepo TransactionRepository,
	ledgerRepo LedgerRepository,
	cache Cache,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo:  accountRepo,
		scheduleRepo: scheduleRepo,
		txnRepo:      txnRepo,
		ledgerRepo:   ledgerRepo,
		cache:        cache,
	}
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.LoanAccount, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetSchedule retrieves the full ordered schedule for an account.
func (uc *AccountUseCase) GetSchedule(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return uc.scheduleRepo.ListByAccount(ctx, accountID)
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransactions lists an account's repayment transactions.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.RepaymentTransaction, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.txnRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// AccountSummary is the read model consumed by the UI and reporting.
type AccountSummary struct {
	AccountID         string     `json:"account_id"`
	Status            string     `json:"status"`
	PrincipalAmount   int64      `json:"principal_amount"`
	PrincipalBalance  int64      `json:"principal_balance"`
	TotalPaid         int64      `json:"total_paid"`
	TotalInterest     int64      `json:"total_interest"`
	RemainingPeriods  int        `json:"remaining_periods"`
	NextPaymentAmount int64      `json:"next_payment_amount"`
	NextPaymentDate   *time.Time `json:"next_payment_date,omitempty"`
	OverdueMonths     int        `json:"overdue_months"`
	OverdueAmount     int64      `json:"overdue_amount"`
}

// GetSummary returns the account summary, from cache when fresh.
func (uc *AccountUseCase) GetSummary(ctx context.Context, accountID string) (*AccountSummary, error) {
	key := summaryCacheKey(accountID)

	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, key); err == nil {
			var summary AccountSummary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	summary := &AccountSummary{
		AccountID:         account.ID,
		Status:            string(account.Status),
		PrincipalAmount:   account.PrincipalAmount,
		PrincipalBalance:  account.PrincipalBalance,
		TotalPaid:         account.TotalPaid,
		TotalInterest:     account.TotalInterestAccrued,
		RemainingPeriods:  account.RemainingPeriods,
		NextPaymentAmount: account.NextPaymentAmount,
		NextPaymentDate:   account.NextPaymentDate,
		OverdueMonths:     account.OverdueMonths,
		OverdueAmount:     account.OverdueAmount,
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = uc.cache.Set(ctx, key, string(raw), SummaryCacheTTL)
		}
	}

	return summary, nil
}

// InvalidateSummary drops the cached summary after a mutation.
func (uc *AccountUseCase) InvalidateSummary(ctx context.Context, accountID string) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCacheKey(accountID))
	}
}

// ConsistencyResult reports the ledger-wide invariant check.
type ConsistencyResult struct {
	Consistent bool `json:"consistent"`
	Mismatched int  `json:"mismatched_accounts"`
}

// CheckConsistency verifies balance = principal - sum(principal applied)
// across every account.
func (uc *AccountUseCase) CheckConsistency(ctx context.Context) (*ConsistencyResult, error) {
	mismatched, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsistencyResult{
		Consistent: mismatched == 0,
		Mismatched: mismatched,
	}, nil
}

func summaryCacheKey(accountID string) string {
	return "account:summary:" + accountID
}
