package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// DelinquencyConfig carries the policy values for the sweep. Both are
// deployment configuration, never hard-coded.
type DelinquencyConfig struct {
	// DailyPenaltyRate is the late-fee rate per day on an entry's
	// outstanding amount, as a fraction (0.001 = 0.1%/day).
	DailyPenaltyRate decimal.Decimal
	// DefaultThresholdMonths is the number of overdue installments beyond
	// which an account defaults.
	DefaultThresholdMonths int
}

// DelinquencyUseCase re-evaluates overdue state and penalty accrual for all
// active accounts against a reference date.
type DelinquencyUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	scheduleRepo ScheduleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cfg          DelinquencyConfig
}

// NewDelinquencyUseCase creates a new DelinquencyUseCase.
func NewDelinquencyUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	scheduleRepo ScheduleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cfg DelinquencyConfig,
) *DelinquencyUseCase {
	return &DelinquencyUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cfg:          cfg,
	}
}

// SweepReport summarizes one delinquency run.
type SweepReport struct {
	AsOf              time.Time `json:"as_of"`
	AccountsChecked   int       `json:"accounts_checked"`
	AccountsOverdue   int       `json:"accounts_overdue"`
	AccountsDefaulted int       `json:"accounts_defaulted"`
	EntriesOverdue    int       `json:"entries_overdue"`
}

// RunSweep re-evaluates every active account. Each account is processed in
// its own transaction so one failure does not poison the whole run.
func (uc *DelinquencyUseCase) RunSweep(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	ids, err := uc.accountRepo.ListActiveIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{AsOf: asOf}

	for _, id := range ids {
		overdue, defaulted, err := uc.sweepAccount(ctx, id, asOf)
		if err != nil {
			return report, err
		}

		report.AccountsChecked++
		if overdue > 0 {
			report.AccountsOverdue++
			report.EntriesOverdue += overdue
		}
		if defaulted {
			report.AccountsDefaulted++
		}
	}

	return report, nil
}

func (uc *DelinquencyUseCase) sweepAccount(ctx context.Context, accountID string, asOf time.Time) (overdueEntries int, defaulted bool, err error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return 0, false, err
	}

	if account.Status != domain.AccountActive {
		return 0, false, tx.Commit(ctx)
	}

	entries, err := uc.scheduleRepo.ListByAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return 0, false, err
	}

	for _, e := range entries {
		if !e.Allocatable() || e.DueDate.After(asOf) {
			continue
		}

		days := daysBetween(e.DueDate, asOf)

		// The fee is recomputed from scratch on every run rather than
		// incrementally accumulated, so missed runs cause no drift. Fees
		// already collected stay collected.
		outstanding := e.OutstandingInterest() + e.OutstandingPrincipal()
		fee := mulDays(outstanding, uc.cfg.DailyPenaltyRate, days)
		if fee < e.FeePaid {
			fee = e.FeePaid
		}

		e.DaysOverdue = days
		e.LateFeeAccrued = fee
		e.Status = domain.EntryOverdue
		e.UpdatedAt = asOf

		if err := uc.scheduleRepo.Update(ctx, tx, e); err != nil {
			return 0, false, err
		}

		overdueEntries++
	}

	// Overdue aggregates on the account come out of the shared recompute, so
	// the sweep and the allocator can never disagree on them.
	refreshAccountSchedule(account, entries, asOf)

	if overdueEntries > uc.cfg.DefaultThresholdMonths {
		if err := account.Transition(domain.AccountDefaulted, asOf); err != nil {
			return 0, false, err
		}
		defaulted = true

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeLoanDefaulted,
			Payload: map[string]any{
				"account_id":     account.ID,
				"overdue_months": account.OverdueMonths,
				"overdue_amount": account.OverdueAmount,
			},
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return 0, false, err
		}
	}

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}

	return overdueEntries, defaulted, nil
}

// daysBetween counts whole days from due to asOf, never negative.
func daysBetween(due, asOf time.Time) int {
	d := int(asOf.Sub(due).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// mulDays computes round-half-up(amount * rate * days) in minor units.
func mulDays(amount int64, rate decimal.Decimal, days int) int64 {
	return decimal.NewFromInt(amount).
		Mul(rate).
		Mul(decimal.NewFromInt(int64(days))).
		Round(0).
		IntPart()
}
