package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/loanledger/internal/domain"
)

// PaymentUseCase applies repayment transactions to an account's outstanding
// schedule. All mutations for one payment happen inside a single database
// transaction holding a row lock on the account, so two payments against the
// same account never interleave.
type PaymentUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	scheduleRepo ScheduleRepository
	txnRepo      TransactionRepository
	appRepo      ApplicationRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      TxRetrier
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	scheduleRepo ScheduleRepository,
	txnRepo TransactionRepository,
	appRepo ApplicationRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		scheduleRepo: scheduleRepo,
		txnRepo:      txnRepo,
		appRepo:      appRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
	}
}

// WithRetrier enables retry of the payment transaction on transient database
// failures. Safe because a rolled-back attempt leaves no state behind and the
// transaction number makes a second commit impossible.
func (uc *PaymentUseCase) WithRetrier(r TxRetrier) *PaymentUseCase {
	uc.retrier = r
	return uc
}

// ApplyPaymentInput represents one incoming repayment.
type ApplyPaymentInput struct {
	AccountID        string
	TransactionNo    string
	Amount           int64
	PaymentDate      time.Time
	Method           string
	BankReference    string
	TargetEntryIndex *int
}

// ApplyPayment allocates a payment across the schedule via the fee, penalty,
// interest, principal waterfall. Either every entry and balance mutation
// commits, or none does.
func (uc *PaymentUseCase) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*domain.RepaymentTransaction, error) {
	if input.Amount <= 0 || input.Amount > MaxPaymentAmount {
		return nil, domain.ErrInvalidAmount
	}

	// Idempotency: a replay of a committed transaction returns the original
	// result and changes nothing. The same number with different parameters
	// is a hard duplicate.
	if existing, err := uc.txnRepo.GetByNo(ctx, input.TransactionNo); err == nil {
		if existing.Status == domain.TransactionSuccess {
			if existing.AccountID != input.AccountID || existing.Amount != input.Amount {
				return nil, domain.ErrDuplicateTransaction
			}
			return existing, nil
		}
		// Prior attempt never reached success; reprocess under the same number.
	} else if err != domain.ErrTransactionNotFound {
		return nil, err
	}

	if uc.retrier != nil {
		var txn *domain.RepaymentTransaction
		err := uc.retrier.Retry(ctx, func() error {
			var rerr error
			txn, rerr = uc.applyPaymentOnce(ctx, input)
			return rerr
		})
		return txn, err
	}

	return uc.applyPaymentOnce(ctx, input)
}

func (uc *PaymentUseCase) applyPaymentOnce(ctx context.Context, input ApplyPaymentInput) (*domain.RepaymentTransaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.Payable() {
		return nil, domain.ErrAccountNotPayable
	}

	entries, err := uc.scheduleRepo.ListByAccountForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].DueDate.Before(entries[j].DueDate) })

	var total domain.Breakdown
	remainder := input.Amount
	touched := make([]*domain.ScheduleEntry, 0, 4)

	allocate := func(e *domain.ScheduleEntry) {
		if remainder <= 0 || !e.Allocatable() {
			return
		}
		b := e.ApplyWaterfall(remainder, input.PaymentDate)
		if b.Total() > 0 {
			remainder -= b.Total()
			total.Add(b)
			touched = append(touched, e)
		}
	}

	// An explicitly targeted entry is served first.
	if input.TargetEntryIndex != nil {
		var target *domain.ScheduleEntry
		for _, e := range entries {
			if e.Index == *input.TargetEntryIndex {
				target = e
				break
			}
		}
		if target == nil {
			return nil, domain.ErrScheduleEntryNotFound
		}
		allocate(target)
	}

	// Then the outstanding entries in strict due-date order.
	for _, e := range entries {
		if e.DueDate.After(input.PaymentDate) {
			break
		}
		allocate(e)
	}

	// Remaining money prepays principal on future entries, earliest first.
	if remainder > 0 {
		for _, e := range entries {
			if remainder <= 0 {
				break
			}
			if !e.DueDate.After(input.PaymentDate) || !e.Allocatable() {
				continue
			}

			applied := e.OutstandingPrincipal()
			if applied > remainder {
				applied = remainder
			}
			if applied == 0 {
				continue
			}

			e.PrincipalPaid += applied
			e.PaidAmount += applied
			e.UpdatedAt = input.PaymentDate
			if e.Settled() {
				e.Status = domain.EntryPaid
			} else {
				e.Status = domain.EntryPartial
			}

			remainder -= applied
			total.Principal += applied
			touched = append(touched, e)
		}
	}

	// Money with no outstanding target must be rejected, never absorbed.
	if remainder > 0 {
		return nil, domain.ErrOverpayment
	}

	for _, e := range touched {
		if err := uc.scheduleRepo.Update(ctx, tx, e); err != nil {
			return nil, err
		}
	}

	account.PrincipalBalance -= total.Principal
	account.TotalPaid += input.Amount
	refreshAccountSchedule(account, entries, input.PaymentDate)

	txn := &domain.RepaymentTransaction{
		TransactionNo:    input.TransactionNo,
		AccountID:        account.ID,
		TargetEntryIndex: input.TargetEntryIndex,
		Type:             domain.TransactionRepayment,
		Amount:           input.Amount,
		PaymentDate:      input.PaymentDate,
		Method:           input.Method,
		PrincipalApplied: total.Principal,
		InterestApplied:  total.Interest,
		PenaltyApplied:   total.Penalty,
		FeesApplied:      total.Fees,
		Status:           domain.TransactionSuccess,
		BankReference:    input.BankReference,
		CreatedAt:        time.Now().UTC(),
	}

	if err := uc.checkInvariants(account, entries, txn); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.settleIfRepaid(ctx, tx, account, entries, input.PaymentDate); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.emitPaymentEvent(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// EarlyRepaymentInput represents a full early payoff request.
type EarlyRepaymentInput struct {
	AccountID     string
	TransactionNo string
	PayoffDate    time.Time
	Method        string
	BankReference string
}

// EarlyRepayment settles the whole loan at once. Interest on periods after
// the payoff date is forgiven; fees, penalties and interest already due stay
// owed. The account closes in the same transaction.
func (uc *PaymentUseCase) EarlyRepayment(ctx context.Context, input EarlyRepaymentInput) (*domain.RepaymentTransaction, error) {
	if existing, err := uc.txnRepo.GetByNo(ctx, input.TransactionNo); err == nil {
		if existing.Status == domain.TransactionSuccess {
			if existing.AccountID != input.AccountID {
				return nil, domain.ErrDuplicateTransaction
			}
			return existing, nil
		}
	} else if err != domain.ErrTransactionNotFound {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.Payable() {
		return nil, domain.ErrAccountNotPayable
	}

	entries, err := uc.scheduleRepo.ListByAccountForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	var total domain.Breakdown
	var forgivenInterest int64

	for _, e := range entries {
		if !e.Allocatable() {
			continue
		}

		if e.DueDate.After(input.PayoffDate) {
			// No interest is owed on foreclosed-early periods.
			forgivenInterest += e.OutstandingInterest()
			e.InterestDue = e.InterestPaid
			e.TotalDue = e.PrincipalDue + e.InterestDue
		}

		b := e.ApplyWaterfall(e.Outstanding(), input.PayoffDate)
		total.Add(b)

		if err := uc.scheduleRepo.Update(ctx, tx, e); err != nil {
			return nil, err
		}
	}

	if total.Total() == 0 {
		return nil, domain.ErrOverpayment
	}

	now := time.Now().UTC()

	account.PrincipalBalance -= total.Principal
	account.TotalPaid += total.Total()
	account.TotalInterestAccrued -= forgivenInterest
	refreshAccountSchedule(account, entries, input.PayoffDate)

	txn := &domain.RepaymentTransaction{
		TransactionNo:    input.TransactionNo,
		AccountID:        account.ID,
		Type:             domain.TransactionEarlyPayoff,
		Amount:           total.Total(),
		PaymentDate:      input.PayoffDate,
		Method:           input.Method,
		PrincipalApplied: total.Principal,
		InterestApplied:  total.Interest,
		PenaltyApplied:   total.Penalty,
		FeesApplied:      total.Fees,
		Status:           domain.TransactionSuccess,
		BankReference:    input.BankReference,
		CreatedAt:        now,
	}

	if err := uc.checkInvariants(account, entries, txn); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.settleIfRepaid(ctx, tx, account, entries, input.PayoffDate); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.emitPaymentEvent(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// checkInvariants runs the defensive post-mutation checks. A failure here
// means a bug, and the surrounding transaction is rolled back entirely.
func (uc *PaymentUseCase) checkInvariants(account *domain.LoanAccount, entries []*domain.ScheduleEntry, txn *domain.RepaymentTransaction) error {
	if account.PrincipalBalance < 0 {
		return domain.ErrInvariantViolation
	}

	if err := txn.Validate(); err != nil {
		return err
	}

	var principalPaid, waivedPrincipal int64
	for _, e := range entries {
		principalPaid += e.PrincipalPaid
		if e.Status == domain.EntryWaived {
			waivedPrincipal += e.OutstandingPrincipal()
		}
		if e.PrincipalPaid > e.PrincipalDue || e.InterestPaid > e.InterestDue {
			return domain.ErrInvariantViolation
		}
	}

	if account.PrincipalAmount-principalPaid-waivedPrincipal != account.PrincipalBalance {
		return domain.ErrInvariantViolation
	}

	return nil
}

// settleIfRepaid closes the account once nothing remains outstanding, and
// completes the underlying application.
func (uc *PaymentUseCase) settleIfRepaid(ctx context.Context, tx Transaction, account *domain.LoanAccount, entries []*domain.ScheduleEntry, at time.Time) error {
	if account.PrincipalBalance != 0 {
		return nil
	}

	for _, e := range entries {
		if e.Allocatable() {
			return nil
		}
	}

	if err := account.Transition(domain.AccountClosed, at); err != nil {
		return err
	}

	app, err := uc.appRepo.GetByIDForUpdate(ctx, tx, account.ApplicationID)
	if err != nil {
		return err
	}
	if err := app.Transition(domain.ApplicationCompleted, "system", at); err != nil {
		return err
	}
	if err := uc.appRepo.Update(ctx, tx, app); err != nil {
		return err
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeLoanClosed,
		Payload: map[string]any{
			"account_id": account.ID,
			"total_paid": account.TotalPaid,
			"closed_at":  at.Format(time.RFC3339),
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (uc *PaymentUseCase) emitPaymentEvent(ctx context.Context, tx Transaction, txn *domain.RepaymentTransaction) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.TransactionNo,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentApplied,
		Payload: map[string]any{
			"transaction_no":    txn.TransactionNo,
			"account_id":        txn.AccountID,
			"amount":            txn.Amount,
			"principal_applied": txn.PrincipalApplied,
			"interest_applied":  txn.InterestApplied,
			"penalty_applied":   txn.PenaltyApplied,
			"fees_applied":      txn.FeesApplied,
		},
		CreatedAt: time.Now().UTC(),
	})
}
