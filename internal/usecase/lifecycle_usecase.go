package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// LifecycleUseCase governs application and account status transitions and
// owns creation of accounts and schedules on disbursement.
type LifecycleUseCase struct {
	txManager    TransactionManager
	productRepo  ProductRepository
	appRepo      ApplicationRepository
	accountRepo  AccountRepository
	scheduleRepo ScheduleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
}

// NewLifecycleUseCase creates a new LifecycleUseCase.
func NewLifecycleUseCase(
	txManager TransactionManager,
	productRepo ProductRepository,
	appRepo ApplicationRepository,
	accountRepo AccountRepository,
	scheduleRepo ScheduleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txManager:    txManager,
		productRepo:  productRepo,
		appRepo:      appRepo,
		accountRepo:  accountRepo,
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
	}
}

// CreateApplicationInput represents input for creating a loan application.
type CreateApplicationInput struct {
	BorrowerID      string
	ProductID       string
	RequestedAmount int64
	CollateralDesc  string
	CollateralValue int64
}

// CreateApplication creates a new application in pending status.
func (uc *LifecycleUseCase) CreateApplication(ctx context.Context, input CreateApplicationInput) (*domain.LoanApplication, error) {
	if input.RequestedAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.ErrProductNotFound
	}

	now := time.Now().UTC()
	app := &domain.LoanApplication{
		ID:              uc.idGen.Generate(),
		BorrowerID:      input.BorrowerID,
		ProductID:       input.ProductID,
		RequestedAmount: input.RequestedAmount,
		CollateralDesc:  input.CollateralDesc,
		CollateralValue: input.CollateralValue,
		Status:          domain.ApplicationPending,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.ApplicationPending,
			Timestamp: now,
			Actor:     input.BorrowerID,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// GetApplication retrieves an application with its status history.
func (uc *LifecycleUseCase) GetApplication(ctx context.Context, id string) (*domain.LoanApplication, error) {
	return uc.appRepo.GetByID(ctx, id)
}

// Submit moves a pending application to submitted.
func (uc *LifecycleUseCase) Submit(ctx context.Context, id, actor string) (*domain.LoanApplication, error) {
	return uc.transitionApplication(ctx, id, domain.ApplicationSubmitted, actor, nil)
}

// StartReview moves a submitted application to reviewing.
func (uc *LifecycleUseCase) StartReview(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error) {
	if reviewer == "" {
		return nil, domain.ErrInvalidTransition
	}
	return uc.transitionApplication(ctx, id, domain.ApplicationReviewing, reviewer, nil)
}

// Reject rejects an application under review.
func (uc *LifecycleUseCase) Reject(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error) {
	return uc.transitionApplication(ctx, id, domain.ApplicationRejected, reviewer, func(tx Transaction, app *domain.LoanApplication) error {
		return uc.emitApplicationEvent(ctx, tx, app, domain.EventTypeApplicationRejected)
	})
}

// Cancel cancels an application in any pre-disbursement state.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, id, actor string) (*domain.LoanApplication, error) {
	return uc.transitionApplication(ctx, id, domain.ApplicationCancelled, actor, nil)
}

// ApproveInput represents reviewer-approved terms.
type ApproveInput struct {
	ApplicationID string
	Reviewer      string
	Amount        int64
	Rate          decimal.Decimal
	TermMonths    int
}

// Approve validates the terms against the product band and LTV cap, then
// records them on the application.
func (uc *LifecycleUseCase) Approve(ctx context.Context, input ApproveInput) (*domain.LoanApplication, error) {
	if input.Reviewer == "" {
		return nil, domain.ErrInvalidTransition
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	app, err := uc.appRepo.GetByIDForUpdate(ctx, tx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, app.ProductID)
	if err != nil {
		return nil, err
	}

	terms := domain.ApprovedTerms{Amount: input.Amount, Rate: input.Rate, TermMonths: input.TermMonths}
	if err := product.ValidateApprovedTerms(terms, app.RequestedAmount, app.CollateralValue); err != nil {
		return nil, err
	}

	if err := app.Approve(terms, input.Reviewer, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.appRepo.Update(ctx, tx, app); err != nil {
		return nil, err
	}

	if err := uc.emitApplicationEvent(ctx, tx, app, domain.EventTypeApplicationApproved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

// DisburseInput represents input for disbursing an approved application.
// The terms must match what the application was approved with; the check
// guards against stale admin consoles re-submitting outdated values.
type DisburseInput struct {
	ApplicationID string
	Amount        int64
	Rate          decimal.Decimal
	TermMonths    int
	StartDate     time.Time
	Actor         string
}

// Disburse activates an approved application: it generates the full
// amortization schedule and creates the loan account in one atomic
// operation. Re-invoking with an already-disbursed application is a no-op
// returning the existing account.
func (uc *LifecycleUseCase) Disburse(ctx context.Context, input DisburseInput) (*domain.LoanAccount, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	app, err := uc.appRepo.GetByIDForUpdate(ctx, tx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	// Idempotent per application.
	if app.Status == domain.ApplicationActive || app.Status == domain.ApplicationCompleted {
		return uc.accountRepo.GetByApplicationID(ctx, app.ID)
	}

	if app.Status != domain.ApplicationApproved ||
		app.ApprovedAmount == nil || app.ApprovedRate == nil || app.ApprovedTerm == nil {
		return nil, domain.ErrNotApproved
	}

	if input.Amount != *app.ApprovedAmount || input.TermMonths != *app.ApprovedTerm || !input.Rate.Equal(*app.ApprovedRate) {
		return nil, domain.ErrTermsOutsideProduct
	}

	product, err := uc.productRepo.GetByID(ctx, app.ProductID)
	if err != nil {
		return nil, err
	}

	installments, err := domain.GenerateSchedule(domain.AmortizationTerms{
		Principal:  *app.ApprovedAmount,
		AnnualRate: *app.ApprovedRate,
		TermMonths: *app.ApprovedTerm,
		Method:     product.RepaymentMethod,
		StartDate:  input.StartDate,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var totalInterest int64
	for _, ins := range installments {
		totalInterest += ins.Interest
	}

	first := installments[0]
	firstDue := first.DueDate
	account := &domain.LoanAccount{
		ID:                   uc.idGen.Generate(),
		ApplicationID:        app.ID,
		BorrowerID:           app.BorrowerID,
		PrincipalAmount:      *app.ApprovedAmount,
		InterestRate:         *app.ApprovedRate,
		TermMonths:           *app.ApprovedTerm,
		RepaymentMethod:      product.RepaymentMethod,
		PrincipalBalance:     *app.ApprovedAmount,
		TotalInterestAccrued: totalInterest,
		RemainingPeriods:     len(installments),
		NextPaymentAmount:    first.Total,
		NextPaymentDate:      &firstDue,
		Status:               domain.AccountActive,
		StartDate:            input.StartDate,
		TargetEndDate:        installments[len(installments)-1].DueDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	entries := make([]*domain.ScheduleEntry, 0, len(installments))
	for _, ins := range installments {
		entries = append(entries, &domain.ScheduleEntry{
			AccountID:          account.ID,
			Index:              ins.Index,
			DueDate:            ins.DueDate,
			PrincipalDue:       ins.Principal,
			InterestDue:        ins.Interest,
			TotalDue:           ins.Total,
			RemainingPrincipal: ins.RemainingPrincipal,
			Status:             domain.EntryUnpaid,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	if err := uc.scheduleRepo.CreateBatch(ctx, tx, entries); err != nil {
		return nil, err
	}

	if err := app.Transition(domain.ApplicationActive, input.Actor, now); err != nil {
		return nil, err
	}

	if err := uc.appRepo.Update(ctx, tx, app); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeLoanActivated,
		Payload: map[string]any{
			"account_id":     account.ID,
			"application_id": app.ID,
			"principal":      account.PrincipalAmount,
			"term_months":    account.TermMonths,
			"start_date":     input.StartDate.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// Suspend moves an active account to suspended.
func (uc *LifecycleUseCase) Suspend(ctx context.Context, accountID, actor string) (*domain.LoanAccount, error) {
	return uc.transitionAccount(ctx, accountID, domain.AccountSuspended, domain.EventTypeLoanSuspended, actor)
}

// Reinstate moves a suspended account back to active.
func (uc *LifecycleUseCase) Reinstate(ctx context.Context, accountID, actor string) (*domain.LoanAccount, error) {
	return uc.transitionAccount(ctx, accountID, domain.AccountActive, domain.EventTypeLoanReinstated, actor)
}

// WaiveEntry administratively forgives an outstanding schedule entry. Waived
// entries are skipped by the allocator and the delinquency sweep.
func (uc *LifecycleUseCase) WaiveEntry(ctx context.Context, accountID string, index int, actor string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	entries, err := uc.scheduleRepo.ListByAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	var target *domain.ScheduleEntry
	for _, e := range entries {
		if e.Index == index {
			target = e
			break
		}
	}
	if target == nil {
		return domain.ErrScheduleEntryNotFound
	}
	if !target.Allocatable() {
		return domain.ErrInvalidTransition
	}

	target.Status = domain.EntryWaived
	target.UpdatedAt = now
	if err := uc.scheduleRepo.Update(ctx, tx, target); err != nil {
		return err
	}

	// Forgiven principal leaves the books entirely.
	account.PrincipalBalance -= target.OutstandingPrincipal()
	refreshAccountSchedule(account, entries, now)
	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *LifecycleUseCase) transitionApplication(
	ctx context.Context,
	id string,
	to domain.ApplicationStatus,
	actor string,
	hook func(Transaction, *domain.LoanApplication) error,
) (*domain.LoanApplication, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	app, err := uc.appRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := app.Transition(to, actor, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.appRepo.Update(ctx, tx, app); err != nil {
		return nil, err
	}

	if hook != nil {
		if err := hook(tx, app); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

func (uc *LifecycleUseCase) transitionAccount(ctx context.Context, accountID string, to domain.AccountStatus, eventType, actor string) (*domain.LoanAccount, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := account.Transition(to, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       map[string]any{"account_id": account.ID, "status": string(to), "actor": actor},
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *LifecycleUseCase) emitApplicationEvent(ctx context.Context, tx Transaction, app *domain.LoanApplication, eventType string) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   app.ID,
		AggregateType: domain.AggregateTypeApplication,
		EventType:     eventType,
		Payload:       map[string]any{"application_id": app.ID, "status": string(app.Status)},
		CreatedAt:     time.Now().UTC(),
	})
}

// refreshAccountSchedule recomputes the schedule-derived aggregates on the
// account: remaining periods, the next payment target, and the overdue
// aggregates. Recomputing the overdue figures here keeps the summary honest
// between sweeps, e.g. right after a payment clears all arrears.
func refreshAccountSchedule(account *domain.LoanAccount, entries []*domain.ScheduleEntry, now time.Time) {
	account.RemainingPeriods = 0
	account.NextPaymentAmount = 0
	account.NextPaymentDate = nil
	account.OverdueMonths = 0
	account.OverdueAmount = 0

	for _, e := range entries {
		if !e.Allocatable() {
			continue
		}

		account.RemainingPeriods++
		if account.NextPaymentDate == nil {
			due := e.DueDate
			account.NextPaymentDate = &due
			account.NextPaymentAmount = e.Outstanding()
		}
		if !e.DueDate.After(now) {
			account.OverdueMonths++
			account.OverdueAmount += e.Outstanding()
		}
	}

	account.UpdatedAt = now
}
