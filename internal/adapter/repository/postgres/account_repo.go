package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, application_id, borrower_id,
	principal_amount, interest_rate, term_months, repayment_method,
	principal_balance, total_interest_accrued, total_paid,
	remaining_periods, next_payment_amount, next_payment_date,
	status, overdue_months, overdue_amount,
	start_date, target_end_date, created_at, updated_at
`

// Create inserts a new account within a transaction.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO loan_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := pgxTx.Exec(ctx, query,
		account.ID,
		account.ApplicationID,
		account.BorrowerID,
		account.PrincipalAmount,
		decimalToNumeric(account.InterestRate),
		account.TermMonths,
		string(account.RepaymentMethod),
		account.PrincipalBalance,
		account.TotalInterestAccrued,
		account.TotalPaid,
		account.RemainingPeriods,
		account.NextPaymentAmount,
		timePtrToPgTimestamptz(account.NextPaymentDate),
		string(account.Status),
		account.OverdueMonths,
		account.OverdueAmount,
		timeToPgTimestamptz(account.StartDate),
		timeToPgTimestamptz(account.TargetEndDate),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.LoanAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM loan_accounts WHERE id = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an account with a FOR UPDATE lock. Every payment
// and sweep serializes on this lock, one account at a time.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanAccount, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + accountColumns + ` FROM loan_accounts WHERE id = $1 FOR UPDATE`

	return scanAccountRow(pgxTx.QueryRow(ctx, query, id))
}

// GetByApplicationID retrieves the account disbursed for an application.
func (r *AccountRepository) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM loan_accounts WHERE application_id = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, applicationID))
}

// Update persists the mutable account fields within a transaction.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.LoanAccount) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE loan_accounts
		SET principal_balance = $2,
		    total_interest_accrued = $3,
		    total_paid = $4,
		    remaining_periods = $5,
		    next_payment_amount = $6,
		    next_payment_date = $7,
		    status = $8,
		    overdue_months = $9,
		    overdue_amount = $10,
		    updated_at = $11
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query,
		account.ID,
		account.PrincipalBalance,
		account.TotalInterestAccrued,
		account.TotalPaid,
		account.RemainingPeriods,
		account.NextPaymentAmount,
		timePtrToPgTimestamptz(account.NextPaymentDate),
		string(account.Status),
		account.OverdueMonths,
		account.OverdueAmount,
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// ListActiveIDs returns the IDs of all active accounts, for the sweep.
func (r *AccountRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM loan_accounts WHERE status = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, string(domain.AccountActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM loan_accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.LoanAccount
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccountRow(row pgx.Row) (*domain.LoanAccount, error) {
	var (
		a                  domain.LoanAccount
		rate               pgtype.Numeric
		method, status     string
		nextDate           pgtype.Timestamptz
		startDate, endDate pgtype.Timestamptz
		createdAt, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.ApplicationID,
		&a.BorrowerID,
		&a.PrincipalAmount,
		&rate,
		&a.TermMonths,
		&method,
		&a.PrincipalBalance,
		&a.TotalInterestAccrued,
		&a.TotalPaid,
		&a.RemainingPeriods,
		&a.NextPaymentAmount,
		&nextDate,
		&status,
		&a.OverdueMonths,
		&a.OverdueAmount,
		&startDate,
		&endDate,
		&createdAt,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	a.InterestRate = numericToDecimal(rate)
	a.RepaymentMethod = domain.RepaymentMethod(method)
	a.Status = domain.AccountStatus(status)
	a.NextPaymentDate = pgTimestamptzToPtr(nextDate)
	a.StartDate = startDate.Time
	a.TargetEndDate = endDate.Time
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updated.Time

	return &a, nil
}
