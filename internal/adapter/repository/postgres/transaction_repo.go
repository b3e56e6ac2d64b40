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

// TransactionRepository implements usecase.TransactionRepository. Rows are
// append-only once successful; a pending or failed attempt under the same
// transaction_no may be overwritten by a reprocessing run.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	transaction_no, account_id, target_entry_idx, type,
	amount, payment_date, method,
	principal_applied, interest_applied, penalty_applied, fees_applied,
	status, bank_reference, created_at
`

// Create inserts a transaction within the payment's database transaction.
// The upsert only replaces a prior non-successful attempt; a successful row
// is immutable and the conflict surfaces as ErrDuplicateTransaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.RepaymentTransaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO repayment_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (transaction_no) DO UPDATE
		SET account_id = EXCLUDED.account_id,
		    target_entry_idx = EXCLUDED.target_entry_idx,
		    type = EXCLUDED.type,
		    amount = EXCLUDED.amount,
		    payment_date = EXCLUDED.payment_date,
		    method = EXCLUDED.method,
		    principal_applied = EXCLUDED.principal_applied,
		    interest_applied = EXCLUDED.interest_applied,
		    penalty_applied = EXCLUDED.penalty_applied,
		    fees_applied = EXCLUDED.fees_applied,
		    status = EXCLUDED.status,
		    bank_reference = EXCLUDED.bank_reference,
		    created_at = EXCLUDED.created_at
		WHERE repayment_transactions.status <> $15
	`

	tag, err := pgxTx.Exec(ctx, query,
		txn.TransactionNo,
		txn.AccountID,
		txn.TargetEntryIndex,
		string(txn.Type),
		txn.Amount,
		timeToPgTimestamptz(txn.PaymentDate),
		txn.Method,
		txn.PrincipalApplied,
		txn.InterestApplied,
		txn.PenaltyApplied,
		txn.FeesApplied,
		string(txn.Status),
		txn.BankReference,
		timeToPgTimestamptz(txn.CreatedAt),
		string(domain.TransactionSuccess),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateTransaction
	}

	return nil
}

// GetByNo retrieves a transaction by its idempotency number.
func (r *TransactionRepository) GetByNo(ctx context.Context, transactionNo string) (*domain.RepaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM repayment_transactions WHERE transaction_no = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

// ListByAccount lists an account's transactions, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.RepaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM repayment_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.RepaymentTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// SumPrincipalApplied sums the principal applied by successful transactions.
func (r *TransactionRepository) SumPrincipalApplied(ctx context.Context, accountID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(principal_applied), 0)
		FROM repayment_transactions
		WHERE account_id = $1 AND status = $2
	`

	var sum int64
	err := r.pool.QueryRow(ctx, query, accountID, string(domain.TransactionSuccess)).Scan(&sum)

	return sum, err
}

func scanTransaction(row pgx.Row) (*domain.RepaymentTransaction, error) {
	var (
		t                    domain.RepaymentTransaction
		txnType, status      string
		paymentDate, created pgtype.Timestamptz
	)

	err := row.Scan(
		&t.TransactionNo,
		&t.AccountID,
		&t.TargetEntryIndex,
		&txnType,
		&t.Amount,
		&paymentDate,
		&t.Method,
		&t.PrincipalApplied,
		&t.InterestApplied,
		&t.PenaltyApplied,
		&t.FeesApplied,
		&status,
		&t.BankReference,
		&created,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txnType)
	t.Status = domain.TransactionStatus(status)
	t.PaymentDate = paymentDate.Time
	t.CreatedAt = created.Time

	return &t, nil
}
