package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
)

// LedgerRepository implements the ledger-wide consistency check.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency counts accounts whose recorded balance disagrees with
// principal minus successfully applied principal minus waived principal.
// A non-zero count means a bug somewhere in the payment path.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loan_accounts a
		WHERE a.principal_balance <>
			a.principal_amount
			- COALESCE((
				SELECT SUM(t.principal_applied)
				FROM repayment_transactions t
				WHERE t.account_id = a.id AND t.status = $1
			), 0)
			- COALESCE((
				SELECT SUM(e.principal_due - e.principal_paid)
				FROM schedule_entries e
				WHERE e.account_id = a.id AND e.status = $2
			), 0)
	`

	var mismatched int
	err := r.pool.QueryRow(ctx, query,
		string(domain.TransactionSuccess),
		string(domain.EntryWaived),
	).Scan(&mismatched)

	return mismatched, err
}
