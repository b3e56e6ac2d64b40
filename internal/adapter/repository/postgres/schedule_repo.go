package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// ScheduleRepository implements usecase.ScheduleRepository. Entries are keyed
// by (account_id, idx); the schedule for one account is always read and
// locked as a whole.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `
	account_id, idx, due_date,
	principal_due, interest_due, total_due, remaining_principal,
	status, fee_paid, penalty_paid, interest_paid, principal_paid,
	late_fee_accrued, penalty_due, days_overdue,
	paid_amount, paid_at, created_at, updated_at
`

// CreateBatch inserts a full schedule within a transaction.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.ScheduleEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO schedule_entries (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.AccountID,
			e.Index,
			timeToPgTimestamptz(e.DueDate),
			e.PrincipalDue,
			e.InterestDue,
			e.TotalDue,
			e.RemainingPrincipal,
			string(e.Status),
			e.FeePaid,
			e.PenaltyPaid,
			e.InterestPaid,
			e.PrincipalPaid,
			e.LateFeeAccrued,
			e.PenaltyDue,
			e.DaysOverdue,
			e.PaidAmount,
			timePtrToPgTimestamptz(e.PaidAt),
			timeToPgTimestamptz(e.CreatedAt),
			timeToPgTimestamptz(e.UpdatedAt),
		)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// ListByAccount retrieves the full schedule ordered by installment index.
func (r *ScheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries WHERE account_id = $1 ORDER BY idx`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByAccountForUpdate retrieves the schedule with FOR UPDATE locks.
func (r *ScheduleRepository) ListByAccountForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.ScheduleEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries WHERE account_id = $1 ORDER BY idx FOR UPDATE`

	rows, err := pgxTx.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Update persists the mutable entry fields within a transaction.
func (r *ScheduleRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE schedule_entries
		SET status = $3,
		    interest_due = $4,
		    total_due = $5,
		    fee_paid = $6,
		    penalty_paid = $7,
		    interest_paid = $8,
		    principal_paid = $9,
		    late_fee_accrued = $10,
		    penalty_due = $11,
		    days_overdue = $12,
		    paid_amount = $13,
		    paid_at = $14,
		    updated_at = $15
		WHERE account_id = $1 AND idx = $2
	`

	tag, err := pgxTx.Exec(ctx, query,
		entry.AccountID,
		entry.Index,
		string(entry.Status),
		entry.InterestDue,
		entry.TotalDue,
		entry.FeePaid,
		entry.PenaltyPaid,
		entry.InterestPaid,
		entry.PrincipalPaid,
		entry.LateFeeAccrued,
		entry.PenaltyDue,
		entry.DaysOverdue,
		entry.PaidAmount,
		timePtrToPgTimestamptz(entry.PaidAt),
		timeToPgTimestamptz(entry.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleEntryNotFound
	}

	return nil
}

func scanEntries(rows pgx.Rows) ([]*domain.ScheduleEntry, error) {
	var entries []*domain.ScheduleEntry

	for rows.Next() {
		var (
			e                  domain.ScheduleEntry
			status             string
			dueDate, paidAt    pgtype.Timestamptz
			createdAt, updated pgtype.Timestamptz
		)

		err := rows.Scan(
			&e.AccountID,
			&e.Index,
			&dueDate,
			&e.PrincipalDue,
			&e.InterestDue,
			&e.TotalDue,
			&e.RemainingPrincipal,
			&status,
			&e.FeePaid,
			&e.PenaltyPaid,
			&e.InterestPaid,
			&e.PrincipalPaid,
			&e.LateFeeAccrued,
			&e.PenaltyDue,
			&e.DaysOverdue,
			&e.PaidAmount,
			&paidAt,
			&createdAt,
			&updated,
		)
		if err != nil {
			return nil, err
		}

		e.Status = domain.EntryStatus(status)
		e.DueDate = dueDate.Time
		e.PaidAt = pgTimestamptzToPtr(paidAt)
		e.CreatedAt = createdAt.Time
		e.UpdatedAt = updated.Time

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
