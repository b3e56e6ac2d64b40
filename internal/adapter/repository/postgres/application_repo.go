package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// ApplicationRepository implements usecase.ApplicationRepository. The status
// history is stored as a JSONB array alongside the row, so one read returns
// the full audit trail of the application.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, borrower_id, product_id, requested_amount,
	collateral_desc, collateral_value, status,
	approved_amount, approved_rate, approved_term,
	reviewer_id, status_history, created_at, updated_at
`

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO loan_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.pool.Exec(ctx, query,
		app.ID,
		app.BorrowerID,
		app.ProductID,
		app.RequestedAmount,
		app.CollateralDesc,
		app.CollateralValue,
		string(app.Status),
		app.ApprovedAmount,
		approvedRateToNumeric(app),
		app.ApprovedTerm,
		app.ReviewerID,
		history,
		timeToPgTimestamptz(app.CreatedAt),
		timeToPgTimestamptz(app.UpdatedAt),
	)

	return err
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`

	return r.get(ctx, r.pool, query, id)
}

// GetByIDForUpdate retrieves an application with a FOR UPDATE lock.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanApplication, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1 FOR UPDATE`

	return r.get(ctx, pgxTx, query, id)
}

// Update persists the mutable application fields within a transaction.
func (r *ApplicationRepository) Update(ctx context.Context, tx usecase.Transaction, app *domain.LoanApplication) error {
	pgxTx := tx.(*Tx).PgxTx()

	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE loan_applications
		SET status = $2,
		    approved_amount = $3,
		    approved_rate = $4,
		    approved_term = $5,
		    reviewer_id = $6,
		    status_history = $7,
		    updated_at = $8
		WHERE id = $1
	`

	_, err = pgxTx.Exec(ctx, query,
		app.ID,
		string(app.Status),
		app.ApprovedAmount,
		approvedRateToNumeric(app),
		app.ApprovedTerm,
		app.ReviewerID,
		history,
		timeToPgTimestamptz(app.UpdatedAt),
	)

	return err
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *ApplicationRepository) get(ctx context.Context, q pgxQuerier, query, id string) (*domain.LoanApplication, error) {
	var (
		app                domain.LoanApplication
		status             string
		rate               pgtype.Numeric
		history            []byte
		createdAt, updated pgtype.Timestamptz
	)

	err := q.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.BorrowerID,
		&app.ProductID,
		&app.RequestedAmount,
		&app.CollateralDesc,
		&app.CollateralValue,
		&status,
		&app.ApprovedAmount,
		&rate,
		&app.ApprovedTerm,
		&app.ReviewerID,
		&history,
		&createdAt,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}

		return nil, err
	}

	app.Status = domain.ApplicationStatus(status)
	if rate.Valid {
		d := numericToDecimal(rate)
		app.ApprovedRate = &d
	}
	if history != nil {
		if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
			return nil, err
		}
	}
	app.CreatedAt = createdAt.Time
	app.UpdatedAt = updated.Time

	return &app, nil
}

func approvedRateToNumeric(app *domain.LoanApplication) pgtype.Numeric {
	if app.ApprovedRate == nil {
		return pgtype.Numeric{}
	}
	return decimalToNumeric(*app.ApprovedRate)
}
