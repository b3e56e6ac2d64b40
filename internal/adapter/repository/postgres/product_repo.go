package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
)

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
	id, name, product_type, ltv_cap_percent,
	min_interest_rate, max_interest_rate,
	min_amount, max_amount, min_term_months, max_term_months,
	repayment_method, active, created_at, updated_at
`

// Create inserts a new loan product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.LoanProduct) error {
	query := `
		INSERT INTO loan_products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.ProductType,
		decimalToNumeric(product.LTVCapPercent),
		decimalToNumeric(product.MinInterestRate),
		decimalToNumeric(product.MaxInterestRate),
		product.MinAmount,
		product.MaxAmount,
		product.MinTermMonths,
		product.MaxTermMonths,
		string(product.RepaymentMethod),
		product.Active,
		timeToPgTimestamptz(product.CreatedAt),
		timeToPgTimestamptz(product.UpdatedAt),
	)

	return err
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.LoanProduct, error) {
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}

		return nil, err
	}

	return product, nil
}

// List lists products with pagination.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM loan_products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.LoanProduct
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.LoanProduct, error) {
	var (
		p                  domain.LoanProduct
		ltv, minRate       pgtype.Numeric
		maxRate            pgtype.Numeric
		method             string
		createdAt, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.ProductType,
		&ltv,
		&minRate,
		&maxRate,
		&p.MinAmount,
		&p.MaxAmount,
		&p.MinTermMonths,
		&p.MaxTermMonths,
		&method,
		&p.Active,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	p.LTVCapPercent = numericToDecimal(ltv)
	p.MinInterestRate = numericToDecimal(minRate)
	p.MaxInterestRate = numericToDecimal(maxRate)
	p.RepaymentMethod = domain.RepaymentMethod(method)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updated.Time

	return &p, nil
}
