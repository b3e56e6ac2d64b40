package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// ProductUseCase handles loan product administration.
type ProductUseCase struct {
	productRepo ProductRepository
	idGen       IDGenerator
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo ProductRepository, idGen IDGenerator) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, idGen: idGen}
}

// CreateProductInput represents input for creating a loan product.
type CreateProductInput struct {
	Name            string
	ProductType     string
	LTVCapPercent   decimal.Decimal
	MinInterestRate decimal.Decimal
	MaxInterestRate decimal.Decimal
	MinAmount       int64
	MaxAmount       int64
	MinTermMonths   int
	MaxTermMonths   int
	RepaymentMethod domain.RepaymentMethod
}

// CreateProduct creates a new active loan product.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.LoanProduct, error) {
	if input.MinAmount <= 0 || input.MaxAmount < input.MinAmount ||
		input.MinTermMonths < 1 || input.MaxTermMonths < input.MinTermMonths ||
		input.MinInterestRate.IsNegative() || input.MaxInterestRate.LessThan(input.MinInterestRate) ||
		!input.RepaymentMethod.Valid() {
		return nil, domain.ErrInvalidTerms
	}

	now := time.Now().UTC()
	product := &domain.LoanProduct{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		ProductType:     input.ProductType,
		LTVCapPercent:   input.LTVCapPercent,
		MinInterestRate: input.MinInterestRate,
		MaxInterestRate: input.MaxInterestRate,
		MinAmount:       input.MinAmount,
		MaxAmount:       input.MaxAmount,
		MinTermMonths:   input.MinTermMonths,
		MaxTermMonths:   input.MaxTermMonths,
		RepaymentMethod: input.RepaymentMethod,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.LoanProduct, error) {
	return uc.productRepo.GetByID(ctx, id)
}

// ListProducts lists products with pagination.
func (uc *ProductUseCase) ListProducts(ctx context.Context, limit, offset int) ([]*domain.LoanProduct, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return uc.productRepo.List(ctx, limit, offset)
}
