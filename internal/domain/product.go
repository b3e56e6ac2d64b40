package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanProduct is the template a loan application is created against.
// Administrative edits never retroactively affect existing applications:
// approved terms are copied onto the application at approval time.
type LoanProduct struct {
	ID              string
	Name            string
	ProductType     string
	LTVCapPercent   decimal.Decimal
	MinInterestRate decimal.Decimal
	MaxInterestRate decimal.Decimal
	MinAmount       int64
	MaxAmount       int64
	MinTermMonths   int
	MaxTermMonths   int
	RepaymentMethod RepaymentMethod
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApprovedTerms are the reviewer-set terms an application is approved with.
type ApprovedTerms struct {
	Amount     int64
	Rate       decimal.Decimal
	TermMonths int
}

// ValidateApprovedTerms checks reviewer terms against the product band, the
// requested amount, and the LTV cap derived from the collateral value.
func (p *LoanProduct) ValidateApprovedTerms(terms ApprovedTerms, requestedAmount, collateralValue int64) error {
	if terms.Amount <= 0 || terms.TermMonths < 1 {
		return ErrInvalidTerms
	}

	if terms.Amount > requestedAmount {
		return ErrTermsOutsideProduct
	}

	if terms.Amount < p.MinAmount || terms.Amount > p.MaxAmount {
		return ErrTermsOutsideProduct
	}

	if terms.Rate.LessThan(p.MinInterestRate) || terms.Rate.GreaterThan(p.MaxInterestRate) {
		return ErrTermsOutsideProduct
	}

	if terms.TermMonths < p.MinTermMonths || terms.TermMonths > p.MaxTermMonths {
		return ErrTermsOutsideProduct
	}

	if collateralValue <= 0 {
		return ErrLTVExceeded
	}

	// LTV = amount / collateral, as a percentage.
	ltv := decimal.NewFromInt(terms.Amount).
		Div(decimal.NewFromInt(collateralValue)).
		Mul(percentBase)
	if ltv.GreaterThan(p.LTVCapPercent) {
		return ErrLTVExceeded
	}

	return nil
}
