package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// CreateProductRequest represents a request to create a loan product.
type CreateProductRequest struct {
	Name            string          `json:"name"`
	ProductType     string          `json:"product_type"`
	LTVCapPercent   decimal.Decimal `json:"ltv_cap_percent"`
	MinInterestRate decimal.Decimal `json:"min_interest_rate"`
	MaxInterestRate decimal.Decimal `json:"max_interest_rate"`
	MinAmount       int64           `json:"min_amount"`
	MaxAmount       int64           `json:"max_amount"`
	MinTermMonths   int             `json:"min_term_months"`
	MaxTermMonths   int             `json:"max_term_months"`
	RepaymentMethod string          `json:"repayment_method"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateProductRequest) ToUseCaseInput() usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Name:            r.Name,
		ProductType:     r.ProductType,
		LTVCapPercent:   r.LTVCapPercent,
		MinInterestRate: r.MinInterestRate,
		MaxInterestRate: r.MaxInterestRate,
		MinAmount:       r.MinAmount,
		MaxAmount:       r.MaxAmount,
		MinTermMonths:   r.MinTermMonths,
		MaxTermMonths:   r.MaxTermMonths,
		RepaymentMethod: domain.RepaymentMethod(r.RepaymentMethod),
	}
}

// CreateApplicationRequest represents a request to create a loan application.
type CreateApplicationRequest struct {
	BorrowerID      string `json:"borrower_id"`
	ProductID       string `json:"product_id"`
	RequestedAmount int64  `json:"requested_amount"`
	CollateralDesc  string `json:"collateral_desc"`
	CollateralValue int64  `json:"collateral_value"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateApplicationRequest) ToUseCaseInput() usecase.CreateApplicationInput {
	return usecase.CreateApplicationInput{
		BorrowerID:      r.BorrowerID,
		ProductID:       r.ProductID,
		RequestedAmount: r.RequestedAmount,
		CollateralDesc:  r.CollateralDesc,
		CollateralValue: r.CollateralValue,
	}
}

// TransitionRequest carries the actor for a plain status transition.
type TransitionRequest struct {
	Actor string `json:"actor"`
}

// ApproveApplicationRequest represents reviewer-approved terms.
type ApproveApplicationRequest struct {
	Reviewer   string          `json:"reviewer"`
	Amount     int64           `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months"`
}

// ToUseCaseInput converts to use case input.
func (r *ApproveApplicationRequest) ToUseCaseInput(applicationID string) usecase.ApproveInput {
	return usecase.ApproveInput{
		ApplicationID: applicationID,
		Reviewer:      r.Reviewer,
		Amount:        r.Amount,
		Rate:          r.Rate,
		TermMonths:    r.TermMonths,
	}
}

// DisburseRequest represents a request to disburse an approved application.
type DisburseRequest struct {
	Amount     int64           `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months"`
	StartDate  time.Time       `json:"start_date"`
	Actor      string          `json:"actor"`
}

// ToUseCaseInput converts to use case input.
func (r *DisburseRequest) ToUseCaseInput(applicationID string) usecase.DisburseInput {
	return usecase.DisburseInput{
		ApplicationID: applicationID,
		Amount:        r.Amount,
		Rate:          r.Rate,
		TermMonths:    r.TermMonths,
		StartDate:     r.StartDate,
		Actor:         r.Actor,
	}
}

// ApplyPaymentRequest represents one incoming repayment.
type ApplyPaymentRequest struct {
	TransactionNo    string    `json:"transaction_no"`
	Amount           int64     `json:"amount"`
	PaymentDate      time.Time `json:"payment_date"`
	Method           string    `json:"method"`
	BankReference    string    `json:"bank_reference,omitempty"`
	TargetEntryIndex *int      `json:"target_entry_index,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyPaymentRequest) ToUseCaseInput(accountID string) usecase.ApplyPaymentInput {
	return usecase.ApplyPaymentInput{
		AccountID:        accountID,
		TransactionNo:    r.TransactionNo,
		Amount:           r.Amount,
		PaymentDate:      r.PaymentDate,
		Method:           r.Method,
		BankReference:    r.BankReference,
		TargetEntryIndex: r.TargetEntryIndex,
	}
}

// EarlyRepaymentRequest represents a full early payoff request.
type EarlyRepaymentRequest struct {
	TransactionNo string    `json:"transaction_no"`
	PayoffDate    time.Time `json:"payoff_date"`
	Method        string    `json:"method"`
	BankReference string    `json:"bank_reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *EarlyRepaymentRequest) ToUseCaseInput(accountID string) usecase.EarlyRepaymentInput {
	return usecase.EarlyRepaymentInput{
		AccountID:     accountID,
		TransactionNo: r.TransactionNo,
		PayoffDate:    r.PayoffDate,
		Method:        r.Method,
		BankReference: r.BankReference,
	}
}

// SchedulePreviewRequest represents a stateless amortization preview.
type SchedulePreviewRequest struct {
	Principal  int64           `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
	Method     string          `json:"method"`
	StartDate  time.Time       `json:"start_date"`
}

// ToTerms converts to amortization terms.
func (r *SchedulePreviewRequest) ToTerms() domain.AmortizationTerms {
	return domain.AmortizationTerms{
		Principal:  r.Principal,
		AnnualRate: r.AnnualRate,
		TermMonths: r.TermMonths,
		Method:     domain.RepaymentMethod(r.Method),
		StartDate:  r.StartDate,
	}
}

// SweepRequest represents a delinquency sweep trigger. AsOf defaults to now.
type SweepRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}
