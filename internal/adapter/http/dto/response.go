package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/domain"
)

// ProductResponse represents a loan product in API responses.
type ProductResponse struct {
	ID              string          `json:"id"`
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
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductFromDomain converts a domain product to a response.
func ProductFromDomain(p *domain.LoanProduct) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		ProductType:     p.ProductType,
		LTVCapPercent:   p.LTVCapPercent,
		MinInterestRate: p.MinInterestRate,
		MaxInterestRate: p.MaxInterestRate,
		MinAmount:       p.MinAmount,
		MaxAmount:       p.MaxAmount,
		MinTermMonths:   p.MinTermMonths,
		MaxTermMonths:   p.MaxTermMonths,
		RepaymentMethod: string(p.RepaymentMethod),
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ProductsFromDomain converts domain products to responses.
func ProductsFromDomain(products []*domain.LoanProduct) []*ProductResponse {
	result := make([]*ProductResponse, len(products))
	for i, p := range products {
		result[i] = ProductFromDomain(p)
	}
	return result
}

// StatusChangeResponse is one status-history record in API responses.
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
}

// ApplicationResponse represents a loan application in API responses.
type ApplicationResponse struct {
	ID              string                 `json:"id"`
	BorrowerID      string                 `json:"borrower_id"`
	ProductID       string                 `json:"product_id"`
	RequestedAmount int64                  `json:"requested_amount"`
	CollateralDesc  string                 `json:"collateral_desc,omitempty"`
	CollateralValue int64                  `json:"collateral_value"`
	Status          string                 `json:"status"`
	ApprovedAmount  *int64                 `json:"approved_amount,omitempty"`
	ApprovedRate    *decimal.Decimal       `json:"approved_rate,omitempty"`
	ApprovedTerm    *int                   `json:"approved_term,omitempty"`
	ReviewerID      string                 `json:"reviewer_id,omitempty"`
	StatusHistory   []StatusChangeResponse `json:"status_history"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ApplicationFromDomain converts a domain application to a response.
func ApplicationFromDomain(a *domain.LoanApplication) *ApplicationResponse {
	history := make([]StatusChangeResponse, len(a.StatusHistory))
	for i, ch := range a.StatusHistory {
		history[i] = StatusChangeResponse{
			Status:    string(ch.Status),
			Timestamp: ch.Timestamp,
			Actor:     ch.Actor,
		}
	}

	return &ApplicationResponse{
		ID:              a.ID,
		BorrowerID:      a.BorrowerID,
		ProductID:       a.ProductID,
		RequestedAmount: a.RequestedAmount,
		CollateralDesc:  a.CollateralDesc,
		CollateralValue: a.CollateralValue,
		Status:          string(a.Status),
		ApprovedAmount:  a.ApprovedAmount,
		ApprovedRate:    a.ApprovedRate,
		ApprovedTerm:    a.ApprovedTerm,
		ReviewerID:      a.ReviewerID,
		StatusHistory:   history,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountResponse represents a loan account in API responses.
type AccountResponse struct {
	ID                   string          `json:"id"`
	ApplicationID        string          `json:"application_id"`
	BorrowerID           string          `json:"borrower_id"`
	PrincipalAmount      int64           `json:"principal_amount"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	TermMonths           int             `json:"term_months"`
	RepaymentMethod      string          `json:"repayment_method"`
	PrincipalBalance     int64           `json:"principal_balance"`
	TotalInterestAccrued int64           `json:"total_interest_accrued"`
	TotalPaid            int64           `json:"total_paid"`
	RemainingPeriods     int             `json:"remaining_periods"`
	NextPaymentAmount    int64           `json:"next_payment_amount"`
	NextPaymentDate      *time.Time      `json:"next_payment_date,omitempty"`
	Status               string          `json:"status"`
	OverdueMonths        int             `json:"overdue_months"`
	OverdueAmount        int64           `json:"overdue_amount"`
	StartDate            time.Time       `json:"start_date"`
	TargetEndDate        time.Time       `json:"target_end_date"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.LoanAccount) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		ApplicationID:        a.ApplicationID,
		BorrowerID:           a.BorrowerID,
		PrincipalAmount:      a.PrincipalAmount,
		InterestRate:         a.InterestRate,
		TermMonths:           a.TermMonths,
		RepaymentMethod:      string(a.RepaymentMethod),
		PrincipalBalance:     a.PrincipalBalance,
		TotalInterestAccrued: a.TotalInterestAccrued,
		TotalPaid:            a.TotalPaid,
		RemainingPeriods:     a.RemainingPeriods,
		NextPaymentAmount:    a.NextPaymentAmount,
		NextPaymentDate:      a.NextPaymentDate,
		Status:               string(a.Status),
		OverdueMonths:        a.OverdueMonths,
		OverdueAmount:        a.OverdueAmount,
		StartDate:            a.StartDate,
		TargetEndDate:        a.TargetEndDate,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// ScheduleEntryResponse represents one installment row in API responses.
type ScheduleEntryResponse struct {
	Index              int        `json:"index"`
	DueDate            time.Time  `json:"due_date"`
	PrincipalDue       int64      `json:"principal_due"`
	InterestDue        int64      `json:"interest_due"`
	TotalDue           int64      `json:"total_due"`
	RemainingPrincipal int64      `json:"remaining_principal"`
	Status             string     `json:"status"`
	FeePaid            int64      `json:"fee_paid"`
	PenaltyPaid        int64      `json:"penalty_paid"`
	InterestPaid       int64      `json:"interest_paid"`
	PrincipalPaid      int64      `json:"principal_paid"`
	LateFeeAccrued     int64      `json:"late_fee_accrued"`
	PenaltyDue         int64      `json:"penalty_due"`
	DaysOverdue        int        `json:"days_overdue"`
	PaidAmount         int64      `json:"paid_amount"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
}

// ScheduleEntryFromDomain converts a domain schedule entry to a response.
func ScheduleEntryFromDomain(e *domain.ScheduleEntry) *ScheduleEntryResponse {
	return &ScheduleEntryResponse{
		Index:              e.Index,
		DueDate:            e.DueDate,
		PrincipalDue:       e.PrincipalDue,
		InterestDue:        e.InterestDue,
		TotalDue:           e.TotalDue,
		RemainingPrincipal: e.RemainingPrincipal,
		Status:             string(e.Status),
		FeePaid:            e.FeePaid,
		PenaltyPaid:        e.PenaltyPaid,
		InterestPaid:       e.InterestPaid,
		PrincipalPaid:      e.PrincipalPaid,
		LateFeeAccrued:     e.LateFeeAccrued,
		PenaltyDue:         e.PenaltyDue,
		DaysOverdue:        e.DaysOverdue,
		PaidAmount:         e.PaidAmount,
		PaidAt:             e.PaidAt,
	}
}

// ScheduleFromDomain converts domain schedule entries to responses.
func ScheduleFromDomain(entries []*domain.ScheduleEntry) []*ScheduleEntryResponse {
	result := make([]*ScheduleEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = ScheduleEntryFromDomain(e)
	}
	return result
}

// TransactionResponse represents a repayment transaction in API responses.
type TransactionResponse struct {
	TransactionNo    string    `json:"transaction_no"`
	AccountID        string    `json:"account_id"`
	TargetEntryIndex *int      `json:"target_entry_index,omitempty"`
	Type             string    `json:"type"`
	Amount           int64     `json:"amount"`
	PaymentDate      time.Time `json:"payment_date"`
	Method           string    `json:"method"`
	PrincipalApplied int64     `json:"principal_applied"`
	InterestApplied  int64     `json:"interest_applied"`
	PenaltyApplied   int64     `json:"penalty_applied"`
	FeesApplied      int64     `json:"fees_applied"`
	Status           string    `json:"status"`
	BankReference    string    `json:"bank_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.RepaymentTransaction) *TransactionResponse {
	return &TransactionResponse{
		TransactionNo:    t.TransactionNo,
		AccountID:        t.AccountID,
		TargetEntryIndex: t.TargetEntryIndex,
		Type:             string(t.Type),
		Amount:           t.Amount,
		PaymentDate:      t.PaymentDate,
		Method:           t.Method,
		PrincipalApplied: t.PrincipalApplied,
		InterestApplied:  t.InterestApplied,
		PenaltyApplied:   t.PenaltyApplied,
		FeesApplied:      t.FeesApplied,
		Status:           string(t.Status),
		BankReference:    t.BankReference,
		CreatedAt:        t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.RepaymentTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// InstallmentResponse represents one previewed installment.
type InstallmentResponse struct {
	Index              int       `json:"index"`
	DueDate            time.Time `json:"due_date"`
	Principal          int64     `json:"principal"`
	Interest           int64     `json:"interest"`
	Total              int64     `json:"total"`
	RemainingPrincipal int64     `json:"remaining_principal"`
}

// InstallmentsFromDomain converts generated installments to responses.
func InstallmentsFromDomain(installments []domain.Installment) []InstallmentResponse {
	result := make([]InstallmentResponse, len(installments))
	for i, ins := range installments {
		result[i] = InstallmentResponse{
			Index:              ins.Index,
			DueDate:            ins.DueDate,
			Principal:          ins.Principal,
			Interest:           ins.Interest,
			Total:              ins.Total,
			RemainingPrincipal: ins.RemainingPrincipal,
		}
	}
	return result
}

// AuditLogResponse represents an audit record in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Actor:        l.Actor,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
