package domain

import "time"

// Event types
const (
	EventTypeApplicationApproved = "application.approved"
	EventTypeApplicationRejected = "application.rejected"
	EventTypeLoanActivated       = "loan.activated"
	EventTypeLoanClosed          = "loan.closed"
	EventTypeLoanDefaulted       = "loan.defaulted"
	EventTypeLoanSuspended       = "loan.suspended"
	EventTypeLoanReinstated      = "loan.reinstated"
	EventTypePaymentApplied      = "payment.applied"
)

// Aggregate types
const (
	AggregateTypeApplication = "application"
	AggregateTypeAccount     = "account"
	AggregateTypePayment     = "payment"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LoanActivatedEvent payload
type LoanActivatedEvent struct {
	AccountID     string `json:"account_id"`
	ApplicationID string `json:"application_id"`
	Principal     int64  `json:"principal"`
	TermMonths    int    `json:"term_months"`
	StartDate     string `json:"start_date"`
}

// LoanClosedEvent payload
type LoanClosedEvent struct {
	AccountID string `json:"account_id"`
	TotalPaid int64  `json:"total_paid"`
	ClosedAt  string `json:"closed_at"`
}

// LoanDefaultedEvent payload
type LoanDefaultedEvent struct {
	AccountID     string `json:"account_id"`
	OverdueMonths int    `json:"overdue_months"`
	OverdueAmount int64  `json:"overdue_amount"`
}

// PaymentAppliedEvent payload
type PaymentAppliedEvent struct {
	TransactionNo string    `json:"transaction_no"`
	AccountID     string    `json:"account_id"`
	Amount        int64     `json:"amount"`
	Breakdown     Breakdown `json:"breakdown"`
}
