package domain

import "time"

// AuditLog records a mutating operation for compliance and debugging. It
// complements the per-application status history with operation-level detail.
type AuditLog struct {
	ID           string
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  map[string]any
	AfterState   map[string]any
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionApplicationCreate     AuditAction = "application.create"
	AuditActionApplicationTransition AuditAction = "application.transition"
	AuditActionDisburse              AuditAction = "loan.disburse"
	AuditActionPaymentApply          AuditAction = "payment.apply"
	AuditActionEarlyRepayment        AuditAction = "payment.early_repayment"
	AuditActionEntryWaive            AuditAction = "schedule.waive"
	AuditActionDelinquencySweep      AuditAction = "delinquency.sweep"
	AuditActionAccountTransition     AuditAction = "account.transition"
)
