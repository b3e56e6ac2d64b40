package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the state of a loan application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
	ApplicationActive    ApplicationStatus = "active"
	ApplicationCompleted ApplicationStatus = "completed"
)

// StatusChange is one append-only status-history record.
type StatusChange struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
}

// LoanApplication is one borrower request. Approved terms stay nil until a
// reviewer approves; the status history is append-only.
type LoanApplication struct {
	ID              string
	BorrowerID      string
	ProductID       string
	RequestedAmount int64
	CollateralDesc  string
	CollateralValue int64
	Status          ApplicationStatus
	ApprovedAmount  *int64
	ApprovedRate    *decimal.Decimal
	ApprovedTerm    *int
	ReviewerID      string
	StatusHistory   []StatusChange
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:   {ApplicationSubmitted, ApplicationCancelled},
	ApplicationSubmitted: {ApplicationReviewing, ApplicationCancelled},
	ApplicationReviewing: {ApplicationApproved, ApplicationRejected, ApplicationCancelled},
	ApplicationApproved:  {ApplicationActive, ApplicationCancelled},
	ApplicationActive:    {ApplicationCompleted},
}

// CanTransition reports whether the application may move to the target status.
func (a *LoanApplication) CanTransition(to ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[a.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the application to the target status and appends a
// status-history record. Prior history is never overwritten.
func (a *LoanApplication) Transition(to ApplicationStatus, actor string, at time.Time) error {
	if !a.CanTransition(to) {
		return ErrInvalidTransition
	}

	a.Status = to
	a.UpdatedAt = at
	a.StatusHistory = append(a.StatusHistory, StatusChange{
		Status:    to,
		Timestamp: at,
		Actor:     actor,
	})

	return nil
}

// Terminal reports whether the application reached a final state.
func (a *LoanApplication) Terminal() bool {
	switch a.Status {
	case ApplicationCompleted, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// Approve records reviewer identity and approved terms. The caller validates
// the terms against the product first.
func (a *LoanApplication) Approve(terms ApprovedTerms, reviewer string, at time.Time) error {
	if reviewer == "" {
		return ErrInvalidTransition
	}

	if err := a.Transition(ApplicationApproved, reviewer, at); err != nil {
		return err
	}

	amount := terms.Amount
	rate := terms.Rate
	term := terms.TermMonths
	a.ApprovedAmount = &amount
	a.ApprovedRate = &rate
	a.ApprovedTerm = &term
	a.ReviewerID = reviewer

	return nil
}
