package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the state of a loan account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
	AccountDefaulted AccountStatus = "defaulted"
)

// LoanAccount is the ledger root for one funded application. Terms are copied
// immutably from the approved application; later product edits never touch
// them. PrincipalBalance only decreases under normal payment flow.
type LoanAccount struct {
	ID                   string
	ApplicationID        string
	BorrowerID           string
	PrincipalAmount      int64
	InterestRate         decimal.Decimal
	TermMonths           int
	RepaymentMethod      RepaymentMethod
	PrincipalBalance     int64
	TotalInterestAccrued int64
	TotalPaid            int64
	RemainingPeriods     int
	NextPaymentAmount    int64
	NextPaymentDate      *time.Time
	Status               AccountStatus
	OverdueMonths        int
	OverdueAmount        int64
	StartDate            time.Time
	TargetEndDate        time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

var accountTransitions = map[AccountStatus][]AccountStatus{
	AccountActive:    {AccountSuspended, AccountClosed, AccountDefaulted},
	AccountSuspended: {AccountActive, AccountDefaulted},
}

// CanTransition reports whether the account may move to the target status.
func (a *LoanAccount) CanTransition(to AccountStatus) bool {
	for _, allowed := range accountTransitions[a.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the account to the target status.
func (a *LoanAccount) Transition(to AccountStatus, at time.Time) error {
	if !a.CanTransition(to) {
		return ErrInvalidTransition
	}

	a.Status = to
	a.UpdatedAt = at

	return nil
}

// Payable reports whether the account accepts repayment transactions.
func (a *LoanAccount) Payable() bool {
	return a.Status == AccountActive
}
