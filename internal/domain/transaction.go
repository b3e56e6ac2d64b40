package domain

import "time"

// TransactionStatus is the state of a repayment transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionSuccess   TransactionStatus = "success"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// TransactionType distinguishes ordinary repayments from early payoffs.
type TransactionType string

const (
	TransactionRepayment   TransactionType = "repayment"
	TransactionEarlyPayoff TransactionType = "early_payoff"
)

// RepaymentTransaction is one append-only payment event. TransactionNo is
// the idempotency key; once the status is success the record is immutable.
type RepaymentTransaction struct {
	TransactionNo    string
	AccountID        string
	TargetEntryIndex *int
	Type             TransactionType
	Amount           int64
	PaymentDate      time.Time
	Method           string
	PrincipalApplied int64
	InterestApplied  int64
	PenaltyApplied   int64
	FeesApplied      int64
	Status           TransactionStatus
	BankReference    string
	CreatedAt        time.Time
}

// AppliedBreakdown returns the allocation split recorded on the transaction.
func (t *RepaymentTransaction) AppliedBreakdown() Breakdown {
	return Breakdown{
		Fees:      t.FeesApplied,
		Penalty:   t.PenaltyApplied,
		Interest:  t.InterestApplied,
		Principal: t.PrincipalApplied,
	}
}

// Validate checks the conservation invariant: the breakdown of a successful
// transaction sums exactly to its amount.
func (t *RepaymentTransaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}

	if t.Status == TransactionSuccess && t.AppliedBreakdown().Total() != t.Amount {
		return ErrInvariantViolation
	}

	return nil
}
