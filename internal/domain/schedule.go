package domain

import "time"

// EntryStatus is the payment status of one schedule entry.
type EntryStatus string

const (
	EntryUnpaid  EntryStatus = "unpaid"
	EntryPartial EntryStatus = "partial"
	EntryPaid    EntryStatus = "paid"
	EntryOverdue EntryStatus = "overdue"
	EntryWaived  EntryStatus = "waived"
)

// ScheduleEntry is one installment row, keyed by (AccountID, Index). The
// generated dues and RemainingPrincipal are fixed at generation time; only
// the allocator and the delinquency sweep mutate an entry afterwards.
type ScheduleEntry struct {
	AccountID          string
	Index              int
	DueDate            time.Time
	PrincipalDue       int64
	InterestDue        int64
	TotalDue           int64
	RemainingPrincipal int64
	Status             EntryStatus

	// Cumulative amounts applied by the allocator, per waterfall component.
	FeePaid       int64
	PenaltyPaid   int64
	InterestPaid  int64
	PrincipalPaid int64

	// Accruals owed on top of the scheduled dues.
	LateFeeAccrued int64
	PenaltyDue     int64

	DaysOverdue int
	PaidAmount  int64
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Breakdown is the split of a payment across the waterfall components.
type Breakdown struct {
	Fees      int64 `json:"fees"`
	Penalty   int64 `json:"penalty"`
	Interest  int64 `json:"interest"`
	Principal int64 `json:"principal"`
}

// Total returns the sum of all components.
func (b Breakdown) Total() int64 {
	return b.Fees + b.Penalty + b.Interest + b.Principal
}

// Add accumulates another breakdown into this one.
func (b *Breakdown) Add(other Breakdown) {
	b.Fees += other.Fees
	b.Penalty += other.Penalty
	b.Interest += other.Interest
	b.Principal += other.Principal
}

// OutstandingFee returns the unpaid part of the accrued late fee.
func (e *ScheduleEntry) OutstandingFee() int64 {
	return e.LateFeeAccrued - e.FeePaid
}

// OutstandingPenalty returns the unpaid part of posted penalties.
func (e *ScheduleEntry) OutstandingPenalty() int64 {
	return e.PenaltyDue - e.PenaltyPaid
}

// OutstandingInterest returns the unpaid part of the scheduled interest.
func (e *ScheduleEntry) OutstandingInterest() int64 {
	return e.InterestDue - e.InterestPaid
}

// OutstandingPrincipal returns the unpaid part of the scheduled principal.
func (e *ScheduleEntry) OutstandingPrincipal() int64 {
	return e.PrincipalDue - e.PrincipalPaid
}

// Outstanding returns everything still owed on this entry.
func (e *ScheduleEntry) Outstanding() int64 {
	return e.OutstandingFee() + e.OutstandingPenalty() + e.OutstandingInterest() + e.OutstandingPrincipal()
}

// Settled reports whether nothing more is owed on this entry.
func (e *ScheduleEntry) Settled() bool {
	return e.Outstanding() == 0
}

// Outstanding statuses an untargeted payment may be allocated against.
func (e *ScheduleEntry) Allocatable() bool {
	switch e.Status {
	case EntryUnpaid, EntryPartial, EntryOverdue:
		return true
	}
	return false
}

// ApplyWaterfall allocates up to amount against this entry in fixed order:
// late fee, penalty, interest, principal. It mutates the entry's cumulative
// paid amounts and status, and returns the split actually applied. The
// applied amount never exceeds what the entry has outstanding.
func (e *ScheduleEntry) ApplyWaterfall(amount int64, at time.Time) Breakdown {
	var b Breakdown

	take := func(outstanding int64) int64 {
		if amount <= 0 || outstanding <= 0 {
			return 0
		}
		applied := outstanding
		if amount < applied {
			applied = amount
		}
		amount -= applied
		return applied
	}

	b.Fees = take(e.OutstandingFee())
	e.FeePaid += b.Fees

	b.Penalty = take(e.OutstandingPenalty())
	e.PenaltyPaid += b.Penalty

	b.Interest = take(e.OutstandingInterest())
	e.InterestPaid += b.Interest

	b.Principal = take(e.OutstandingPrincipal())
	e.PrincipalPaid += b.Principal

	applied := b.Total()
	if applied > 0 {
		e.PaidAmount += applied
		paidAt := at
		e.PaidAt = &paidAt
		e.UpdatedAt = at

		if e.Settled() {
			e.Status = EntryPaid
		} else {
			e.Status = EntryPartial
		}
	}

	return b
}
