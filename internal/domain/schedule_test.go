package domain

import (
	"testing"
	"time"
)

func dueEntry() *ScheduleEntry {
	return &ScheduleEntry{
		AccountID:      "acc-1",
		Index:          1,
		PrincipalDue:   375_000,
		InterestDue:    60_000,
		TotalDue:       435_000,
		LateFeeAccrued: 5_000,
		PenaltyDue:     10_000,
		Status:         EntryOverdue,
	}
}

func TestScheduleEntry_WaterfallOrder(t *testing.T) {
	// A payment covering everything allocates fee, penalty, interest,
	// principal in exactly that order.
	e := dueEntry()
	b := e.ApplyWaterfall(450_000, time.Now())

	if b.Fees != 5_000 || b.Penalty != 10_000 || b.Interest != 60_000 || b.Principal != 375_000 {
		t.Errorf("breakdown = %+v", b)
	}
	if e.Status != EntryPaid {
		t.Errorf("status = %s, want paid", e.Status)
	}
	if !e.Settled() {
		t.Error("entry should be settled")
	}
}

func TestScheduleEntry_WaterfallStopsWhereMoneyRunsOut(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   Breakdown
	}{
		{"covers fee only", 4_000, Breakdown{Fees: 4_000}},
		{"fee then part of penalty", 9_000, Breakdown{Fees: 5_000, Penalty: 4_000}},
		{"through interest", 75_000, Breakdown{Fees: 5_000, Penalty: 10_000, Interest: 60_000}},
		{"into principal", 100_000, Breakdown{Fees: 5_000, Penalty: 10_000, Interest: 60_000, Principal: 25_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := dueEntry()
			b := e.ApplyWaterfall(tt.amount, time.Now())

			if b != tt.want {
				t.Errorf("breakdown = %+v, want %+v", b, tt.want)
			}
			if b.Total() != tt.amount {
				t.Errorf("allocated %d of %d", b.Total(), tt.amount)
			}
			if e.Status != EntryPartial {
				t.Errorf("status = %s, want partial", e.Status)
			}
		})
	}
}

func TestScheduleEntry_WaterfallNeverOverApplies(t *testing.T) {
	e := dueEntry()
	b := e.ApplyWaterfall(10_000_000, time.Now())

	if b.Total() != e.PaidAmount {
		t.Errorf("paid amount %d != allocated %d", e.PaidAmount, b.Total())
	}
	if b.Total() != 450_000 {
		t.Errorf("allocated %d, want outstanding 450000", b.Total())
	}
	if e.OutstandingPrincipal() != 0 || e.OutstandingInterest() != 0 {
		t.Error("entry left with outstanding dues after full allocation")
	}
}

func TestScheduleEntry_CumulativePartialPayments(t *testing.T) {
	e := dueEntry()
	at := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	e.ApplyWaterfall(100_000, at)
	e.ApplyWaterfall(200_000, at.Add(24*time.Hour))

	if e.PaidAmount != 300_000 {
		t.Errorf("cumulative paid = %d, want 300000", e.PaidAmount)
	}
	if e.Status != EntryPartial {
		t.Errorf("status = %s, want partial", e.Status)
	}

	e.ApplyWaterfall(150_000, at.Add(48*time.Hour))
	if e.Status != EntryPaid {
		t.Errorf("status = %s, want paid", e.Status)
	}
	if e.PaidAt == nil || !e.PaidAt.Equal(at.Add(48*time.Hour)) {
		t.Error("paid-at not updated to last allocation time")
	}
}

func TestScheduleEntry_Allocatable(t *testing.T) {
	for status, want := range map[EntryStatus]bool{
		EntryUnpaid:  true,
		EntryPartial: true,
		EntryOverdue: true,
		EntryPaid:    false,
		EntryWaived:  false,
	} {
		e := &ScheduleEntry{Status: status}
		if e.Allocatable() != want {
			t.Errorf("Allocatable(%s) = %v, want %v", status, !want, want)
		}
	}
}

func TestRepaymentTransaction_Validate(t *testing.T) {
	tx := &RepaymentTransaction{
		TransactionNo:    "TXN-1",
		Amount:           450_000,
		Status:           TransactionSuccess,
		FeesApplied:      5_000,
		PenaltyApplied:   10_000,
		InterestApplied:  60_000,
		PrincipalApplied: 375_000,
	}

	if err := tx.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tx.PrincipalApplied = 300_000
	if err := tx.Validate(); err != ErrInvariantViolation {
		t.Errorf("expected ErrInvariantViolation for unbalanced breakdown, got %v", err)
	}

	tx.Amount = 0
	if err := tx.Validate(); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}
