package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepaymentMethod determines how principal and interest are split across
// a loan's term.
type RepaymentMethod string

const (
	// MethodAnnuity is the equal-principal-interest method: a level total
	// payment every month.
	MethodAnnuity RepaymentMethod = "equal_principal_interest"
	// MethodEqualPrincipal pays a constant principal slice every month.
	MethodEqualPrincipal RepaymentMethod = "equal_principal"
	// MethodBullet pays interest only until the full principal falls due
	// in the final month.
	MethodBullet RepaymentMethod = "bullet"
)

// Valid reports whether the method is one of the supported repayment methods.
func (m RepaymentMethod) Valid() bool {
	switch m {
	case MethodAnnuity, MethodEqualPrincipal, MethodBullet:
		return true
	}
	return false
}

// AmortizationTerms are the inputs to schedule generation. Principal is in
// integer minor currency units; AnnualRate is a nominal percentage (6 means
// 6% per year).
type AmortizationTerms struct {
	Principal  int64
	AnnualRate decimal.Decimal
	TermMonths int
	Method     RepaymentMethod
	StartDate  time.Time
}

// Installment is one generated schedule row. RemainingPrincipal is the
// schedule-level running balance after this installment.
type Installment struct {
	Index              int
	DueDate            time.Time
	Principal          int64
	Interest           int64
	Total              int64
	RemainingPrincipal int64
}

var (
	monthsPerYear = decimal.NewFromInt(12)
	percentBase   = decimal.NewFromInt(100)
)

// GenerateSchedule produces the full amortization schedule for the given
// terms. Installment principals sum to Principal exactly; any rounding
// remainder is absorbed into the final installment. All money arithmetic
// rounds half up to integer minor units at each step.
func GenerateSchedule(terms AmortizationTerms) ([]Installment, error) {
	if terms.TermMonths < 1 || terms.Principal <= 0 || terms.AnnualRate.IsNegative() || !terms.Method.Valid() {
		return nil, ErrInvalidTerms
	}

	monthlyRate := terms.AnnualRate.Div(monthsPerYear).Div(percentBase)

	switch terms.Method {
	case MethodAnnuity:
		return generateAnnuity(terms, monthlyRate), nil
	case MethodEqualPrincipal:
		return generateEqualPrincipal(terms, monthlyRate), nil
	case MethodBullet:
		return generateBullet(terms, monthlyRate), nil
	}

	return nil, ErrInvalidTerms
}

func generateAnnuity(terms AmortizationTerms, r decimal.Decimal) []Installment {
	n := terms.TermMonths
	principal := decimal.NewFromInt(terms.Principal)

	// Level payment A = P*r*(1+r)^n / ((1+r)^n - 1). A zero rate degenerates
	// to equal principal slices with no interest.
	var level int64
	if r.IsZero() {
		level = roundMinor(principal.Div(decimal.NewFromInt(int64(n))))
	} else {
		pow := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(n)))
		level = roundMinor(principal.Mul(r).Mul(pow).Div(pow.Sub(decimal.NewFromInt(1))))
	}

	entries := make([]Installment, 0, n)
	balance := terms.Principal

	for k := 1; k <= n; k++ {
		interest := mulRate(balance, r)

		var p int64
		if k == n {
			// Final installment takes the remaining balance so the schedule
			// sums exactly to the principal.
			p = balance
		} else {
			p = level - interest
		}

		balance -= p
		entries = append(entries, Installment{
			Index:              k,
			DueDate:            addMonthsClamped(terms.StartDate, k),
			Principal:          p,
			Interest:           interest,
			Total:              p + interest,
			RemainingPrincipal: balance,
		})
	}

	return entries
}

func generateEqualPrincipal(terms AmortizationTerms, r decimal.Decimal) []Installment {
	n := terms.TermMonths
	slice := roundMinor(decimal.NewFromInt(terms.Principal).Div(decimal.NewFromInt(int64(n))))

	entries := make([]Installment, 0, n)
	balance := terms.Principal

	for k := 1; k <= n; k++ {
		interest := mulRate(balance, r)

		p := slice
		if k == n {
			p = balance
		}

		balance -= p
		entries = append(entries, Installment{
			Index:              k,
			DueDate:            addMonthsClamped(terms.StartDate, k),
			Principal:          p,
			Interest:           interest,
			Total:              p + interest,
			RemainingPrincipal: balance,
		})
	}

	return entries
}

func generateBullet(terms AmortizationTerms, r decimal.Decimal) []Installment {
	n := terms.TermMonths
	entries := make([]Installment, 0, n)

	for k := 1; k <= n; k++ {
		interest := mulRate(terms.Principal, r)

		var p, remaining int64
		if k == n {
			p = terms.Principal
			remaining = 0
		} else {
			remaining = terms.Principal
		}

		entries = append(entries, Installment{
			Index:              k,
			DueDate:            addMonthsClamped(terms.StartDate, k),
			Principal:          p,
			Interest:           interest,
			Total:              p + interest,
			RemainingPrincipal: remaining,
		})
	}

	return entries
}

// mulRate multiplies an amount in minor units by a decimal rate and rounds
// half up.
func mulRate(amount int64, rate decimal.Decimal) int64 {
	return roundMinor(decimal.NewFromInt(amount).Mul(rate))
}

// roundMinor rounds half up to whole minor units. Round is half away from
// zero, which is half up for the non-negative amounts handled here.
func roundMinor(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// addMonthsClamped adds k months keeping the day of month, clamped to the
// target month's length (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, k int) time.Time {
	year, month, day := t.Date()

	m := int(month) + k
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
