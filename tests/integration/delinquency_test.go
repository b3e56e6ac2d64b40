package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/tests/testutil"
)

func TestDelinquencySweep(t *testing.T) {
	env := newTestEnv(t)

	t.Run("sweep marks overdue entries and accrues late fees", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		// One installment roughly 15 days overdue.
		start := time.Now().UTC().AddDate(0, 0, -45)
		account := env.createActiveLoan(t, 1_200_000, "12", 12, start)

		w := env.do(t, http.MethodPost, "/api/v1/delinquency/sweep", dto.SweepRequest{})
		if w.Code != http.StatusOK {
			t.Fatalf("sweep failed: %d %s", w.Code, w.Body.String())
		}
		report := decode[usecase.SweepReport](t, w)

		if report.AccountsChecked != 1 {
			t.Errorf("expected 1 account checked, got %d", report.AccountsChecked)
		}
		if report.AccountsOverdue != 1 {
			t.Errorf("expected 1 overdue account, got %d", report.AccountsOverdue)
		}
		if report.EntriesOverdue != 1 {
			t.Errorf("expected 1 overdue entry, got %d", report.EntriesOverdue)
		}
		if report.AccountsDefaulted != 0 {
			t.Errorf("expected no defaults, got %d", report.AccountsDefaulted)
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID, nil)
		got := decode[dto.AccountResponse](t, w)
		if got.Status != "active" {
			t.Errorf("expected account still active, got %s", got.Status)
		}
		if got.OverdueMonths != 1 {
			t.Errorf("expected 1 overdue month, got %d", got.OverdueMonths)
		}
		if got.OverdueAmount <= 0 {
			t.Errorf("expected positive overdue amount, got %d", got.OverdueAmount)
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		schedule := decode[[]dto.ScheduleEntryResponse](t, w)
		first := schedule[0]
		if first.Status != "overdue" {
			t.Errorf("expected overdue entry, got %s", first.Status)
		}
		if first.DaysOverdue <= 0 {
			t.Errorf("expected positive days overdue, got %d", first.DaysOverdue)
		}
		if first.LateFeeAccrued <= 0 {
			t.Errorf("expected accrued late fee, got %d", first.LateFeeAccrued)
		}
	})

	t.Run("sweep is idempotent for a fixed reference date", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		start := time.Now().UTC().AddDate(0, 0, -45)
		account := env.createActiveLoan(t, 1_200_000, "12", 12, start)

		asOf := time.Now().UTC()

		w := env.do(t, http.MethodPost, "/api/v1/delinquency/sweep", dto.SweepRequest{AsOf: &asOf})
		if w.Code != http.StatusOK {
			t.Fatalf("first sweep failed: %d %s", w.Code, w.Body.String())
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		feeAfterFirst := decode[[]dto.ScheduleEntryResponse](t, w)[0].LateFeeAccrued

		// Re-running against the same date recomputes the same fee.
		w = env.do(t, http.MethodPost, "/api/v1/delinquency/sweep", dto.SweepRequest{AsOf: &asOf})
		if w.Code != http.StatusOK {
			t.Fatalf("second sweep failed: %d %s", w.Code, w.Body.String())
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		feeAfterSecond := decode[[]dto.ScheduleEntryResponse](t, w)[0].LateFeeAccrued

		if feeAfterFirst != feeAfterSecond {
			t.Errorf("late fee drifted across sweeps: %d vs %d", feeAfterFirst, feeAfterSecond)
		}
	})

	t.Run("account defaults past the threshold", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		// Five installments overdue, threshold is three.
		start := time.Now().UTC().AddDate(0, -5, -5)
		account := env.createActiveLoan(t, 1_200_000, "12", 12, start)

		w := env.do(t, http.MethodPost, "/api/v1/delinquency/sweep", dto.SweepRequest{})
		if w.Code != http.StatusOK {
			t.Fatalf("sweep failed: %d %s", w.Code, w.Body.String())
		}
		report := decode[usecase.SweepReport](t, w)

		if report.AccountsDefaulted != 1 {
			t.Errorf("expected 1 defaulted account, got %d", report.AccountsDefaulted)
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID, nil)
		got := decode[dto.AccountResponse](t, w)
		if got.Status != "defaulted" {
			t.Errorf("expected defaulted account, got %s", got.Status)
		}

		// A defaulted account no longer accepts ordinary payments.
		w = env.do(t, http.MethodPost, "/api/v1/accounts/"+account.ID+"/payments", dto.ApplyPaymentRequest{
			TransactionNo: "txn-" + testutil.GenerateID(),
			Amount:        1000,
			PaymentDate:   time.Now().UTC(),
			Method:        "bank_transfer",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})

	t.Run("overdue payment waterfall collects the late fee first", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		start := time.Now().UTC().AddDate(0, 0, -45)
		account := env.createActiveLoan(t, 1_200_000, "12", 12, start)

		w := env.do(t, http.MethodPost, "/api/v1/delinquency/sweep", dto.SweepRequest{})
		if w.Code != http.StatusOK {
			t.Fatalf("sweep failed: %d %s", w.Code, w.Body.String())
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		first := decode[[]dto.ScheduleEntryResponse](t, w)[0]
		owed := first.TotalDue + first.LateFeeAccrued

		w = env.do(t, http.MethodPost, "/api/v1/accounts/"+account.ID+"/payments", dto.ApplyPaymentRequest{
			TransactionNo: "txn-" + testutil.GenerateID(),
			Amount:        owed,
			PaymentDate:   time.Now().UTC(),
			Method:        "bank_transfer",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("payment failed: %d %s", w.Code, w.Body.String())
		}
		txn := decode[dto.TransactionResponse](t, w)

		if txn.FeesApplied != first.LateFeeAccrued {
			t.Errorf("expected fees applied %d, got %d", first.LateFeeAccrued, txn.FeesApplied)
		}
		if txn.PrincipalApplied != first.PrincipalDue {
			t.Errorf("expected principal applied %d, got %d", first.PrincipalDue, txn.PrincipalApplied)
		}

		w = env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		settled := decode[[]dto.ScheduleEntryResponse](t, w)[0]
		if settled.Status != "paid" {
			t.Errorf("expected settled entry, got %s", settled.Status)
		}
	})
}
