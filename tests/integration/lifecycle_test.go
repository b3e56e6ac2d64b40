package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
)

func TestLoanLifecycle(t *testing.T) {
	env := newTestEnv(t)

	t.Run("full lifecycle to active", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		principal := int64(1_200_000)
		start := time.Now().UTC()
		account := env.createActiveLoan(t, principal, "12", 12, start)

		if account.Status != "active" {
			t.Errorf("expected active account, got %s", account.Status)
		}
		if account.PrincipalBalance != principal {
			t.Errorf("expected balance %d, got %d", principal, account.PrincipalBalance)
		}
		if account.RemainingPeriods != 12 {
			t.Errorf("expected 12 remaining periods, got %d", account.RemainingPeriods)
		}

		// The schedule must carry exactly one entry per month, and scheduled
		// principal must sum to the disbursed amount.
		w := env.do(t, http.MethodGet, "/api/v1/accounts/"+account.ID+"/schedule", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get schedule failed: %d %s", w.Code, w.Body.String())
		}
		schedule := decode[[]dto.ScheduleEntryResponse](t, w)
		if len(schedule) != 12 {
			t.Fatalf("expected 12 schedule entries, got %d", len(schedule))
		}

		var principalSum int64
		for _, entry := range schedule {
			principalSum += entry.PrincipalDue
			if entry.Status != "unpaid" {
				t.Errorf("entry %d: expected unpaid, got %s", entry.Index, entry.Status)
			}
		}
		if principalSum != principal {
			t.Errorf("scheduled principal sums to %d, want %d", principalSum, principal)
		}

		// The application behind the account is now active.
		w = env.do(t, http.MethodGet, "/api/v1/applications/"+account.ApplicationID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get application failed: %d %s", w.Code, w.Body.String())
		}
		app := decode[dto.ApplicationResponse](t, w)
		if app.Status != "active" {
			t.Errorf("expected active application, got %s", app.Status)
		}

		// Approval and disbursement are on the audit trail.
		w = env.do(t, http.MethodGet, "/api/v1/audit/application/"+account.ApplicationID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get audit trail failed: %d %s", w.Code, w.Body.String())
		}
		trail := decode[[]dto.AuditLogResponse](t, w)
		if len(trail) < 2 {
			t.Errorf("expected at least two audit entries, got %d", len(trail))
		}
	})

	t.Run("reject approve before review", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		product := env.db.CreateTestProduct(env.ctx, "band", domain.MethodAnnuity)

		w := env.do(t, http.MethodPost, "/api/v1/applications", dto.CreateApplicationRequest{
			BorrowerID:      "borrower-2",
			ProductID:       product.ID,
			RequestedAmount: 500_000,
			CollateralValue: 2_000_000,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create application failed: %d %s", w.Code, w.Body.String())
		}
		app := decode[dto.ApplicationResponse](t, w)

		w = env.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/approve", dto.ApproveApplicationRequest{
			Reviewer:   "reviewer-1",
			Amount:     500_000,
			Rate:       decimal.RequireFromString("10"),
			TermMonths: 12,
		})
		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("reject approval above ltv cap", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		product := env.db.CreateTestProduct(env.ctx, "ltv", domain.MethodAnnuity)

		// 70% cap on 1,000,000 of collateral allows at most 700,000.
		w := env.do(t, http.MethodPost, "/api/v1/applications", dto.CreateApplicationRequest{
			BorrowerID:      "borrower-3",
			ProductID:       product.ID,
			RequestedAmount: 800_000,
			CollateralValue: 1_000_000,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create application failed: %d %s", w.Code, w.Body.String())
		}
		app := decode[dto.ApplicationResponse](t, w)

		for _, step := range []string{"submit", "review"} {
			w = env.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/"+step, dto.TransitionRequest{Actor: "borrower-3"})
			if w.Code != http.StatusOK {
				t.Fatalf("%s failed: %d %s", step, w.Code, w.Body.String())
			}
		}

		w = env.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/approve", dto.ApproveApplicationRequest{
			Reviewer:   "reviewer-1",
			Amount:     800_000,
			Rate:       decimal.RequireFromString("10"),
			TermMonths: 12,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
	})

	t.Run("rejected application stays terminal", func(t *testing.T) {
		env.db.TruncateAll(env.ctx)

		product := env.db.CreateTestProduct(env.ctx, "terminal", domain.MethodEqualPrincipal)

		w := env.do(t, http.MethodPost, "/api/v1/applications", dto.CreateApplicationRequest{
			BorrowerID:      "borrower-4",
			ProductID:       product.ID,
			RequestedAmount: 500_000,
			CollateralValue: 2_000_000,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create application failed: %d %s", w.Code, w.Body.String())
		}
		app := decode[dto.ApplicationResponse](t, w)

		for _, step := range []string{"submit", "review", "reject"} {
			w = env.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/"+step, dto.TransitionRequest{Actor: "reviewer-1"})
			if w.Code != http.StatusOK {
				t.Fatalf("%s failed: %d %s", step, w.Code, w.Body.String())
			}
		}

		w = env.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/submit", dto.TransitionRequest{Actor: "borrower-4"})
		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("schedule preview without persistence", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/schedules/preview", dto.SchedulePreviewRequest{
			Principal:  1_200_000,
			AnnualRate: decimal.RequireFromString("12"),
			TermMonths: 12,
			Method:     string(domain.MethodEqualPrincipal),
			StartDate:  time.Now().UTC(),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("preview failed: %d %s", w.Code, w.Body.String())
		}

		installments := decode[[]dto.InstallmentResponse](t, w)
		if len(installments) != 12 {
			t.Fatalf("expected 12 installments, got %d", len(installments))
		}
		for _, ins := range installments {
			if ins.Principal != 100_000 {
				t.Errorf("installment %d: expected principal 100000, got %d", ins.Index, ins.Principal)
			}
		}
		if installments[11].RemainingPrincipal != 0 {
			t.Errorf("expected zero remaining principal at term end, got %d", installments[11].RemainingPrincipal)
		}
	})
}
