package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/iho/loanledger/internal/adapter/http"
	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/loanledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/loanledger/internal/adapter/repository/redis"
	"github.com/iho/loanledger/internal/domain"
	infraredis "github.com/iho/loanledger/internal/infrastructure/redis"
	"github.com/iho/loanledger/internal/usecase"
	"github.com/iho/loanledger/tests/testutil"
)

// testEnv wires the full stack (postgres, redis, router) for one test.
type testEnv struct {
	ctx    context.Context
	db     *testutil.TestDB
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	txManager := postgresRepo.NewTxManager(pool)
	productRepo := postgresRepo.NewProductRepository(pool)
	applicationRepo := postgresRepo.NewApplicationRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	scheduleRepo := postgresRepo.NewScheduleRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)
	cache := redisrepo.NewCache(redisClient)

	productUC := usecase.NewProductUseCase(productRepo, idGen)
	lifecycleUC := usecase.NewLifecycleUseCase(txManager, productRepo, applicationRepo, accountRepo, scheduleRepo, outboxRepo, idGen)
	paymentUC := usecase.NewPaymentUseCase(txManager, accountRepo, scheduleRepo, transactionRepo, applicationRepo, outboxRepo, idGen).
		WithRetrier(postgresRepo.NewRetrier(zerolog.New(io.Discard)))
	delinquencyUC := usecase.NewDelinquencyUseCase(txManager, accountRepo, scheduleRepo, outboxRepo, idGen, usecase.DelinquencyConfig{
		DailyPenaltyRate:       decimal.RequireFromString("0.001"),
		DefaultThresholdMonths: 3,
	})
	accountUC := usecase.NewAccountUseCase(accountRepo, scheduleRepo, transactionRepo, ledgerRepo, cache)
	auditUC := usecase.NewAuditUseCase(auditRepo, idGen)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		ProductHandler:     handler.NewProductHandler(productUC),
		ApplicationHandler: handler.NewApplicationHandler(lifecycleUC, auditUC),
		AccountHandler:     handler.NewAccountHandler(accountUC, lifecycleUC, auditUC),
		PaymentHandler:     handler.NewPaymentHandler(paymentUC, accountUC, auditUC),
		ScheduleHandler:    handler.NewScheduleHandler(),
		DelinquencyHandler: handler.NewDelinquencyHandler(delinquencyUC, auditUC),
		LedgerHandler:      handler.NewLedgerHandler(accountUC),
		AuditHandler:       handler.NewAuditHandler(auditUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		Logger:             zerolog.New(io.Discard),
	})

	return &testEnv{ctx: ctx, db: testDB, router: router}
}

// do executes one request against the in-process router.
func (e *testEnv) do(t *testing.T, method, path string, payload any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, body)
	r.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}

// createActiveLoan walks a fresh application through the whole lifecycle:
// create, submit, review, approve, disburse. Collateral is set high enough
// to clear the product's LTV cap.
func (e *testEnv) createActiveLoan(t *testing.T, principal int64, rate string, termMonths int, startDate time.Time) *dto.AccountResponse {
	t.Helper()

	product := e.db.CreateTestProduct(e.ctx, "test-loan", domain.MethodAnnuity)

	w := e.do(t, http.MethodPost, "/api/v1/applications", dto.CreateApplicationRequest{
		BorrowerID:      "borrower-1",
		ProductID:       product.ID,
		RequestedAmount: principal,
		CollateralDesc:  "apartment deed",
		CollateralValue: principal * 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create application failed: %d %s", w.Code, w.Body.String())
	}
	app := decode[dto.ApplicationResponse](t, w)

	for _, step := range []string{"submit", "review"} {
		w = e.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/"+step, dto.TransitionRequest{Actor: "borrower-1"})
		if w.Code != http.StatusOK {
			t.Fatalf("%s failed: %d %s", step, w.Code, w.Body.String())
		}
	}

	w = e.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/approve", dto.ApproveApplicationRequest{
		Reviewer:   "reviewer-1",
		Amount:     principal,
		Rate:       decimal.RequireFromString(rate),
		TermMonths: termMonths,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/disburse", dto.DisburseRequest{
		Amount:     principal,
		Rate:       decimal.RequireFromString(rate),
		TermMonths: termMonths,
		StartDate:  startDate,
		Actor:      "operations-1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("disburse failed: %d %s", w.Code, w.Body.String())
	}

	account := decode[dto.AccountResponse](t, w)
	return &account
}
