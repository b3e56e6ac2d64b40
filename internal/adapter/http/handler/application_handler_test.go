package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

type applicationServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateApplicationInput) (*domain.LoanApplication, error)
	getFn      func(ctx context.Context, id string) (*domain.LoanApplication, error)
	submitFn   func(ctx context.Context, id, actor string) (*domain.LoanApplication, error)
	reviewFn   func(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error)
	approveFn  func(ctx context.Context, input usecase.ApproveInput) (*domain.LoanApplication, error)
	rejectFn   func(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error)
	cancelFn   func(ctx context.Context, id, actor string) (*domain.LoanApplication, error)
	disburseFn func(ctx context.Context, input usecase.DisburseInput) (*domain.LoanAccount, error)
}

func (s *applicationServiceStub) CreateApplication(ctx context.Context, input usecase.CreateApplicationInput) (*domain.LoanApplication, error) {
	return s.createFn(ctx, input)
}

func (s *applicationServiceStub) GetApplication(ctx context.Context, id string) (*domain.LoanApplication, error) {
	return s.getFn(ctx, id)
}

func (s *applicationServiceStub) Submit(ctx context.Context, id, actor string) (*domain.LoanApplication, error) {
	return s.submitFn(ctx, id, actor)
}

func (s *applicationServiceStub) StartReview(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error) {
	return s.reviewFn(ctx, id, reviewer)
}

func (s *applicationServiceStub) Approve(ctx context.Context, input usecase.ApproveInput) (*domain.LoanApplication, error) {
	return s.approveFn(ctx, input)
}

func (s *applicationServiceStub) Reject(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error) {
	return s.rejectFn(ctx, id, reviewer)
}

func (s *applicationServiceStub) Cancel(ctx context.Context, id, actor string) (*domain.LoanApplication, error) {
	return s.cancelFn(ctx, id, actor)
}

func (s *applicationServiceStub) Disburse(ctx context.Context, input usecase.DisburseInput) (*domain.LoanAccount, error) {
	return s.disburseFn(ctx, input)
}

func TestApplicationHandler_Create_Success(t *testing.T) {
	app := &domain.LoanApplication{
		ID:              "app-1",
		BorrowerID:      "borrower-1",
		ProductID:       "prod-1",
		RequestedAmount: 10_000_000,
		Status:          domain.ApplicationPending,
	}

	var captured usecase.CreateApplicationInput
	h := NewApplicationHandler(&applicationServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateApplicationInput) (*domain.LoanApplication, error) {
			captured = input
			return app, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateApplicationRequest{
		BorrowerID:      "borrower-1",
		ProductID:       "prod-1",
		RequestedAmount: 10_000_000,
		CollateralValue: 20_000_000,
	})

	req := httptest.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.BorrowerID != "borrower-1" || captured.RequestedAmount != 10_000_000 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.ApplicationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "app-1" || resp.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApplicationHandler_Approve_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"terms outside band", domain.ErrTermsOutsideProduct, http.StatusBadRequest},
		{"ltv exceeded", domain.ErrLTVExceeded, http.StatusBadRequest},
		{"not under review", domain.ErrInvalidTransition, http.StatusConflict},
		{"missing application", domain.ErrApplicationNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			audit := &auditRecorderStub{}
			h := NewApplicationHandler(&applicationServiceStub{
				approveFn: func(ctx context.Context, input usecase.ApproveInput) (*domain.LoanApplication, error) {
					return nil, tt.err
				},
			}, audit)

			body, _ := json.Marshal(dto.ApproveApplicationRequest{
				Reviewer:   "reviewer-1",
				Amount:     5_000_000,
				Rate:       decimal.NewFromInt(6),
				TermMonths: 12,
			})

			req := withURLParams(httptest.NewRequest(http.MethodPost, "/applications/app-1/approve", bytes.NewReader(body)), "id", "app-1")
			rec := httptest.NewRecorder()

			h.Approve(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}

			// Failures are audited too.
			if len(audit.recorded) != 1 || audit.recorded[0].Err == nil {
				t.Fatalf("expected failed audit record, got %+v", audit.recorded)
			}
		})
	}
}

func TestApplicationHandler_Disburse_Success(t *testing.T) {
	startDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	account := &domain.LoanAccount{
		ID:               "acc-1",
		ApplicationID:    "app-1",
		PrincipalAmount:  12_000_000,
		PrincipalBalance: 12_000_000,
		TermMonths:       12,
		Status:           domain.AccountActive,
		StartDate:        startDate,
	}

	var captured usecase.DisburseInput
	audit := &auditRecorderStub{}
	h := NewApplicationHandler(&applicationServiceStub{
		disburseFn: func(ctx context.Context, input usecase.DisburseInput) (*domain.LoanAccount, error) {
			captured = input
			return account, nil
		},
	}, audit)

	body, _ := json.Marshal(dto.DisburseRequest{
		Amount:     12_000_000,
		Rate:       decimal.NewFromInt(6),
		TermMonths: 12,
		StartDate:  startDate,
		Actor:      "ops-1",
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/applications/app-1/disburse", bytes.NewReader(body)), "id", "app-1")
	rec := httptest.NewRecorder()

	h.Disburse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ApplicationID != "app-1" || captured.Amount != 12_000_000 || captured.Actor != "ops-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	if len(audit.recorded) != 1 || audit.recorded[0].Action != domain.AuditActionDisburse {
		t.Fatalf("expected disburse audit record, got %+v", audit.recorded)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.PrincipalBalance != 12_000_000 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApplicationHandler_Submit_MissingID(t *testing.T) {
	h := NewApplicationHandler(&applicationServiceStub{
		submitFn: func(ctx context.Context, id, actor string) (*domain.LoanApplication, error) {
			t.Fatal("Submit should not be called without an ID")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/applications//submit", bytes.NewBufferString(`{"actor":"b-1"}`))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
