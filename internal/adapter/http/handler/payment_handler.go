package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*domain.RepaymentTransaction, error)
	EarlyRepayment(ctx context.Context, input usecase.EarlyRepaymentInput) (*domain.RepaymentTransaction, error)
}

// SummaryInvalidator drops a cached account summary after a mutation.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context, accountID string)
}

// PaymentHandler handles repayment HTTP requests.
type PaymentHandler struct {
	paymentUC   PaymentService
	invalidator SummaryInvalidator
	auditUC     AuditRecorder
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService, invalidator SummaryInvalidator, auditUC AuditRecorder) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC, invalidator: invalidator, auditUC: auditUC}
}

// Apply allocates one repayment across the account's schedule.
func (h *PaymentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.paymentUC.ApplyPayment(r.Context(), req.ToUseCaseInput(accountID))

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        "payments-api",
		Action:       domain.AuditActionPaymentApply,
		ResourceType: "account",
		ResourceID:   accountID,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"transaction_no": req.TransactionNo, "amount": req.Amount},
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply payment", err.Error())
		return
	}

	h.invalidator.InvalidateSummary(r.Context(), accountID)
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// EarlyPayoff settles the whole loan at once.
func (h *PaymentHandler) EarlyPayoff(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.EarlyRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.paymentUC.EarlyRepayment(r.Context(), req.ToUseCaseInput(accountID))

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        "payments-api",
		Action:       domain.AuditActionEarlyRepayment,
		ResourceType: "account",
		ResourceID:   accountID,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"transaction_no": req.TransactionNo},
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle loan early", err.Error())
		return
	}

	h.invalidator.InvalidateSummary(r.Context(), accountID)
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}
