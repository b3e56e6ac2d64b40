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

// ApplicationService defines the behavior needed by ApplicationHandler.
type ApplicationService interface {
	CreateApplication(ctx context.Context, input usecase.CreateApplicationInput) (*domain.LoanApplication, error)
	GetApplication(ctx context.Context, id string) (*domain.LoanApplication, error)
	Submit(ctx context.Context, id, actor string) (*domain.LoanApplication, error)
	StartReview(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error)
	Approve(ctx context.Context, input usecase.ApproveInput) (*domain.LoanApplication, error)
	Reject(ctx context.Context, id, reviewer string) (*domain.LoanApplication, error)
	Cancel(ctx context.Context, id, actor string) (*domain.LoanApplication, error)
	Disburse(ctx context.Context, input usecase.DisburseInput) (*domain.LoanAccount, error)
}

// ApplicationHandler handles loan application HTTP requests.
type ApplicationHandler struct {
	lifecycleUC ApplicationService
	auditUC     AuditRecorder
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(lifecycleUC ApplicationService, auditUC AuditRecorder) *ApplicationHandler {
	return &ApplicationHandler{lifecycleUC: lifecycleUC, auditUC: auditUC}
}

// Create creates a new loan application.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	app, err := h.lifecycleUC.CreateApplication(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create application", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApplicationFromDomain(app))
}

// Get retrieves an application with its status history.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing application ID", "")
		return
	}

	app, err := h.lifecycleUC.GetApplication(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get application", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicationFromDomain(app))
}

// Submit moves a pending application to submitted.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUC.Submit)
}

// StartReview moves a submitted application to reviewing.
func (h *ApplicationHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUC.StartReview)
}

// Reject rejects an application under review.
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUC.Reject)
}

// Cancel cancels an application in any pre-disbursement state.
func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUC.Cancel)
}

// Approve records reviewer-approved terms on an application under review.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing application ID", "")
		return
	}

	var req dto.ApproveApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	app, err := h.lifecycleUC.Approve(r.Context(), req.ToUseCaseInput(id))

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        req.Reviewer,
		Action:       domain.AuditActionApplicationTransition,
		ResourceType: "application",
		ResourceID:   id,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"status": string(domain.ApplicationApproved), "amount": req.Amount},
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve application", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicationFromDomain(app))
}

// Disburse activates an approved application and returns the loan account.
func (h *ApplicationHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing application ID", "")
		return
	}

	var req dto.DisburseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.lifecycleUC.Disburse(r.Context(), req.ToUseCaseInput(id))

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        req.Actor,
		Action:       domain.AuditActionDisburse,
		ResourceType: "application",
		ResourceID:   id,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"amount": req.Amount, "term_months": req.TermMonths},
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to disburse application", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

func (h *ApplicationHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id, actor string) (*domain.LoanApplication, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing application ID", "")
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	app, err := fn(r.Context(), id, req.Actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transition application", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicationFromDomain(app))
}
