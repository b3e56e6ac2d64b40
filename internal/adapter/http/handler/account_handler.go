package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// AccountService defines the read behavior needed by AccountHandler.
type AccountService interface {
	GetAccount(ctx context.Context, id string) (*domain.LoanAccount, error)
	GetSchedule(ctx context.Context, accountID string) ([]*domain.ScheduleEntry, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.RepaymentTransaction, error)
	GetSummary(ctx context.Context, accountID string) (*usecase.AccountSummary, error)
	InvalidateSummary(ctx context.Context, accountID string)
}

// AccountAdminService defines the administrative transitions on an account.
type AccountAdminService interface {
	Suspend(ctx context.Context, accountID, actor string) (*domain.LoanAccount, error)
	Reinstate(ctx context.Context, accountID, actor string) (*domain.LoanAccount, error)
	WaiveEntry(ctx context.Context, accountID string, index int, actor string) error
}

// AccountHandler handles loan account HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	adminUC   AccountAdminService
	auditUC   AuditRecorder
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, adminUC AccountAdminService, auditUC AuditRecorder) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, adminUC: adminUC, auditUC: auditUC}
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Schedule returns the full ordered repayment schedule.
func (h *AccountHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	entries, err := h.accountUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(entries))
}

// Transactions lists an account's repayment transactions.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.accountUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		AccountID: id,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// Summary returns the cached account summary read model.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	summary, err := h.accountUC.GetSummary(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Suspend freezes an active account.
func (h *AccountHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.adminUC.Suspend)
}

// Reinstate unfreezes a suspended account.
func (h *AccountHandler) Reinstate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.adminUC.Reinstate)
}

// Waive administratively forgives one outstanding schedule entry.
func (h *AccountHandler) Waive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if id == "" || err != nil {
		writeError(w, http.StatusBadRequest, "missing account ID or entry index", "")
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err = h.adminUC.WaiveEntry(r.Context(), id, index, req.Actor)

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        req.Actor,
		Action:       domain.AuditActionEntryWaive,
		ResourceType: "account",
		ResourceID:   id,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"entry_index": index},
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to waive entry", err.Error())
		return
	}

	h.accountUC.InvalidateSummary(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"account_id": id, "waived_index": index})
}

func (h *AccountHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, accountID, actor string) (*domain.LoanAccount, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := fn(r.Context(), id, req.Actor)

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        req.Actor,
		Action:       domain.AuditActionAccountTransition,
		ResourceType: "account",
		ResourceID:   id,
		RequestID:    chimiddleware.GetReqID(r.Context()),
		Err:          err,
	})

	if err != nil {
		writeError(w, mapDomainError(err), "failed to transition account", err.Error())
		return
	}

	h.accountUC.InvalidateSummary(r.Context(), id)
	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
