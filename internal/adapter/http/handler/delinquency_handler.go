package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// SweepService defines the behavior needed by DelinquencyHandler.
type SweepService interface {
	RunSweep(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error)
}

// DelinquencyHandler triggers delinquency sweeps on demand. The scheduled
// sweeper uses the same use case; this endpoint exists for operations.
type DelinquencyHandler struct {
	delinquencyUC SweepService
	auditUC       AuditRecorder
}

// NewDelinquencyHandler creates a new DelinquencyHandler.
func NewDelinquencyHandler(delinquencyUC SweepService, auditUC AuditRecorder) *DelinquencyHandler {
	return &DelinquencyHandler{delinquencyUC: delinquencyUC, auditUC: auditUC}
}

// RunSweep re-evaluates overdue state for all active accounts. An empty body
// sweeps as of now.
func (h *DelinquencyHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	var req dto.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	report, err := h.delinquencyUC.RunSweep(r.Context(), asOf)

	recordAudit(r.Context(), h.auditUC, usecase.RecordAuditInput{
		Actor:        "operations",
		Action:       domain.AuditActionDelinquencySweep,
		ResourceType: "ledger",
		ResourceID:   "sweep",
		RequestID:    chimiddleware.GetReqID(r.Context()),
		AfterState:   map[string]any{"as_of": asOf.Format(time.RFC3339)},
		Err:          err,
	})

	if err != nil {
		writeError(w, http.StatusInternalServerError, "sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
