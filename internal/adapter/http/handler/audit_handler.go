package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// AuditRecorder records one mutating operation. Handlers treat recording as
// best-effort: a failed audit write never fails the request.
type AuditRecorder interface {
	Record(ctx context.Context, input usecase.RecordAuditInput) error
}

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	History(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	auditUC AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC AuditService) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// History lists audit records for one resource, newest first.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	resourceID := chi.URLParam(r, "id")
	if resourceType == "" || resourceID == "" {
		writeError(w, http.StatusBadRequest, "missing resource type or ID", "")
		return
	}

	logs, err := h.auditUC.History(r.Context(), resourceType, resourceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit trail", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// recordAudit records an audit entry when a recorder is configured.
func recordAudit(ctx context.Context, rec AuditRecorder, input usecase.RecordAuditInput) {
	if rec == nil {
		return
	}
	_ = rec.Record(ctx, input)
}
