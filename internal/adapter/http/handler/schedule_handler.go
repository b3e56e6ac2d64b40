package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/domain"
)

// ScheduleHandler serves stateless amortization previews.
type ScheduleHandler struct{}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler() *ScheduleHandler {
	return &ScheduleHandler{}
}

// Preview generates an amortization schedule without touching any stored
// state, so borrowers can compare repayment methods before applying.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.SchedulePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	installments, err := domain.GenerateSchedule(req.ToTerms())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentsFromDomain(installments))
}
