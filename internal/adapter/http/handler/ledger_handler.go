package handler

import (
	"context"
	"net/http"

	"github.com/iho/loanledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyResult, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	accountUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(accountUC LedgerService) *LedgerHandler {
	return &LedgerHandler{accountUC: accountUC}
}

// CheckConsistency verifies every account balance against its transaction
// history. Inconsistency is reported with 409 so monitoring can alert on it.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	result, err := h.accountUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	status := http.StatusOK
	if !result.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, result)
}
