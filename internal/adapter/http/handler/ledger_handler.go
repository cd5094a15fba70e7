package handler

import (
	"context"
	"net/http"

	"github.com/iho/barter/internal/adapter/http/dto"
	"github.com/iho/barter/internal/usecase"
)

// ConsistencyService scans the ledger.
type ConsistencyService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	reconciliationUC ConsistencyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC ConsistencyService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC}
}

// CheckConsistency checks that no account holds a negative item count.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.CheckConsistency(r.Context())
	if err != nil {
		if report != nil {
			// Violations found: report them with the inconsistency status
			writeJSON(w, http.StatusInternalServerError, dto.ConsistencyFromReport(report))
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
