package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corefin/ledger/internal/adapter/http/dto"
	"github.com/corefin/ledger/internal/usecase"
)

// ReconciliationHandler exposes read-only consistency checks.
type ReconciliationHandler struct {
	reconciliationUC *usecase.ReconciliationUseCase
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC *usecase.ReconciliationUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// ReconcileAccount checks one account's running balance against its entries.
func (h *ReconciliationHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report reconciles every account and checks transfer symmetry.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromUseCase(report))
}
