package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corefin/ledger/internal/adapter/http/dto"
	"github.com/corefin/ledger/internal/usecase"
)

// EntryHandler handles entry-related HTTP requests. Entries are read-only
// over HTTP; they only come into existence through committed transactions.
type EntryHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerUC *usecase.LedgerUseCase) *EntryHandler {
	return &EntryHandler{ledgerUC: ledgerUC}
}

// ListByAccount lists entries for an account, newest first.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.EntriesForAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByTransaction lists the entries posted by a transaction, oldest first.
func (h *EntryHandler) ListByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	entries, err := h.ledgerUC.EntriesForTransaction(r.Context(), transactionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
