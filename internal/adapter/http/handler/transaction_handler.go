package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corefin/ledger/internal/adapter/http/dto"
	"github.com/corefin/ledger/internal/usecase"
)

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC *usecase.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC}
}

// Credit records a credit to an account.
func (h *TransactionHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Credit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record credit", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Debit records a debit from an account.
func (h *TransactionHandler) Debit(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Debit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record debit", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Transfer moves an amount between two accounts.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Adjust records a manual correction against an account.
func (h *TransactionHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Adjust(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record adjustment", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Reverse records a reversal of a committed transaction.
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.Reverse(r.Context(), req.ToUseCaseInput(transactionID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reverse transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.GetTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// GetByKey retrieves a transaction by idempotency key. Clients that hit a
// duplicate-key conflict fetch the prior result here.
func (h *TransactionHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing idempotency key", "")
		return
	}

	txn, err := h.ledgerUC.GetTransactionByKey(r.Context(), key)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Balance returns an account's current balance.
func (h *TransactionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	balance, err := h.ledgerUC.Balance(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// ListByAccount lists an account's transactions, newest first.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transactions, err := h.ledgerUC.History(r.Context(), usecase.HistoryInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
