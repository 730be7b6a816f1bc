package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/corefin/ledger/internal/adapter/http/dto"
	"github.com/corefin/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIdempotencyViolation),
		errors.Is(err, domain.ErrNotReversible):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingSourceAccount),
		errors.Is(err, domain.ErrMissingDestinationAccount),
		errors.Is(err, domain.ErrMissingAccountForTransfer),
		errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidReasonCode),
		errors.Is(err, domain.ErrInvalidKey),
		errors.Is(err, domain.ErrMetadataTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
