package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string          `json:"id"`
	AccountType string          `json:"account_type"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Version     int64           `json:"version"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		AccountType: string(a.AccountType),
		Currency:    a.Currency,
		Balance:     a.Balance,
		Version:     a.Version,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	TransactionType      string          `json:"transaction_type"`
	Amount               decimal.Decimal `json:"amount"`
	SourceAccountID      *string         `json:"source_account_id,omitempty"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty"`
	Timestamp            time.Time       `json:"timestamp"`
	ReasonCode           string          `json:"reason_code"`
	IdempotencyKey       string          `json:"idempotency_key"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		TransactionType:      string(t.TransactionType),
		Amount:               t.Amount,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Timestamp:            t.Timestamp,
		ReasonCode:           t.ReasonCode,
		IdempotencyKey:       t.IdempotencyKey,
		Metadata:             t.Metadata,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	EntryType     string          `json:"entry_type"`
	Timestamp     time.Time       `json:"timestamp"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Amount:        e.Amount,
		EntryType:     string(e.EntryType),
		Timestamp:     e.Timestamp,
		BalanceAfter:  e.BalanceAfter,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// ReconciliationResponse represents a per-account reconciliation result.
type ReconciliationResponse struct {
	AccountID      string          `json:"account_id"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	EntrySum       decimal.Decimal `json:"entry_sum"`
	Consistent     bool            `json:"consistent"`
	CheckedAt      time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.AccountReconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:      r.AccountID,
		RunningBalance: r.RunningBalance,
		EntrySum:       r.EntrySum,
		Consistent:     r.Consistent,
		CheckedAt:      r.CheckedAt,
	}
}

// ReconciliationReportResponse represents a ledger-wide reconciliation
// summary.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	TransfersBalanced  bool                      `json:"transfers_balanced"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.Report) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		TransfersBalanced:  r.TransfersBalanced,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
