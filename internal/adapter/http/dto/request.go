package dto

import (
	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	AccountType string         `json:"account_type"`
	Currency    string         `json:"currency"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		AccountType: domain.AccountType(r.AccountType),
		Currency:    r.Currency,
		Metadata:    r.Metadata,
	}
}

// MovementRequest represents a one-sided credit or debit request.
type MovementRequest struct {
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	ReasonCode     string          `json:"reason_code"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *MovementRequest) ToUseCaseInput() usecase.MovementInput {
	return usecase.MovementInput{
		AccountID:      r.AccountID,
		Amount:         r.Amount,
		ReasonCode:     r.ReasonCode,
		IdempotencyKey: r.IdempotencyKey,
		Metadata:       r.Metadata,
	}
}

// TransferRequest represents a request to transfer between two accounts.
type TransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	ReasonCode           string          `json:"reason_code"`
	IdempotencyKey       string          `json:"idempotency_key"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		ReasonCode:           r.ReasonCode,
		IdempotencyKey:       r.IdempotencyKey,
		Metadata:             r.Metadata,
	}
}

// AdjustRequest represents a manual correction request.
type AdjustRequest struct {
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction"`
	ReasonCode     string          `json:"reason_code"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustRequest) ToUseCaseInput() usecase.AdjustInput {
	return usecase.AdjustInput{
		AccountID:      r.AccountID,
		Amount:         r.Amount,
		Direction:      domain.EntryType(r.Direction),
		ReasonCode:     r.ReasonCode,
		IdempotencyKey: r.IdempotencyKey,
		Metadata:       r.Metadata,
	}
}

// ReverseRequest represents a request to reverse a committed transaction.
type ReverseRequest struct {
	ReasonCode     string         `json:"reason_code"`
	IdempotencyKey string         `json:"idempotency_key"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input for the given transaction.
func (r *ReverseRequest) ToUseCaseInput(transactionID string) usecase.ReverseInput {
	return usecase.ReverseInput{
		TransactionID:  transactionID,
		ReasonCode:     r.ReasonCode,
		IdempotencyKey: r.IdempotencyKey,
		Metadata:       r.Metadata,
	}
}
