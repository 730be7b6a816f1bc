package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of monetary movement a transaction records.
type TransactionType string

const (
	TransactionTypeCredit     TransactionType = "Credit"
	TransactionTypeDebit      TransactionType = "Debit"
	TransactionTypeTransfer   TransactionType = "Transfer"
	TransactionTypeReversal   TransactionType = "Reversal"
	TransactionTypeAdjustment TransactionType = "Adjustment"
)

// Transaction is a proposed or committed monetary movement. Once persisted it
// is immutable. IdempotencyKey uniquely identifies the logical request;
// re-submission with the same key never creates a second transaction.
type Transaction struct {
	Timestamp            time.Time
	Metadata             map[string]any
	SourceAccountID      *string
	DestinationAccountID *string
	ID                   string
	TransactionType      TransactionType
	ReasonCode           string
	IdempotencyKey       string
	Amount               decimal.Decimal
}

// Validate checks the transaction's structural invariants. It is pure and
// never touches storage.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch t.TransactionType {
	case TransactionTypeCredit:
		if t.DestinationAccountID == nil {
			return ErrMissingDestinationAccount
		}
	case TransactionTypeDebit:
		if t.SourceAccountID == nil {
			return ErrMissingSourceAccount
		}
	case TransactionTypeTransfer:
		if t.SourceAccountID == nil || t.DestinationAccountID == nil {
			return ErrMissingAccountForTransfer
		}
		if *t.SourceAccountID == *t.DestinationAccountID {
			return ErrSameAccountTransfer
		}
	case TransactionTypeReversal, TransactionTypeAdjustment:
		// No additional structural constraint.
	}

	return nil
}

// AccountIDs returns the distinct account IDs the transaction touches.
func (t *Transaction) AccountIDs() []string {
	var ids []string
	if t.SourceAccountID != nil {
		ids = append(ids, *t.SourceAccountID)
	}
	if t.DestinationAccountID != nil && (t.SourceAccountID == nil || *t.DestinationAccountID != *t.SourceAccountID) {
		ids = append(ids, *t.DestinationAccountID)
	}
	return ids
}
