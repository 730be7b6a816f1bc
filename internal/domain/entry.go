package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryTypeDebit  EntryType = "Debit"
	EntryTypeCredit EntryType = "Credit"
)

// Entry is a single signed movement against one account, belonging to exactly
// one transaction. Entries are append-only and never mutated or deleted.
// BalanceAfter is the account's running balance immediately after this entry
// in commit order.
type Entry struct {
	Timestamp     time.Time
	ID            string
	TransactionID string
	AccountID     string
	EntryType     EntryType
	Amount        decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Signed returns the entry amount with its sign convention applied:
// Credit positive, Debit negative.
func (e *Entry) Signed() decimal.Decimal {
	if e.EntryType == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
