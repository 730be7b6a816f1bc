package usecase

import (
	"time"

	"github.com/corefin/ledger/internal/domain"
)

// EntryGenerator turns a validated transaction into the ordered list of
// entries that represent its effect. Balance snapshots embedded in the
// entries are read from the accounts passed in; the caller must hold those
// accounts locked until the entries are committed, otherwise a concurrent
// writer can invalidate the snapshots.
type EntryGenerator struct {
	idGen IDGenerator
}

// NewEntryGenerator creates a new EntryGenerator.
func NewEntryGenerator(idGen IDGenerator) *EntryGenerator {
	return &EntryGenerator{idGen: idGen}
}

// Generate produces the entries for txn, debit before credit. A transfer
// yields one debit and one matching credit; a plain credit or debit yields a
// single one-sided entry against an implicit external counterparty.
// Balance-decreasing entries are rejected with ErrInsufficientBalance before
// anything is produced.
func (g *EntryGenerator) Generate(txn *domain.Transaction, accounts map[string]*domain.Account, now time.Time) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	if txn.SourceAccountID != nil {
		source, ok := accounts[*txn.SourceAccountID]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}

		if err := source.ValidateDebit(txn.Amount); err != nil {
			return nil, err
		}

		entries = append(entries, &domain.Entry{
			ID:            g.idGen.Generate(),
			TransactionID: txn.ID,
			AccountID:     source.ID,
			Amount:        txn.Amount,
			EntryType:     domain.EntryTypeDebit,
			Timestamp:     now,
			BalanceAfter:  source.ApplyDebit(txn.Amount),
		})
	}

	if txn.DestinationAccountID != nil {
		dest, ok := accounts[*txn.DestinationAccountID]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}

		entries = append(entries, &domain.Entry{
			ID:            g.idGen.Generate(),
			TransactionID: txn.ID,
			AccountID:     dest.ID,
			Amount:        txn.Amount,
			EntryType:     domain.EntryTypeCredit,
			Timestamp:     now,
			BalanceAfter:  dest.ApplyCredit(txn.Amount),
		})
	}

	return entries, nil
}
