package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/postgres/generated"
	"github.com/corefin/ledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. Entries are append
// only; there is no update or delete path.
type EntryRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts an entry inside tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:            entry.ID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Amount:        decimalToNumeric(entry.Amount),
		EntryType:     string(entry.EntryType),
		Timestamp:     timeToPgTimestamptz(entry.Timestamp),
		BalanceAfter:  decimalToNumeric(entry.BalanceAfter),
	})

	return err
}

// GetByTransaction retrieves a transaction's entries, oldest first.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// GetByAccount retrieves an account's entries, newest first.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByAccount(ctx, generated.GetEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// LatestByAccount retrieves the account's most recent entry, or (nil, nil)
// when the account has none.
func (r *EntryRepository) LatestByAccount(ctx context.Context, accountID string) (*domain.Entry, error) {
	row, err := r.queries.GetLatestEntryByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// SumByAccount returns the signed entry sum for the account, Credit positive
// and Debit negative.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	sum, err := r.queries.SumEntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:            row.ID,
		TransactionID: row.TransactionID,
		AccountID:     row.AccountID,
		Amount:        numericToDecimal(row.Amount),
		EntryType:     domain.EntryType(row.EntryType),
		Timestamp:     row.Timestamp.Time,
		BalanceAfter:  numericToDecimal(row.BalanceAfter),
	}
}
