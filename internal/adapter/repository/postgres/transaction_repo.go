package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/postgres/generated"
	"github.com/corefin/ledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a transaction inside tx. A unique violation on the
// idempotency key maps to ErrIdempotencyViolation; the constraint is the
// authoritative duplicate check.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	metadata, err := metadataToJSON(txn.Metadata)
	if err != nil {
		return err
	}

	_, err = queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                   txn.ID,
		TransactionType:      string(txn.TransactionType),
		Amount:               decimalToNumeric(txn.Amount),
		SourceAccountID:      stringPtrToText(txn.SourceAccountID),
		DestinationAccountID: stringPtrToText(txn.DestinationAccountID),
		Timestamp:            timeToPgTimestamptz(txn.Timestamp),
		ReasonCode:           txn.ReasonCode,
		IdempotencyKey:       txn.IdempotencyKey,
		Metadata:             metadata,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrIdempotencyViolation
		}

		return err
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetByIdempotencyKey retrieves a transaction by idempotency key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// ExistsByIdempotencyKey reports whether key is already recorded, reading
// inside tx so the check serializes with the insert that follows.
func (r *TransactionRepository) ExistsByIdempotencyKey(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.TransactionExistsByIdempotencyKey(ctx, key)
}

// ListByAccount lists transactions touching the account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: pgtype.Text{String: accountID, Valid: true},
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                   row.ID,
		TransactionType:      domain.TransactionType(row.TransactionType),
		Amount:               numericToDecimal(row.Amount),
		SourceAccountID:      textToStringPtr(row.SourceAccountID),
		DestinationAccountID: textToStringPtr(row.DestinationAccountID),
		Timestamp:            row.Timestamp.Time,
		ReasonCode:           row.ReasonCode,
		IdempotencyKey:       row.IdempotencyKey,
		Metadata:             jsonToMetadata(row.Metadata),
	}
}

func stringPtrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}

	return pgtype.Text{String: *s, Valid: true}
}

func textToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}

	s := t.String

	return &s
}
