package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/postgres/generated"
	"github.com/corefin/ledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	metadata, err := metadataToJSON(account.Metadata)
	if err != nil {
		return err
	}

	_, err = r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:          account.ID,
		AccountType: string(account.AccountType),
		Currency:    account.Currency,
		Balance:     decimalToNumeric(account.Balance),
		Version:     account.Version,
		Metadata:    metadata,
		CreatedAt:   timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(account.UpdatedAt),
	})

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate retrieves multiple accounts with FOR UPDATE locks. The
// query orders by ID so every concurrent commit acquires row locks in the
// same global order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// UpdateBalance updates the running balance and version of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		Version:   version,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:          row.ID,
		AccountType: domain.AccountType(row.AccountType),
		Currency:    row.Currency,
		Balance:     numericToDecimal(row.Balance),
		Version:     row.Version,
		Metadata:    jsonToMetadata(row.Metadata),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func metadataToJSON(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}

	return json.Marshal(metadata)
}

func jsonToMetadata(raw []byte) map[string]any {
	if raw == nil {
		return nil
	}

	var metadata map[string]any
	_ = json.Unmarshal(raw, &metadata)

	return metadata
}
