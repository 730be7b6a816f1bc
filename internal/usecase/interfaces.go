package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts for the duration of tx. Callers
	// must pass ids in sorted order so concurrent commits acquire locks in
	// the same global order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for recorded transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// ExistsByIdempotencyKey runs inside tx so the uniqueness check
	// serializes with the insert that follows it.
	ExistsByIdempotencyKey(ctx context.Context, tx Transaction, key string) (bool, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// LatestByAccount returns the most recent entry for the account in
	// commit order, or (nil, nil) when the account has no entries.
	LatestByAccount(ctx context.Context, accountID string) (*domain.Entry, error)
	// SumByAccount returns the signed sum over the account's entries
	// (Credit positive, Debit negative).
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// TransferNet returns the signed sum of all entries belonging to
	// transfer transactions. A balanced ledger nets to zero.
	TransferNet(ctx context.Context) (decimal.Decimal, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage conflicts
// (deadlocks, serialization failures) with bounded backoff.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore is an advisory fast path for idempotency checks. The
// storage-level uniqueness constraint stays authoritative; a store failure
// only means the duplicate is caught one layer lower.
type IdempotencyStore interface {
	// Lookup returns the recorded transaction ID for key, if any.
	Lookup(ctx context.Context, key string) (string, bool, error)
	Record(ctx context.Context, key, transactionID string, ttl time.Duration) error
}
