// Package memory provides an in-process storage backend implementing the
// same repository interfaces as the postgres adapter. Row locks become
// per-account mutexes acquired in the caller's (sorted) order and held until
// the transaction commits or rolls back, so the commit protocol behaves the
// same way it does against the database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
)

// Store is an in-memory ledger store. It implements
// usecase.AccountRepository, usecase.TransactionRepository,
// usecase.EntryRepository, usecase.LedgerRepository and
// usecase.TransactionManager.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	accountLocks map[string]*sync.Mutex
	transactions map[string]*domain.Transaction
	byKey        map[string]string
	entries      []*domain.Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		accountLocks: make(map[string]*sync.Mutex),
		transactions: make(map[string]*domain.Transaction),
		byKey:        make(map[string]string),
	}
}

// Begin starts a buffering transaction. Writes are staged and applied
// atomically on Commit. A cancelled context refuses the transaction, the
// same way a pooled database connection would.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &memTx{
		store:    s,
		balances: make(map[string]balanceUpdate),
	}, nil
}

type balanceUpdate struct {
	updatedAt time.Time
	balance   decimal.Decimal
	version   int64
}

// memTx stages writes until Commit. Account locks taken via
// GetByIDsForUpdate are held for the transaction's lifetime.
type memTx struct {
	store    *Store
	balances map[string]balanceUpdate
	locked   []string
	txns     []*domain.Transaction
	entries  []*domain.Entry
	done     bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.unlockAccounts()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Backstop, the same role the unique constraint plays in postgres.
	for _, txn := range t.txns {
		if _, ok := s.byKey[txn.IdempotencyKey]; ok {
			return domain.ErrIdempotencyViolation
		}
	}

	for _, txn := range t.txns {
		s.transactions[txn.ID] = txn
		s.byKey[txn.IdempotencyKey] = txn.ID
	}

	s.entries = append(s.entries, t.entries...)

	for id, update := range t.balances {
		account, ok := s.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		account.Balance = update.balance
		account.Version = update.version
		account.UpdatedAt = update.updatedAt
	}

	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.unlockAccounts()

	return nil
}

func (t *memTx) unlockAccounts() {
	s := t.store
	s.mu.RLock()
	locks := make([]*sync.Mutex, 0, len(t.locked))
	for _, id := range t.locked {
		locks = append(locks, s.accountLocks[id])
	}
	s.mu.RUnlock()

	for _, l := range locks {
		l.Unlock()
	}
	t.locked = nil
}

// Create creates a new account.
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *account
	s.accounts[account.ID] = &copied
	s.accountLocks[account.ID] = &sync.Mutex{}

	return nil
}

// GetByID retrieves an account by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	copied := *account

	return &copied, nil
}

// GetByIDsForUpdate locks the accounts for the duration of tx, acquiring the
// per-account mutexes in the order given. Callers pass ids sorted, so
// concurrent transactions cannot deadlock.
func (s *Store) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t := tx.(*memTx)

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		s.mu.RLock()
		lock, ok := s.accountLocks[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		lock.Lock()
		t.locked = append(t.locked, id)

		s.mu.RLock()
		copied := *s.accounts[id]
		s.mu.RUnlock()

		accounts = append(accounts, &copied)
	}

	return accounts, nil
}

// UpdateBalance stages a balance update to be applied on Commit.
func (s *Store) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	t := tx.(*memTx)
	t.balances[id] = balanceUpdate{
		balance:   balance,
		version:   version,
		updatedAt: updatedAt,
	}

	return nil
}

// List lists accounts ordered by creation time, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		copied := *account
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	return page(all, limit, offset), nil
}

// Store backs several repository interfaces whose method sets overlap on
// Create. The orchestrator consumes the split views returned by Accounts(),
// Transactions(), Entries() and Ledger().

// AccountRepo exposes the Store as a usecase.AccountRepository.
type AccountRepo struct{ *Store }

// TransactionRepo exposes the Store as a usecase.TransactionRepository.
type TransactionRepo struct{ store *Store }

// EntryRepo exposes the Store as a usecase.EntryRepository.
type EntryRepo struct{ store *Store }

// LedgerRepo exposes the Store as a usecase.LedgerRepository.
type LedgerRepo struct{ store *Store }

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s} }

// Transactions returns the transaction repository view.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s} }

// Entries returns the entry repository view.
func (s *Store) Entries() *EntryRepo { return &EntryRepo{s} }

// Ledger returns the ledger-wide repository view.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s} }

// Create stages a transaction insert inside tx.
func (r *TransactionRepo) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t := tx.(*memTx)
	copied := *txn
	t.txns = append(t.txns, &copied)

	return nil
}

// GetByID retrieves a committed transaction by ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	copied := *txn

	return &copied, nil
}

// GetByIdempotencyKey retrieves a committed transaction by idempotency key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	copied := *s.transactions[id]

	return &copied, nil
}

// ExistsByIdempotencyKey reports whether key has been committed.
func (r *TransactionRepo) ExistsByIdempotencyKey(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byKey[key]

	return ok, nil
}

// ListByAccount lists committed transactions touching the account, newest
// first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Transaction
	for _, txn := range s.transactions {
		for _, id := range txn.AccountIDs() {
			if id == accountID {
				copied := *txn
				matched = append(matched, &copied)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	return page(matched, limit, offset), nil
}

// Create stages an entry insert inside tx.
func (r *EntryRepo) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	t := tx.(*memTx)
	copied := *entry
	t.entries = append(t.entries, &copied)

	return nil
}

// GetByTransaction retrieves a transaction's committed entries in commit
// order.
func (r *EntryRepo) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Entry
	for _, entry := range s.entries {
		if entry.TransactionID == transactionID {
			copied := *entry
			matched = append(matched, &copied)
		}
	}

	return matched, nil
}

// GetByAccount retrieves an account's committed entries, newest first.
func (r *EntryRepo) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].AccountID == accountID {
			copied := *s.entries[i]
			matched = append(matched, &copied)
		}
	}

	return page(matched, limit, offset), nil
}

// LatestByAccount retrieves the account's most recent committed entry, or
// (nil, nil) when there is none.
func (r *EntryRepo) LatestByAccount(ctx context.Context, accountID string) (*domain.Entry, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].AccountID == accountID {
			copied := *s.entries[i]
			return &copied, nil
		}
	}

	return nil, nil
}

// SumByAccount returns the signed entry sum for the account.
func (r *EntryRepo) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, entry := range s.entries {
		if entry.AccountID == accountID {
			sum = sum.Add(entry.Signed())
		}
	}

	return sum, nil
}

// TransferNet returns the signed sum over entries of transfer transactions.
func (r *LedgerRepo) TransferNet(ctx context.Context) (decimal.Decimal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	net := decimal.Zero
	for _, entry := range s.entries {
		txn, ok := s.transactions[entry.TransactionID]
		if !ok || txn.TransactionType != domain.TransactionTypeTransfer {
			continue
		}
		net = net.Add(entry.Signed())
	}

	return net, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}
