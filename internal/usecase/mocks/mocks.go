package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository backed
// by an in-memory map. Every method can be overridden via its Func field.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if account, ok := m.accounts[id]; ok {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = balance
	account.Version = version
	account.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	accounts := make([]*domain.Account, 0, len(ids))
	for i := offset; i < len(ids) && len(accounts) < limit; i++ {
		copied := *m.accounts[ids[i]]
		accounts = append(accounts, &copied)
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	byKey        map[string]*domain.Transaction

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKeyFunc    func(ctx context.Context, key string) (*domain.Transaction, error)
	ExistsByIdempotencyKeyFunc func(ctx context.Context, tx usecase.Transaction, key string) (bool, error)
	ListByAccountFunc          func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
		byKey:        make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[txn.IdempotencyKey]; ok {
		return domain.ErrIdempotencyViolation
	}
	m.transactions[txn.ID] = txn
	m.byKey[txn.IdempotencyKey] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.byKey[key]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}

func (m *MockTransactionRepository) ExistsByIdempotencyKey(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
	if m.ExistsByIdempotencyKeyFunc != nil {
		return m.ExistsByIdempotencyKeyFunc(ctx, tx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byKey[key]
	return ok, nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transaction
	for _, txn := range m.transactions {
		for _, id := range txn.AccountIDs() {
			if id == accountID {
				matched = append(matched, txn)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByTransactionFunc func(ctx context.Context, transactionID string) ([]*domain.Entry, error)
	GetByAccountFunc     func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	LatestByAccountFunc  func(ctx context.Context, accountID string) (*domain.Entry, error)
	SumByAccountFunc     func(ctx context.Context, accountID string) (decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	if m.GetByTransactionFunc != nil {
		return m.GetByTransactionFunc(ctx, transactionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Entry
	for _, entry := range m.entries {
		if entry.TransactionID == transactionID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (m *MockEntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Entry
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			matched = append(matched, entry)
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *MockEntryRepository) LatestByAccount(ctx context.Context, accountID string) (*domain.Entry, error) {
	if m.LatestByAccountFunc != nil {
		return m.LatestByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID == accountID {
			return m.entries[i], nil
		}
	}
	return nil, nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumByAccountFunc != nil {
		return m.SumByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			sum = sum.Add(entry.Signed())
		}
	}
	return sum, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	TransferNetFunc func(ctx context.Context) (decimal.Decimal, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) TransferNet(ctx context.Context) (decimal.Decimal, error) {
	if m.TransferNetFunc != nil {
		return m.TransferNetFunc(ctx)
	}
	return decimal.Zero, nil
}

// MockTransaction is a no-op database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + strconv.Itoa(m.counter)
}

// MockRetrier runs the operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	keys map[string]string

	LookupFunc func(ctx context.Context, key string) (string, bool, error)
	RecordFunc func(ctx context.Context, key, transactionID string, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{keys: make(map[string]string)}
}

func (m *MockIdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.keys[key]
	return id, ok, nil
}

func (m *MockIdempotencyStore) Record(ctx context.Context, key, transactionID string, ttl time.Duration) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, key, transactionID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = transactionID
	return nil
}
