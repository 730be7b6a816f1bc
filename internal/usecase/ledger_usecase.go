package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/metrics"
)

// LedgerUseCase composes validation, entry generation and the atomic commit
// protocol into the public ledger operations.
type LedgerUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	generator       *EntryGenerator
	idGen           IDGenerator
	retrier         Retrier
	idemStore       IdempotencyStore
	metrics         *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. idemStore and m may be nil;
// the storage-level idempotency check always runs regardless.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	retrier Retrier,
	idemStore IdempotencyStore,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		entryRepo:       entryRepo,
		generator:       NewEntryGenerator(idGen),
		idGen:           idGen,
		retrier:         retrier,
		idemStore:       idemStore,
		metrics:         m,
	}
}

// MovementInput represents a one-sided movement (credit or debit) against a
// single account.
type MovementInput struct {
	Metadata       map[string]any
	AccountID      string
	ReasonCode     string
	IdempotencyKey string
	Amount         decimal.Decimal
}

// TransferInput represents a balanced movement between two accounts.
type TransferInput struct {
	Metadata             map[string]any
	SourceAccountID      string
	DestinationAccountID string
	ReasonCode           string
	IdempotencyKey       string
	Amount               decimal.Decimal
}

// AdjustInput represents a manual correction posted against one account.
type AdjustInput struct {
	Metadata       map[string]any
	AccountID      string
	Direction      domain.EntryType
	ReasonCode     string
	IdempotencyKey string
	Amount         decimal.Decimal
}

// ReverseInput identifies a committed transaction to reverse.
type ReverseInput struct {
	Metadata       map[string]any
	TransactionID  string
	ReasonCode     string
	IdempotencyKey string
}

// Credit records a credit to the destination account.
func (uc *LedgerUseCase) Credit(ctx context.Context, input MovementInput) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		TransactionType:      domain.TransactionTypeCredit,
		Amount:               input.Amount,
		DestinationAccountID: &input.AccountID,
		Timestamp:            time.Now().UTC(),
		ReasonCode:           input.ReasonCode,
		IdempotencyKey:       input.IdempotencyKey,
		Metadata:             input.Metadata,
	}

	return uc.record(ctx, txn)
}

// Debit records a debit from the source account. The account must hold
// sufficient funds.
func (uc *LedgerUseCase) Debit(ctx context.Context, input MovementInput) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		TransactionType: domain.TransactionTypeDebit,
		Amount:          input.Amount,
		SourceAccountID: &input.AccountID,
		Timestamp:       time.Now().UTC(),
		ReasonCode:      input.ReasonCode,
		IdempotencyKey:  input.IdempotencyKey,
		Metadata:        input.Metadata,
	}

	return uc.record(ctx, txn)
}

// Transfer moves amount from the source account to the destination account
// as one debit and one matching credit.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		TransactionType:      domain.TransactionTypeTransfer,
		Amount:               input.Amount,
		SourceAccountID:      &input.SourceAccountID,
		DestinationAccountID: &input.DestinationAccountID,
		Timestamp:            time.Now().UTC(),
		ReasonCode:           input.ReasonCode,
		IdempotencyKey:       input.IdempotencyKey,
		Metadata:             input.Metadata,
	}

	return uc.record(ctx, txn)
}

// Adjust records a manual correction in the given direction.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		TransactionType: domain.TransactionTypeAdjustment,
		Amount:          input.Amount,
		Timestamp:       time.Now().UTC(),
		ReasonCode:      input.ReasonCode,
		IdempotencyKey:  input.IdempotencyKey,
		Metadata:        input.Metadata,
	}

	switch input.Direction {
	case domain.EntryTypeDebit:
		txn.SourceAccountID = &input.AccountID
	case domain.EntryTypeCredit:
		txn.DestinationAccountID = &input.AccountID
	default:
		return nil, domain.ErrInvalidDirection
	}

	return uc.record(ctx, txn)
}

// Reverse records a reversal of a committed transaction: the same amount
// moved in the opposite direction, under a fresh idempotency key.
func (uc *LedgerUseCase) Reverse(ctx context.Context, input ReverseInput) (*domain.Transaction, error) {
	original, err := uc.transactionRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if original.TransactionType == domain.TransactionTypeReversal {
		return nil, domain.ErrNotReversible
	}

	// Annotate a copy so the caller's map is left untouched.
	metadata := make(map[string]any, len(input.Metadata)+1)
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	metadata["reversed_transaction_id"] = original.ID

	txn := &domain.Transaction{
		ID:                   uc.idGen.Generate(),
		TransactionType:      domain.TransactionTypeReversal,
		Amount:               original.Amount,
		SourceAccountID:      original.DestinationAccountID,
		DestinationAccountID: original.SourceAccountID,
		Timestamp:            time.Now().UTC(),
		ReasonCode:           input.ReasonCode,
		IdempotencyKey:       input.IdempotencyKey,
		Metadata:             metadata,
	}

	return uc.record(ctx, txn)
}

// Balance returns the account's current balance, served from the running
// total maintained transactionally alongside each entry insert.
func (uc *LedgerUseCase) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// HistoryInput represents input for listing an account's transactions.
type HistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// History lists the account's transactions, newest first.
func (uc *LedgerUseCase) History(ctx context.Context, input HistoryInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.transactionRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// GetTransactionByKey retrieves a transaction by idempotency key. Callers
// that hit ErrIdempotencyViolation fetch the prior result here instead of
// retrying the mutation.
func (uc *LedgerUseCase) GetTransactionByKey(ctx context.Context, key string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByIdempotencyKey(ctx, key)
}

// EntriesForTransaction lists a transaction's entries, oldest first.
func (uc *LedgerUseCase) EntriesForTransaction(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	return uc.entryRepo.GetByTransaction(ctx, transactionID)
}

// EntriesForAccount lists an account's entries, newest first.
func (uc *LedgerUseCase) EntriesForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.entryRepo.GetByAccount(ctx, accountID, limit, offset)
}

// record runs the full mutation pipeline: structural validation, the
// advisory idempotency fast path, then the atomic commit under bounded
// conflict retry. Any failure leaves the ledger untouched.
func (uc *LedgerUseCase) record(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateReasonCode(txn.ReasonCode); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdempotencyKey(txn.IdempotencyKey); err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(txn.Metadata); err != nil {
		return nil, err
	}

	if uc.idemStore != nil {
		if _, seen, err := uc.idemStore.Lookup(ctx, txn.IdempotencyKey); err == nil && seen {
			return nil, domain.ErrIdempotencyViolation
		}
	}

	start := time.Now()
	attempts := 0

	if err := uc.retrier.Retry(ctx, func() error {
		attempts++

		return uc.commit(ctx, txn)
	}); err != nil {
		if uc.metrics != nil {
			uc.metrics.TransactionsRejected.WithLabelValues(rejectionReason(err)).Inc()
		}

		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCommitted.WithLabelValues(string(txn.TransactionType)).Inc()
		uc.metrics.TransactionDuration.Observe(time.Since(start).Seconds())
		uc.metrics.TransactionAmount.Observe(txn.Amount.InexactFloat64())
		if attempts > 1 {
			uc.metrics.CommitRetries.Add(float64(attempts - 1))
		}
	}

	if uc.idemStore != nil {
		// Advisory only; the unique constraint already holds.
		_ = uc.idemStore.Record(ctx, txn.IdempotencyKey, txn.ID, IdempotencyKeyTTL)
	}

	return txn, nil
}

// commit executes one all-or-nothing attempt: re-check idempotency, lock the
// involved accounts in sorted ID order, check funds, generate entries from
// the locked balances, persist transaction and entries, update running
// totals, commit. Entry generation happens inside the lock on every attempt
// so retried commits never reuse stale balance snapshots.
func (uc *LedgerUseCase) commit(ctx context.Context, txn *domain.Transaction) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	exists, err := uc.transactionRepo.ExistsByIdempotencyKey(ctx, tx, txn.IdempotencyKey)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrIdempotencyViolation
	}

	ids := txn.AccountIDs()
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	if txn.SourceAccountID != nil && txn.DestinationAccountID != nil {
		if accountMap[*txn.SourceAccountID].Currency != accountMap[*txn.DestinationAccountID].Currency {
			return domain.ErrCurrencyMismatch
		}
	}

	// Stamp the commit time while the locks are held. Commits touching the
	// same account serialize on those locks, so ordering entries by
	// (timestamp, id) matches commit order even when requests were created
	// in a different order.
	txn.Timestamp = time.Now().UTC()

	entries, err := uc.generator.Generate(txn, accountMap, txn.Timestamp)
	if err != nil {
		return err
	}

	if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		account := accountMap[entry.AccountID]
		account.Balance = entry.BalanceAfter
		account.Version++

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.Balance, account.Version, txn.Timestamp); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		for _, entry := range entries {
			uc.metrics.EntriesRecorded.WithLabelValues(string(entry.EntryType)).Inc()
		}
	}

	return nil
}

// rejectionReason buckets commit failures into low-cardinality metric labels.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrIdempotencyViolation):
		return "idempotency_violation"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	default:
		return "internal"
	}
}
