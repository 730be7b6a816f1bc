package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
	"github.com/corefin/ledger/internal/usecase/mocks"
)

type ledgerFixture struct {
	uc              *usecase.LedgerUseCase
	txManager       *mocks.MockTransactionManager
	accountRepo     *mocks.MockAccountRepository
	transactionRepo *mocks.MockTransactionRepository
	entryRepo       *mocks.MockEntryRepository
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		txManager:       mocks.NewMockTransactionManager(),
		accountRepo:     mocks.NewMockAccountRepository(),
		transactionRepo: mocks.NewMockTransactionRepository(),
		entryRepo:       mocks.NewMockEntryRepository(),
	}
	f.uc = usecase.NewLedgerUseCase(
		f.txManager,
		f.accountRepo,
		f.transactionRepo,
		f.entryRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		nil,
		nil,
	)
	return f
}

func (f *ledgerFixture) seedAccount(t *testing.T, id, currency, balance string) {
	t.Helper()

	err := f.accountRepo.Create(context.Background(), &domain.Account{
		ID:          id,
		AccountType: domain.AccountTypeAsset,
		Currency:    currency,
		Balance:     decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()

	account, err := f.accountRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func TestLedgerUseCase_Credit(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	txn, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("100.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-credit-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeCredit, txn.TransactionType)
	require.NotNil(t, txn.DestinationAccountID)
	assert.Equal(t, "acc-1", *txn.DestinationAccountID)
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("100.00")))

	entries, err := f.entryRepo.GetByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryTypeCredit, entries[0].EntryType)
	assert.True(t, entries[0].BalanceAfter.Equal(decimal.RequireFromString("100.00")))
}

func TestLedgerUseCase_Debit(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "50.00")

	txn, err := f.uc.Debit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("20.00"),
		ReasonCode:     "withdrawal",
		IdempotencyKey: "key-debit-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeDebit, txn.TransactionType)
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("30.00")))
}

func TestLedgerUseCase_Debit_insufficientBalance(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "50.00")

	_, err := f.uc.Debit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("50.01"),
		ReasonCode:     "withdrawal",
		IdempotencyKey: "key-debit-over",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Nothing persisted.
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("50.00")))
	_, err = f.transactionRepo.GetByIdempotencyKey(context.Background(), "key-debit-over")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-a", "USD", "100.00")
	f.seedAccount(t, "acc-b", "USD", "0")

	txn, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-b",
		Amount:               decimal.RequireFromString("40.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "key-transfer-1",
	})
	require.NoError(t, err)

	assert.True(t, f.balance(t, "acc-a").Equal(decimal.RequireFromString("60.00")))
	assert.True(t, f.balance(t, "acc-b").Equal(decimal.RequireFromString("40.00")))

	entries, err := f.entryRepo.GetByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Debit before credit, and the pair nets to zero.
	assert.Equal(t, domain.EntryTypeDebit, entries[0].EntryType)
	assert.Equal(t, "acc-a", entries[0].AccountID)
	assert.True(t, entries[0].BalanceAfter.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, domain.EntryTypeCredit, entries[1].EntryType)
	assert.Equal(t, "acc-b", entries[1].AccountID)
	assert.True(t, entries[1].BalanceAfter.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, entries[0].Signed().Add(entries[1].Signed()).IsZero())
}

func TestLedgerUseCase_Transfer_rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.TransferInput
		wantErr error
	}{
		{
			name: "same account",
			input: usecase.TransferInput{
				SourceAccountID:      "acc-a",
				DestinationAccountID: "acc-a",
				Amount:               decimal.RequireFromString("10.00"),
				ReasonCode:           "payment",
				IdempotencyKey:       "key-1",
			},
			wantErr: domain.ErrSameAccountTransfer,
		},
		{
			name: "zero amount",
			input: usecase.TransferInput{
				SourceAccountID:      "acc-a",
				DestinationAccountID: "acc-b",
				Amount:               decimal.Zero,
				ReasonCode:           "payment",
				IdempotencyKey:       "key-2",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: usecase.TransferInput{
				SourceAccountID:      "acc-a",
				DestinationAccountID: "acc-b",
				Amount:               decimal.RequireFromString("-5.00"),
				ReasonCode:           "payment",
				IdempotencyKey:       "key-3",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "missing reason code",
			input: usecase.TransferInput{
				SourceAccountID:      "acc-a",
				DestinationAccountID: "acc-b",
				Amount:               decimal.RequireFromString("10.00"),
				IdempotencyKey:       "key-4",
			},
			wantErr: domain.ErrInvalidReasonCode,
		},
		{
			name: "missing idempotency key",
			input: usecase.TransferInput{
				SourceAccountID:      "acc-a",
				DestinationAccountID: "acc-b",
				Amount:               decimal.RequireFromString("10.00"),
				ReasonCode:           "payment",
			},
			wantErr: domain.ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedAccount(t, "acc-a", "USD", "100.00")
			f.seedAccount(t, "acc-b", "USD", "0")

			_, err := f.uc.Transfer(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)

			assert.True(t, f.balance(t, "acc-a").Equal(decimal.RequireFromString("100.00")))
			assert.True(t, f.balance(t, "acc-b").IsZero())
		})
	}
}

func TestLedgerUseCase_Transfer_accountNotFound(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-a", "USD", "100.00")

	_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-missing",
		Amount:               decimal.RequireFromString("10.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "key-missing-dest",
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.True(t, f.balance(t, "acc-a").Equal(decimal.RequireFromString("100.00")))
}

func TestLedgerUseCase_Transfer_currencyMismatch(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-usd", "USD", "100.00")
	f.seedAccount(t, "acc-eur", "EUR", "0")

	_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-usd",
		DestinationAccountID: "acc-eur",
		Amount:               decimal.RequireFromString("10.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "key-fx",
	})
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	assert.True(t, f.balance(t, "acc-usd").Equal(decimal.RequireFromString("100.00")))
	assert.True(t, f.balance(t, "acc-eur").IsZero())
}

func TestLedgerUseCase_idempotentReplay(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	first, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("25.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-replay",
	})
	require.NoError(t, err)

	_, err = f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("25.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-replay",
	})
	require.ErrorIs(t, err, domain.ErrIdempotencyViolation)

	// Exactly one application; the prior result stays reachable by key.
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("25.00")))
	stored, err := f.uc.GetTransactionByKey(context.Background(), "key-replay")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
}

func TestLedgerUseCase_idempotencyFastPath(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	idemStore := mocks.NewMockIdempotencyStore()
	require.NoError(t, idemStore.Record(context.Background(), "key-cached", "txn-prior", usecase.IdempotencyKeyTTL))

	uc := usecase.NewLedgerUseCase(
		f.txManager,
		f.accountRepo,
		f.transactionRepo,
		f.entryRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		idemStore,
		nil,
	)

	_, err := uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("10.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-cached",
	})
	require.ErrorIs(t, err, domain.ErrIdempotencyViolation)
	assert.True(t, f.balance(t, "acc-1").IsZero())
}

func TestLedgerUseCase_Adjust(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "50.00")

	txn, err := f.uc.Adjust(context.Background(), usecase.AdjustInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("5.00"),
		Direction:      domain.EntryTypeCredit,
		ReasonCode:     "correction",
		IdempotencyKey: "key-adj-credit",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeAdjustment, txn.TransactionType)
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("55.00")))

	_, err = f.uc.Adjust(context.Background(), usecase.AdjustInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("15.00"),
		Direction:      domain.EntryTypeDebit,
		ReasonCode:     "correction",
		IdempotencyKey: "key-adj-debit",
	})
	require.NoError(t, err)
	assert.True(t, f.balance(t, "acc-1").Equal(decimal.RequireFromString("40.00")))
}

func TestLedgerUseCase_Adjust_invalidDirection(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "50.00")

	_, err := f.uc.Adjust(context.Background(), usecase.AdjustInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("5.00"),
		Direction:      domain.EntryType("Sideways"),
		ReasonCode:     "correction",
		IdempotencyKey: "key-adj-bad",
	})
	require.ErrorIs(t, err, domain.ErrInvalidDirection)
}

func TestLedgerUseCase_Reverse(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-a", "USD", "100.00")
	f.seedAccount(t, "acc-b", "USD", "0")

	transfer, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-b",
		Amount:               decimal.RequireFromString("40.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "key-orig",
	})
	require.NoError(t, err)

	callerMeta := map[string]any{"channel": "ops"}
	reversal, err := f.uc.Reverse(context.Background(), usecase.ReverseInput{
		TransactionID:  transfer.ID,
		ReasonCode:     "dispute",
		IdempotencyKey: "key-reversal",
		Metadata:       callerMeta,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeReversal, reversal.TransactionType)
	assert.Equal(t, transfer.ID, reversal.Metadata["reversed_transaction_id"])
	assert.Equal(t, "ops", reversal.Metadata["channel"])
	assert.True(t, reversal.Amount.Equal(transfer.Amount))

	// The caller's map is annotated on a copy, never in place.
	assert.NotContains(t, callerMeta, "reversed_transaction_id")

	// Money moved back.
	assert.True(t, f.balance(t, "acc-a").Equal(decimal.RequireFromString("100.00")))
	assert.True(t, f.balance(t, "acc-b").IsZero())

	// A reversal is terminal.
	_, err = f.uc.Reverse(context.Background(), usecase.ReverseInput{
		TransactionID:  reversal.ID,
		ReasonCode:     "dispute",
		IdempotencyKey: "key-reversal-2",
	})
	require.ErrorIs(t, err, domain.ErrNotReversible)
}

func TestLedgerUseCase_Reverse_notFound(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.uc.Reverse(context.Background(), usecase.ReverseInput{
		TransactionID:  "txn-missing",
		ReasonCode:     "dispute",
		IdempotencyKey: "key-reversal",
	})
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestLedgerUseCase_entryTimestampsFollowCommitOrder(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	// Hold the first commit at Begin so a later-created credit commits
	// ahead of it.
	gate := make(chan struct{})
	began := make(chan struct{})
	holdFirst := make(chan struct{}, 1)
	holdFirst <- struct{}{}
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		select {
		case <-holdFirst:
			close(began)
			<-gate
		default:
		}
		return &mocks.MockTransaction{}, nil
	}

	heldDone := make(chan *domain.Transaction, 1)
	go func() {
		txn, err := f.uc.Credit(context.Background(), usecase.MovementInput{
			AccountID:      "acc-1",
			Amount:         decimal.RequireFromString("10.00"),
			ReasonCode:     "deposit",
			IdempotencyKey: "key-held",
		})
		if err != nil {
			t.Error(err)
		}
		heldDone <- txn
	}()

	<-began

	quick, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("10.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-quick",
	})
	require.NoError(t, err)

	close(gate)
	held := <-heldDone
	require.NotNil(t, held)

	heldEntries, err := f.entryRepo.GetByTransaction(context.Background(), held.ID)
	require.NoError(t, err)
	require.Len(t, heldEntries, 1)
	quickEntries, err := f.entryRepo.GetByTransaction(context.Background(), quick.ID)
	require.NoError(t, err)
	require.Len(t, quickEntries, 1)

	// The held credit was created first but committed last, so its entry
	// must carry the later timestamp. Readers that pick the latest entry
	// by timestamp then see the balance_after that matches the running
	// balance.
	assert.True(t, heldEntries[0].Timestamp.After(quickEntries[0].Timestamp))
	assert.True(t, heldEntries[0].BalanceAfter.Equal(f.balance(t, "acc-1")))
}

func TestLedgerUseCase_rollbackOnCreateFailure(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	rolledBack := false
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		return &mocks.MockTransaction{
			RollbackFunc: func(ctx context.Context) error {
				rolledBack = true
				return nil
			},
		}, nil
	}

	createErr := errors.New("insert failed")
	f.transactionRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
		return createErr
	}

	_, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("10.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-fail",
	})
	require.ErrorIs(t, err, createErr)
	assert.True(t, rolledBack)
	assert.True(t, f.balance(t, "acc-1").IsZero())
}

func TestLedgerUseCase_workedExample(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-a", "USD", "0")
	f.seedAccount(t, "acc-b", "USD", "0")

	_, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-a",
		Amount:         decimal.RequireFromString("100.00"),
		ReasonCode:     "funding",
		IdempotencyKey: "k1",
	})
	require.NoError(t, err)

	transfer, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-b",
		Amount:               decimal.RequireFromString("40.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "k2",
	})
	require.NoError(t, err)

	_, err = f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-b",
		Amount:               decimal.RequireFromString("40.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "k2",
	})
	require.ErrorIs(t, err, domain.ErrIdempotencyViolation)

	balanceA, err := f.uc.Balance(context.Background(), "acc-a")
	require.NoError(t, err)
	balanceB, err := f.uc.Balance(context.Background(), "acc-b")
	require.NoError(t, err)

	assert.True(t, balanceA.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, balanceB.Equal(decimal.RequireFromString("40.00")))

	stored, err := f.uc.GetTransactionByKey(context.Background(), "k2")
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, stored.ID)
}

func TestLedgerUseCase_History(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-a", "USD", "0")
	f.seedAccount(t, "acc-b", "USD", "0")

	_, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-a",
		Amount:         decimal.RequireFromString("100.00"),
		ReasonCode:     "funding",
		IdempotencyKey: "key-h1",
	})
	require.NoError(t, err)

	_, err = f.uc.Transfer(context.Background(), usecase.TransferInput{
		SourceAccountID:      "acc-a",
		DestinationAccountID: "acc-b",
		Amount:               decimal.RequireFromString("30.00"),
		ReasonCode:           "payment",
		IdempotencyKey:       "key-h2",
	})
	require.NoError(t, err)

	history, err := f.uc.History(context.Background(), usecase.HistoryInput{AccountID: "acc-a"})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// acc-b only saw the transfer.
	history, err = f.uc.History(context.Background(), usecase.HistoryInput{AccountID: "acc-b"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TransactionTypeTransfer, history[0].TransactionType)
}

func TestLedgerUseCase_GetTransaction(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(t, "acc-1", "USD", "0")

	txn, err := f.uc.Credit(context.Background(), usecase.MovementInput{
		AccountID:      "acc-1",
		Amount:         decimal.RequireFromString("10.00"),
		ReasonCode:     "deposit",
		IdempotencyKey: "key-get",
	})
	require.NoError(t, err)

	got, err := f.uc.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	entries, err := f.uc.EntriesForTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = f.uc.GetTransaction(context.Background(), "txn-missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
