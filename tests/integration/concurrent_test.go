package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
	"github.com/corefin/ledger/tests/testutil"
)

func TestConcurrentTransfers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(t, testDB)

	t.Run("100 concurrent transfers from same account no overdraft", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// Source balance allows exactly 100 transfers of 10.
		source := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(1000))
		dest := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")

		numTransfers := 100
		transferAmount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numTransfers)

		for range numTransfers {
			go func() {
				defer wg.Done()

				_, err := stack.LedgerUC.Transfer(ctx, usecase.TransferInput{
					SourceAccountID:      source.ID,
					DestinationAccountID: dest.ID,
					Amount:               transferAmount,
					ReasonCode:           "payment",
					IdempotencyKey:       testutil.GenerateID(),
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numTransfers) {
			t.Errorf("expected %d successful transfers, got %d (errors: %d)", numTransfers, successCount.Load(), errorCount.Load())
		}

		sourceAcc, _ := stack.AccountRepo.GetByID(ctx, source.ID)
		destAcc, _ := stack.AccountRepo.GetByID(ctx, dest.ID)

		if !sourceAcc.Balance.Equal(decimal.Zero) {
			t.Errorf("expected source balance 0, got %s", sourceAcc.Balance)
		}

		if !destAcc.Balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected dest balance 1000, got %s", destAcc.Balance)
		}

		if err := stack.ReconciliationUC.CheckTransferSymmetry(ctx); err != nil {
			t.Errorf("transfer symmetry violated: %v", err)
		}
	})

	t.Run("concurrent transfers reject overdraft", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// 20 transfers of 10 against a balance of 100: exactly 10 may win.
		source := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(100))
		dest := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")

		numTransfers := 20
		transferAmount := decimal.NewFromInt(10)

		var (
			wg                sync.WaitGroup
			successCount      atomic.Int32
			insufficientCount atomic.Int32
		)

		wg.Add(numTransfers)

		for range numTransfers {
			go func() {
				defer wg.Done()

				_, err := stack.LedgerUC.Transfer(ctx, usecase.TransferInput{
					SourceAccountID:      source.ID,
					DestinationAccountID: dest.ID,
					Amount:               transferAmount,
					ReasonCode:           "payment",
					IdempotencyKey:       testutil.GenerateID(),
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrInsufficientBalance):
					insufficientCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 10 {
			t.Errorf("expected exactly 10 successful transfers, got %d", successCount.Load())
		}
		if insufficientCount.Load() != 10 {
			t.Errorf("expected 10 insufficient-balance rejections, got %d", insufficientCount.Load())
		}

		sourceAcc, _ := stack.AccountRepo.GetByID(ctx, source.ID)
		if !sourceAcc.Balance.Equal(decimal.Zero) {
			t.Errorf("expected source drained to 0, got %s", sourceAcc.Balance)
		}
	})

	t.Run("concurrent same key commits once", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")
		key := testutil.GenerateID()

		numAttempts := 10

		var (
			wg            sync.WaitGroup
			successCount  atomic.Int32
			conflictCount atomic.Int32
		)

		wg.Add(numAttempts)

		for range numAttempts {
			go func() {
				defer wg.Done()

				_, err := stack.LedgerUC.Credit(ctx, usecase.MovementInput{
					AccountID:      account.ID,
					Amount:         decimal.NewFromInt(5),
					ReasonCode:     "deposit",
					IdempotencyKey: key,
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrIdempotencyViolation):
					conflictCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 committed credit, got %d", successCount.Load())
		}

		acc, _ := stack.AccountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(5)) {
			t.Errorf("expected balance 5, got %s", acc.Balance)
		}
	})
}
