package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/tests/testutil"
)

func TestTransactionEdgeCases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(t, testDB)

	t.Run("transfer between different currencies is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		source := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(100))
		dest := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "EUR")

		w := postJSON(t, stack.Router, "/api/v1/transactions/transfer", map[string]any{
			"source_account_id":      source.ID,
			"destination_account_id": dest.ID,
			"amount":                 "10.00",
			"reason_code":            "payment",
			"idempotency_key":        testutil.GenerateID(),
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}

		// No partial writes.
		sourceAcc, _ := stack.AccountRepo.GetByID(ctx, source.ID)
		if !sourceAcc.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected source untouched at 100, got %s", sourceAcc.Balance)
		}
	})

	t.Run("transfer to same account is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(100))

		w := postJSON(t, stack.Router, "/api/v1/transactions/transfer", map[string]any{
			"source_account_id":      account.ID,
			"destination_account_id": account.ID,
			"amount":                 "10.00",
			"reason_code":            "payment",
			"idempotency_key":        testutil.GenerateID(),
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("zero and negative amounts are rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")

		for _, amount := range []string{"0", "-5.00"} {
			w := postJSON(t, stack.Router, "/api/v1/transactions/credit", map[string]any{
				"account_id":      account.ID,
				"amount":          amount,
				"reason_code":     "deposit",
				"idempotency_key": testutil.GenerateID(),
			})

			if w.Code != http.StatusBadRequest {
				t.Errorf("amount %s: expected status %d, got %d", amount, http.StatusBadRequest, w.Code)
			}
		}
	})

	t.Run("debit exceeding balance is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(5))

		w := postJSON(t, stack.Router, "/api/v1/transactions/debit", map[string]any{
			"account_id":      account.ID,
			"amount":          "10.00",
			"reason_code":     "withdrawal",
			"idempotency_key": testutil.GenerateID(),
		})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("transfer to missing account is rejected atomically", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		source := testDB.CreateTestAccountWithBalance(ctx, domain.AccountTypeAsset, "USD", decimal.NewFromInt(100))

		w := postJSON(t, stack.Router, "/api/v1/transactions/transfer", map[string]any{
			"source_account_id":      source.ID,
			"destination_account_id": "no-such-account",
			"amount":                 "10.00",
			"reason_code":            "payment",
			"idempotency_key":        testutil.GenerateID(),
		})

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}

		sourceAcc, _ := stack.AccountRepo.GetByID(ctx, source.ID)
		if !sourceAcc.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected source untouched at 100, got %s", sourceAcc.Balance)
		}
	})

	t.Run("missing reason code is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")

		w := postJSON(t, stack.Router, "/api/v1/transactions/credit", map[string]any{
			"account_id":      account.ID,
			"amount":          "10.00",
			"idempotency_key": testutil.GenerateID(),
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("oversized metadata is rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, domain.AccountTypeAsset, "USD")

		w := postJSON(t, stack.Router, "/api/v1/transactions/credit", map[string]any{
			"account_id":      account.ID,
			"amount":          "10.00",
			"reason_code":     "deposit",
			"idempotency_key": testutil.GenerateID(),
			"metadata": map[string]any{
				"blob": strings.Repeat("x", 11000),
			},
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
