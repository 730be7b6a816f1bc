package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/corefin/ledger/internal/adapter/http"
	"github.com/corefin/ledger/internal/adapter/http/handler"
	"github.com/corefin/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/corefin/ledger/internal/adapter/repository/redis"
	infraredis "github.com/corefin/ledger/internal/infrastructure/redis"
	"github.com/corefin/ledger/internal/usecase"
	"github.com/corefin/ledger/tests/testutil"
)

// ledgerStack wires the full application over a test database.
type ledgerStack struct {
	Router           http.Handler
	AccountRepo      *postgres.AccountRepository
	LedgerUC         *usecase.LedgerUseCase
	ReconciliationUC *usecase.ReconciliationUseCase
}

func newLedgerStack(t *testing.T, testDB *testutil.TestDB) *ledgerStack {
	t.Helper()

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	redisClient := newRedisClient(t)
	var idemStore usecase.IdempotencyStore
	if redisClient != nil {
		idemStore = redisrepo.NewIdempotencyStore(redisClient)
	}

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, nil)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, transactionRepo, entryRepo, idGen, retrier, idemStore, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(ledgerUC),
		EntryHandler:          handler.NewEntryHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		Logger:                zerolog.Nop(),
	})

	return &ledgerStack{
		Router:           router,
		AccountRepo:      accountRepo,
		LedgerUC:         ledgerUC,
		ReconciliationUC: reconciliationUC,
	}
}

// newRedisClient connects to Redis when available. The idempotency fast path
// is advisory, so tests still pass without it.
func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	client, err := infraredis.NewClient(context.Background(), redisURL)
	if err != nil {
		t.Logf("redis unavailable, continuing without idempotency fast path: %v", err)
		return nil
	}

	t.Cleanup(func() { client.Close() })

	return client
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	return w
}

func getJSON(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	return w
}
