package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// TransferNet returns the signed sum of all entries belonging to transfer
// transactions. Every committed transfer contributes a debit and a matching
// credit, so a consistent ledger nets to zero.
func (r *LedgerRepository) TransferNet(ctx context.Context) (decimal.Decimal, error) {
	net, err := r.queries.SumTransferEntries(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(net), nil
}
