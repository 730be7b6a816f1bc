package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/metrics"
)

// ErrLedgerInconsistent is returned when committed data violates the
// double-entry invariants.
var ErrLedgerInconsistent = errors.New("ledger is inconsistent")

// ReconciliationUseCase verifies committed ledger data against the
// double-entry invariants. It only reads; it never writes.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. m may be nil.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
		metrics:     m,
	}
}

// AccountReconciliation is the result of checking one account.
type AccountReconciliation struct {
	CheckedAt      time.Time
	AccountID      string
	RunningBalance decimal.Decimal
	EntrySum       decimal.Decimal
	Consistent     bool
}

// ReconcileAccount checks that the account's maintained running balance
// equals the signed sum of its committed entries, and that both agree with
// the BalanceAfter of its most recent entry.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*AccountReconciliation, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entrySum, err := uc.entryRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	consistent := account.Balance.Equal(entrySum)

	latest, err := uc.entryRepo.LatestByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if latest != nil && !latest.BalanceAfter.Equal(entrySum) {
		consistent = false
	}
	if latest == nil && !entrySum.IsZero() {
		consistent = false
	}

	return &AccountReconciliation{
		AccountID:      accountID,
		RunningBalance: account.Balance,
		EntrySum:       entrySum,
		Consistent:     consistent,
		CheckedAt:      time.Now().UTC(),
	}, nil
}

// CheckTransferSymmetry verifies that entries belonging to transfers net to
// zero across the whole ledger. One-sided credits and debits are excluded:
// they deliberately move money against an implicit external counterparty.
func (uc *ReconciliationUseCase) CheckTransferSymmetry(ctx context.Context) error {
	net, err := uc.ledgerRepo.TransferNet(ctx)
	if err != nil {
		return err
	}

	if !net.IsZero() {
		return fmt.Errorf("%w: transfer entries net to %s, want 0", ErrLedgerInconsistent, net.String())
	}

	return nil
}

// Report is a ledger-wide reconciliation summary.
type Report struct {
	CheckedAt          time.Time
	Discrepancies      []*AccountReconciliation
	TotalAccounts      int
	ReconciledAccounts int
	TransfersBalanced  bool
}

// GenerateReport reconciles every account and checks transfer symmetry.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*Report, error) {
	limit, offset := domain.ValidatePagination(1000, 0)

	report := &Report{
		Discrepancies: make([]*AccountReconciliation, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for {
		accounts, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}

			report.TotalAccounts++
			if result.Consistent {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		offset += limit
	}

	// A store failure is not an imbalance; only a genuine non-zero net may
	// clear the flag.
	switch err := uc.CheckTransferSymmetry(ctx); {
	case err == nil:
		report.TransfersBalanced = true
	case errors.Is(err, ErrLedgerInconsistent):
		report.TransfersBalanced = false
	default:
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		uc.metrics.ReconciliationMismatches.Add(float64(len(report.Discrepancies)))
	}

	return report, nil
}
