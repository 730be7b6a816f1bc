package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account lifecycle. Accounts are never deleted here;
// closure and archival are external concerns.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. m may be nil.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, m *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Metadata    map[string]any
	AccountType domain.AccountType
	Currency    string
}

// OpenAccount opens a new account with a zero balance. Type and currency are
// fixed for the account's lifetime.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if !input.AccountType.Valid() {
		return nil, domain.ErrInvalidAccountType
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:          uc.idGen.Generate(),
		AccountType: input.AccountType,
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		Balance:     decimal.Zero,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    input.Metadata,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, limit, offset)
}
