package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/corefin/ledger/internal/domain"
	"github.com/corefin/ledger/internal/usecase"
	"github.com/corefin/ledger/internal/usecase/mockusecase"
)

func TestAccountUseCase_OpenAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountRepo := mockusecase.NewMockAccountRepository(ctrl)
	idGen := mockusecase.NewMockIDGenerator(ctrl)

	idGen.EXPECT().Generate().Return("acc-1")
	accountRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(accountRepo, idGen, nil)

	account, err := uc.OpenAccount(context.Background(), usecase.OpenAccountInput{
		AccountType: domain.AccountTypeAsset,
		Currency:    " usd ",
		Metadata:    map[string]any{"owner": "alice"},
	})
	require.NoError(t, err)

	assert.Equal(t, "acc-1", account.ID)
	assert.Equal(t, domain.AccountTypeAsset, account.AccountType)
	assert.Equal(t, "USD", account.Currency)
	assert.True(t, account.Balance.IsZero())
	assert.Equal(t, int64(0), account.Version)
	assert.Equal(t, "alice", account.Metadata["owner"])
}

func TestAccountUseCase_OpenAccount_rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.OpenAccountInput
		wantErr error
	}{
		{
			name:    "unknown account type",
			input:   usecase.OpenAccountInput{AccountType: "Savings", Currency: "USD"},
			wantErr: domain.ErrInvalidAccountType,
		},
		{
			name:    "unknown currency",
			input:   usecase.OpenAccountInput{AccountType: domain.AccountTypeAsset, Currency: "XXX"},
			wantErr: domain.ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := usecase.NewAccountUseCase(
				mockusecase.NewMockAccountRepository(ctrl),
				mockusecase.NewMockIDGenerator(ctrl),
				nil,
			)

			_, err := uc.OpenAccount(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountRepo := mockusecase.NewMockAccountRepository(ctrl)

	want := &domain.Account{ID: "acc-1", AccountType: domain.AccountTypeAsset, Currency: "USD"}
	accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(want, nil)
	accountRepo.EXPECT().GetByID(gomock.Any(), "acc-missing").Return(nil, domain.ErrAccountNotFound)

	uc := usecase.NewAccountUseCase(accountRepo, mockusecase.NewMockIDGenerator(ctrl), nil)

	account, err := uc.GetAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, want, account)

	_, err = uc.GetAccount(context.Background(), "acc-missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_ListAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	accountRepo := mockusecase.NewMockAccountRepository(ctrl)

	// Zero limit falls back to the default page size.
	accountRepo.EXPECT().List(gomock.Any(), 50, 0).Return([]*domain.Account{{ID: "acc-1"}}, nil)

	uc := usecase.NewAccountUseCase(accountRepo, mockusecase.NewMockIDGenerator(ctrl), nil)

	accounts, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
