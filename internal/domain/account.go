package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account under the standard accounting equation.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance returns the entry direction that increases the balance of
// an account of this type. Asset and Expense accounts increase on Debit,
// Liability, Equity and Revenue accounts increase on Credit.
func (t AccountType) NormalBalance() EntryType {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return EntryTypeDebit
	default:
		return EntryTypeCredit
	}
}

// Account represents a ledger account. Identity, type and currency are fixed
// at creation; only the maintained running balance and metadata change.
type Account struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Metadata    map[string]any
	ID          string
	AccountType AccountType
	Currency    string
	Balance     decimal.Decimal
	Version     int64
}

// ValidateDebit checks if the account holds enough funds to be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit of amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit of amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
