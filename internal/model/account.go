package model

import "github.com/google/uuid"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether a debit increases the balance of this
// account type. Asset and expense accounts are debit-normal; liability,
// equity and income accounts are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account represents a node in the chart of accounts.
type Account struct {
	ID          uuid.UUID
	Code        string // unique, immutable once created
	Name        string
	Type        AccountType
	ParentID    uuid.UUID // uuid.Nil = top-level
	Active      bool
	Balance     int64 // minor units, signed per the normal-balance rule
	Description string
}

// BalanceDelta returns the signed change to the account balance for a
// line carrying the given debit and credit amounts, applying the
// normal-balance rule for the account's type.
func (a Account) BalanceDelta(debit, credit int64) int64 {
	if a.Type.DebitNormal() {
		return debit - credit
	}
	return credit - debit
}
