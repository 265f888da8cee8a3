package model

import (
	"fmt"
	"time"
)

// TransactionType is the direction of money flow.
type TransactionType string

const (
	// TypeIncome is money received.
	TypeIncome TransactionType = "income"
	// TypeExpense is money spent.
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// CategoryType returns the category partition matching this transaction type.
func (t TransactionType) CategoryType() CategoryType {
	return CategoryType(t)
}

// ParseTransactionType converts user input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid transaction type %q: must be income or expense", s)
	}
	return t, nil
}

// Amount bounds in whole currency units.
const (
	MinAmount int64 = 1
	MaxAmount int64 = 99_999_999
)

// DefaultDescription replaces blank descriptions.
const DefaultDescription = "No details available"

// Transaction is a single recorded income or expense.
type Transaction struct {
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      int64           `json:"amount"`
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() int64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}
	return t.Amount
}

// TransactionInput carries user-supplied fields for a new transaction. Amount
// is a float so that fractional input can be detected and rejected; Date is the
// raw calendar date string.
type TransactionInput struct {
	Type        TransactionType
	Category    string
	Description string
	Date        string
	Amount      float64
}

// TransactionPatch describes an update. Nil fields are left untouched.
type TransactionPatch struct {
	Type        *TransactionType
	Category    *string
	Description *string
	Date        *string
	Amount      *float64
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Type == nil && p.Category == nil && p.Description == nil && p.Date == nil && p.Amount == nil
}
