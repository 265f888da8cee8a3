// Package analysis derives financial aggregates from transaction sequences.
// Every function is pure: inputs are never modified and empty input yields
// zero values rather than errors.
package analysis

import (
	"github.com/Veraticus/pocketbook/internal/model"
)

// Summary totals a set of transactions.
type Summary struct {
	Income      int64   `json:"income"`
	Expenses    int64   `json:"expenses"`
	Balance     int64   `json:"balance"`
	Count       int     `json:"count"`
	SavingsRate float64 `json:"savingsRate"`
}

// Summarize computes income, expenses, balance and the savings rate.
func Summarize(transactions []model.Transaction) Summary {
	var s Summary
	for _, txn := range transactions {
		switch txn.Type {
		case model.TypeIncome:
			s.Income += txn.Amount
		case model.TypeExpense:
			s.Expenses += txn.Amount
		}
	}
	s.Count = len(transactions)
	s.Balance = s.Income - s.Expenses
	s.SavingsRate = savingsRate(s.Income, s.Expenses)
	return s
}

func savingsRate(income, expenses int64) float64 {
	if income <= 0 {
		return 0
	}
	return float64(income-expenses) / float64(income) * 100
}

// CategoryTotal accumulates the transactions filed under one category id.
type CategoryTotal struct {
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// GroupByCategory totals transactions per category id.
func GroupByCategory(transactions []model.Transaction) map[string]CategoryTotal {
	groups := make(map[string]CategoryTotal)
	for _, txn := range transactions {
		g := groups[txn.Category]
		g.Total += txn.Amount
		g.Count++
		groups[txn.Category] = g
	}
	return groups
}

// Breakdown groups income and expenses by category separately, since
// category ids are only unique within a partition.
type Breakdown struct {
	Income   map[string]CategoryTotal `json:"income"`
	Expenses map[string]CategoryTotal `json:"expenses"`
}

// BreakdownByType builds the per-partition category breakdown.
func BreakdownByType(transactions []model.Transaction) Breakdown {
	var income, expenses []model.Transaction
	for _, txn := range transactions {
		if txn.Type == model.TypeIncome {
			income = append(income, txn)
		} else {
			expenses = append(expenses, txn)
		}
	}
	return Breakdown{
		Income:   GroupByCategory(income),
		Expenses: GroupByCategory(expenses),
	}
}
