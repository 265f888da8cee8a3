package cli

import (
	"testing"

	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/stretchr/testify/assert"
)

type stubResolver map[string]string

func (r stubResolver) Resolve(id string, _ model.CategoryType) model.CategoryRef {
	if name, ok := r[id]; ok {
		return model.CategoryRef{Name: name}
	}
	return model.UnknownCategory
}

func TestFormatTransactions(t *testing.T) {
	assert.Contains(t, FormatTransactions(nil, stubResolver{}), "No transactions found")

	out := FormatTransactions([]model.Transaction{
		{ID: "t1", Type: model.TypeExpense, Amount: 1200, Category: "food", Description: "Weekly shop", Date: model.MustParseDate("2024-03-05")},
		{ID: "t2", Type: model.TypeIncome, Amount: 5000, Category: "gone", Description: "A description that is far too long to fit in the column", Date: model.MustParseDate("2024-03-01")},
	}, stubResolver{"food": "Food & Groceries"})

	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "Food & Groceries")
	assert.Contains(t, out, "Unknown")
	assert.Contains(t, out, "05/03/2024")
	assert.Contains(t, out, "-$1,200.00")
	assert.Contains(t, out, "A description that is far too lon...")
}

func TestFormatCategoriesAndStats(t *testing.T) {
	assert.Contains(t, FormatCategories(nil), "No categories found")
	out := FormatCategories([]model.Category{{ID: "salary", Name: "Salary", Color: "bg-emerald-500", Type: model.CategoryTypeIncome}})
	assert.Contains(t, out, "bg-emerald-500")

	assert.Contains(t, FormatCategoryStats(nil), "No transactions recorded")
	out = FormatCategoryStats([]category.Stat{{Type: model.CategoryTypeExpense, Name: "Rent/EMI", Count: 2, Total: 30000}})
	assert.Contains(t, out, "$30,000.00")
}
