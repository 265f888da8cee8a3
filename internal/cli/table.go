package cli

import (
	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const descriptionWidth = 36

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// FormatTransactions renders transactions as a table with category names
// resolved through resolver.
func FormatTransactions(transactions []model.Transaction, resolver service.CategoryResolver) string {
	if len(transactions) == 0 {
		return SubtleStyle.Render("No transactions found")
	}

	t := newTable("Date", "Type", "Category", "Description", "Amount", "ID")
	for _, txn := range transactions {
		ref := resolver.Resolve(txn.Category, txn.Type.CategoryType())
		t.Row(
			FormatDate(txn.Date),
			string(txn.Type),
			ref.Name,
			truncate(txn.Description, descriptionWidth),
			FormatSigned(txn),
			txn.ID,
		)
	}
	return t.String()
}

// FormatCategories renders categories as a table.
func FormatCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return SubtleStyle.Render("No categories found")
	}

	t := newTable("Type", "ID", "Name", "Color")
	for _, cat := range categories {
		t.Row(string(cat.Type), cat.ID, cat.Name, cat.Color)
	}
	return t.String()
}

// FormatCategoryStats renders per-category usage.
func FormatCategoryStats(stats []category.Stat) string {
	if len(stats) == 0 {
		return SubtleStyle.Render("No transactions recorded")
	}

	t := newTable("Type", "Category", "Transactions", "Total")
	for _, s := range stats {
		t.Row(string(s.Type), s.Name, FormatCount(s.Count), FormatAmount(s.Total))
	}
	return t.String()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
