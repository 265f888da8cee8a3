package model

import "fmt"

// DefaultCategories returns the category set a fresh ledger starts with.
func DefaultCategories() CategorySet {
	return CategorySet{
		Expense: []Category{
			{ID: "food", Name: "Food & Groceries", Color: "bg-red-500"},
			{ID: "transport", Name: "Transport/Petrol", Color: "bg-blue-500"},
			{ID: "entertainment", Name: "Entertainment", Color: "bg-purple-500"},
			{ID: "utilities", Name: "Electricity/Bills", Color: "bg-yellow-500"},
			{ID: "shopping", Name: "Shopping", Color: "bg-pink-500"},
			{ID: "healthcare", Name: "Medical/Healthcare", Color: "bg-green-500"},
			{ID: "education", Name: "Education/Fees", Color: "bg-indigo-500"},
			{ID: "rent", Name: "Rent/EMI", Color: "bg-orange-500"},
			{ID: "insurance", Name: "Insurance", Color: "bg-teal-500"},
			{ID: "mobile", Name: "Mobile/Internet", Color: "bg-cyan-500"},
			{ID: "maintenance", Name: "House Maintenance", Color: "bg-gray-500"},
		},
		Income: []Category{
			{ID: "salary", Name: "Salary", Color: "bg-emerald-500"},
			{ID: "business", Name: "Business Income", Color: "bg-lime-500"},
			{ID: "freelance", Name: "Freelance/Consulting", Color: "bg-teal-500"},
			{ID: "investment", Name: "Investment/Dividend", Color: "bg-cyan-500"},
			{ID: "fd", Name: "FD/RD Interest", Color: "bg-blue-400"},
			{ID: "rental", Name: "Rental Income", Color: "bg-green-400"},
			{ID: "bonus", Name: "Bonus/Incentive", Color: "bg-yellow-400"},
		},
	}.Clone()
}

// Theme is the persisted UI colour scheme preference.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return t, nil
	default:
		return "", fmt.Errorf("invalid theme %q: must be light, dark or auto", s)
	}
}
