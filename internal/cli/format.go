package cli

import (
	"fmt"

	"github.com/Veraticus/pocketbook/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayDateLayout is the day-first layout dates are shown in.
const DisplayDateLayout = "02/01/2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders whole currency units with thousands separators and
// two decimals, e.g. -$1,234.00.
func FormatAmount(amount int64) string {
	if amount < 0 {
		return "-" + FormatAmount(-amount)
	}
	return printer.Sprintf("$%d.00", amount)
}

// FormatSigned renders a transaction's amount with a + for income and a - for
// expenses, coloured by type.
func FormatSigned(txn model.Transaction) string {
	if txn.Type == model.TypeIncome {
		return IncomeStyle.Render("+" + FormatAmount(txn.Amount))
	}
	return ExpenseStyle.Render("-" + FormatAmount(txn.Amount))
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDate renders a calendar date day-first.
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayDateLayout)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
