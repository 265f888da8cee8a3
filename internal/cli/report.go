package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the styling used for report output.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style

	Box        lipgloss.Style
	InsightBox lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    TitleStyle,
		Subtitle: SubtitleStyle,
		Success:  SuccessStyle,
		Warning:  WarningStyle,
		Error:    ErrorStyle,
		Info:     InfoStyle,
		Subtle:   SubtleStyle,
		Normal:   lipgloss.NewStyle(),
		Income:   IncomeStyle,
		Expense:  ExpenseStyle,
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SubtleColor).
		Padding(0, 1)

	s.InsightBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(InfoColor).
		Padding(0, 1).
		MarginTop(1)

	return s
}

// WithWidth returns a copy adjusted for the given terminal width.
func (s *Styles) WithWidth(width int) *Styles {
	newStyles := *s
	if width > 0 && width < 100 {
		newStyles.Box = s.Box.Width(width - 4)
		newStyles.InsightBox = s.InsightBox.Width(width - 4)
	}
	return &newStyles
}

// ForScore returns the style for a 0 to 100 health score.
func (s *Styles) ForScore(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return s.Success
	case score >= 60:
		return s.Warning
	default:
		return s.Error
	}
}

// ForInsight returns the style for an insight kind.
func (s *Styles) ForInsight(kind analysis.InsightKind) lipgloss.Style {
	switch kind {
	case analysis.InsightWarning:
		return s.Warning
	case analysis.InsightSuccess:
		return s.Success
	default:
		return s.Info
	}
}

// RenderProgressBar renders a bar filled to progress (0 to 1).
func RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := max(0, min(width, int(float64(width)*progress)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ReportFormatter renders analytics for the terminal.
type ReportFormatter struct {
	styles *Styles
}

// NewReportFormatter creates a formatter with default styles.
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{styles: NewStyles()}
}

// WithWidth returns a formatter whose boxes fit width columns.
func (f *ReportFormatter) WithWidth(width int) *ReportFormatter {
	return &ReportFormatter{styles: f.styles.WithWidth(width)}
}

// FormatReport renders the full report.
func (f *ReportFormatter) FormatReport(report *analysis.Report) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(report),
		f.FormatSummary(report.Summary),
		f.formatHealthScore(report.HealthScore),
		f.formatBudget(report.Budget),
	}

	if len(report.TopCategories) > 0 {
		sections = append(sections, f.formatTopCategories(report.TopCategories))
	}

	sections = append(sections,
		f.formatTrend(report.Trend, report.Direction),
		f.formatMetrics(report.Metrics))

	if len(report.Insights) > 0 {
		sections = append(sections, f.formatInsights(report.Insights))
	}

	return strings.Join(sections, "\n\n")
}

// FormatSummary renders income, expenses, balance and savings rate.
func (f *ReportFormatter) FormatSummary(s analysis.Summary) string {
	balanceStyle := f.styles.Income
	if s.Balance < 0 {
		balanceStyle = f.styles.Expense
	}

	lines := []string{
		fmt.Sprintf("%-14s %s", "Income", f.styles.Income.Render(FormatAmount(s.Income))),
		fmt.Sprintf("%-14s %s", "Expenses", f.styles.Expense.Render(FormatAmount(s.Expenses))),
		fmt.Sprintf("%-14s %s", "Balance", balanceStyle.Render(FormatAmount(s.Balance))),
		fmt.Sprintf("%-14s %s", "Savings rate", FormatPercent(s.SavingsRate)),
		fmt.Sprintf("%-14s %s", "Transactions", FormatCount(s.Count)),
	}
	return f.styles.Box.Render(strings.Join(lines, "\n"))
}

// FormatPeriods renders a period grouping as a table.
func (f *ReportFormatter) FormatPeriods(periods []analysis.PeriodTotals) string {
	if len(periods) == 0 {
		return f.styles.Subtle.Render("No transactions in range")
	}

	header := fmt.Sprintf("%-12s %16s %16s %16s", "Period", "Income", "Expenses", "Net")
	rows := []string{
		f.styles.Subtle.Bold(true).Render(header),
		f.styles.Subtle.Render(strings.Repeat("─", len(header))),
	}
	for _, p := range periods {
		rows = append(rows, fmt.Sprintf("%-12s %16s %16s %16s",
			p.Period, FormatAmount(p.Income), FormatAmount(p.Expenses), FormatAmount(p.Net)))
	}
	return strings.Join(rows, "\n")
}

func (f *ReportFormatter) formatHeader(report *analysis.Report) string {
	title := f.styles.Title.Render(ChartIcon + " Financial Report")
	period := f.styles.Subtitle.Render("Period: " + report.Period)
	generated := f.styles.Subtle.Render("Generated: " + report.GeneratedAt.Format(time.RFC3339))
	return fmt.Sprintf("%s\n%s\n%s", title, period, generated)
}

func (f *ReportFormatter) formatHealthScore(score int) string {
	style := f.styles.ForScore(score)
	text := style.Render(fmt.Sprintf("Financial Health: %d/100", score))
	bar := style.Render(RenderProgressBar(float64(score)/100, 30))
	return fmt.Sprintf("%s\n%s", text, bar)
}

func (f *ReportFormatter) formatBudget(b analysis.Budget) string {
	title := f.styles.Subtitle.Render("Budget:")

	status := f.styles.Success.Render(SuccessIcon + " Within budget")
	if b.OverBudget {
		status = f.styles.Warning.Render(WarningIcon + " Over budget")
	}

	lines := []string{
		fmt.Sprintf("Spending    %s of %s recommended", FormatAmount(b.CurrentSpending), FormatAmount(int64(b.RecommendedBudget))),
		fmt.Sprintf("Utilization %s", FormatPercent(b.Utilization)),
		status,
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (f *ReportFormatter) formatTopCategories(top []analysis.TopCategory) string {
	title := f.styles.Subtitle.Render("Top Spending Categories:")

	nameWidth := 22
	rows := make([]string, 0, len(top))
	for i, cat := range top {
		name := cat.Name
		if len(name) > nameWidth-1 {
			name = name[:nameWidth-4] + "..."
		}
		rows = append(rows, fmt.Sprintf("%d. %-*s %14s %7s  %s",
			i+1, nameWidth, name, FormatAmount(cat.Total), FormatPercent(cat.Percentage),
			f.styles.Expense.Render(RenderProgressBar(cat.Percentage/100, 15))))
	}
	return title + "\n" + strings.Join(rows, "\n")
}

func (f *ReportFormatter) formatTrend(trend []analysis.MonthTotals, direction analysis.Direction) string {
	var arrow string
	switch direction {
	case analysis.Up:
		arrow = f.styles.Success.Render(UpIcon + " improving")
	case analysis.Down:
		arrow = f.styles.Error.Render(DownIcon + " declining")
	default:
		arrow = f.styles.Subtle.Render("steady")
	}
	title := f.styles.Subtitle.Render("Monthly Trend: ") + arrow

	header := fmt.Sprintf("%-9s %14s %14s %14s %6s", "Month", "Income", "Expenses", "Balance", "Count")
	rows := []string{
		f.styles.Subtle.Bold(true).Render(header),
		f.styles.Subtle.Render(strings.Repeat("─", len(header))),
	}
	for _, m := range trend {
		rows = append(rows, fmt.Sprintf("%-9s %14s %14s %14s %6d",
			m.Month, FormatAmount(m.Income), FormatAmount(m.Expenses), FormatAmount(m.Balance), m.Count))
	}
	return title + "\n" + strings.Join(rows, "\n")
}

func (f *ReportFormatter) formatMetrics(m analysis.Metrics) string {
	title := f.styles.Subtitle.Render("Metrics:")
	lines := []string{
		fmt.Sprintf("Avg monthly income     %s", fmt.Sprintf("$%.2f", m.AvgMonthlyIncome)),
		fmt.Sprintf("Avg monthly expenses   %s", fmt.Sprintf("$%.2f", m.AvgMonthlyExpenses)),
		fmt.Sprintf("Avg transaction        %s", fmt.Sprintf("$%.2f", m.AvgTransactionAmount)),
		fmt.Sprintf("Avg expense            %s", fmt.Sprintf("$%.2f", m.AvgExpenseAmount)),
		fmt.Sprintf("Transactions per month %.1f", m.TransactionFrequency),
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (f *ReportFormatter) formatInsights(insights []analysis.Insight) string {
	formatted := make([]string, 0, len(insights))
	for _, insight := range insights {
		style := f.styles.ForInsight(insight.Kind)
		formatted = append(formatted, fmt.Sprintf("%s %s",
			style.Bold(true).Render("• "+insight.Title+":"),
			f.styles.Normal.Render(insight.Message)))
	}
	content := f.styles.Info.Bold(true).Render(" Insights ") + "\n" + strings.Join(formatted, "\n")
	return f.styles.InsightBox.Render(content)
}
