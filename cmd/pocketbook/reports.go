package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/engine"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// terminalWidth returns the output width, or 0 when not on a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func (a *app) summaryCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals and the per-category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				spec, err := filters.spec(cmd, ledger, a.now())
				if err != nil {
					return err
				}

				formatter := cli.NewReportFormatter().WithWidth(terminalWidth())
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatTitle("Summary"))
				fmt.Fprintln(out, formatter.FormatSummary(ledger.Summary(spec)))

				breakdown := ledger.TypeBreakdown(spec)
				categories := ledger.Categories()
				fmt.Fprintln(out, formatBreakdown("Income by category", breakdown.Income, categories, model.CategoryTypeIncome))
				fmt.Fprintln(out, formatBreakdown("Expenses by category", breakdown.Expenses, categories, model.CategoryTypeExpense))
				return nil
			})
		},
	}
	filters.register(cmd)
	return cmd
}

// formatBreakdown lists category totals, largest first.
func formatBreakdown(title string, totals map[string]analysis.CategoryTotal, resolver service.CategoryResolver, t model.CategoryType) string {
	heading := cli.SubtitleStyle.Render(title + ":")
	if len(totals) == 0 {
		return heading + "\n" + cli.SubtleStyle.Render("  none")
	}

	type row struct {
		name  string
		total analysis.CategoryTotal
	}
	rows := make([]row, 0, len(totals))
	for id, total := range totals {
		rows = append(rows, row{name: resolver.Resolve(id, t).Name, total: total})
	}
	slices.SortFunc(rows, func(x, y row) int {
		if x.total.Total != y.total.Total {
			if x.total.Total > y.total.Total {
				return -1
			}
			return 1
		}
		return strings.Compare(x.name, y.name)
	})

	lines := []string{heading}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %-24s %14s %5d", r.name, cli.FormatAmount(r.total.Total), r.total.Count))
	}
	return strings.Join(lines, "\n")
}

func (a *app) trendCmd() *cobra.Command {
	var (
		filters filterFlags
		by      string
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show income and expenses per day, week, month, quarter or year",
		Long: `Group the selected transactions by calendar period and show income,
expenses and net per period, oldest first.

Example:
  pocketbook trend --by quarter --period year`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := analysis.ParseGranularity(strings.ToLower(by))
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				spec, err := filters.spec(cmd, ledger, a.now())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatTitle("Trend by "+string(g)))
				fmt.Fprintln(out, cli.NewReportFormatter().FormatPeriods(ledger.Trend(g, spec)))
				return nil
			})
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&by, "by", string(analysis.Month), "bucket size (day, week, month, quarter, year)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the financial health report",
		Long: `Show a report for a period: totals, a 0-100 health score, budget use,
top spending categories, the monthly trend, averages and insights.

Example:
  pocketbook report --period quarter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := filter.ParsePeriod(strings.ToLower(period))
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(_ context.Context, ledger *engine.Ledger) error {
				report := ledger.Report(p)
				formatter := cli.NewReportFormatter().WithWidth(terminalWidth())
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReport(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(filter.PeriodMonth), "period (week, month, quarter, year, ytd, all)")
	return cmd
}
