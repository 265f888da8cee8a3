package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/engine"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/ofx"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/spf13/cobra"
)

// openLedger opens the configured database and loads the ledger from it.
func (a *app) openLedger(ctx context.Context) (*engine.Ledger, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return engine.New(ctx, storage.NewAdapter(store),
		engine.WithClock(a.now),
		engine.WithImportCategories(ofx.Categories{
			Income:  a.cfg.IncomeCategory,
			Expense: a.cfg.ExpenseCategory,
		}),
		engine.WithTrendMonths(a.cfg.ReportMonths),
		engine.WithDefaultTheme(a.cfg.DefaultTheme),
	), nil
}

// withLedger runs fn against an open ledger and closes it afterwards.
func (a *app) withLedger(cmd *cobra.Command, fn func(context.Context, *engine.Ledger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close database", nil)
		}
	}()

	return fn(ctx, ledger)
}

// finish turns a soft persistence failure into a warning. The change is
// live for this run but could not be written to disk.
func finish(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if common.IsSoft(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Change applied but could not be saved: "+err.Error()))
		return nil
	}
	return err
}

// confirm asks before a destructive action unless --yes was given.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(cmd.Context(), question)
}

// filterFlags are the view criteria shared by list, summary, trend and export.
type filterFlags struct {
	from      string
	to        string
	txnType   string
	category  string
	search    string
	sortBy    string
	order     string
	period    string
	minAmount int64
	maxAmount int64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.from, "from", "", "only transactions on or after this date (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "only transactions on or before this date (YYYY-MM-DD)")
	flags.StringVarP(&f.txnType, "type", "t", filter.All, "transaction type (all, income, expense)")
	flags.StringVarP(&f.category, "category", "c", filter.All, "category id or name")
	flags.StringVarP(&f.search, "search", "s", "", "search descriptions and amounts")
	flags.StringVar(&f.sortBy, "sort", string(filter.SortDate), "sort field (date, amount, description, category, type)")
	flags.StringVar(&f.order, "order", string(filter.Desc), "sort order (asc, desc)")
	flags.StringVarP(&f.period, "period", "p", "", "preset range (week, month, quarter, year, ytd, all)")
	flags.Int64Var(&f.minAmount, "min", 0, "minimum amount")
	flags.Int64Var(&f.maxAmount, "max", 0, "maximum amount")
}

// spec builds the filter described by the flags. Category names are
// resolved to ids through ledger.
func (f *filterFlags) spec(cmd *cobra.Command, ledger *engine.Ledger, now time.Time) (filter.Spec, error) {
	spec := filter.Spec{
		Type:      strings.ToLower(f.txnType),
		Category:  f.category,
		Search:    f.search,
		SortBy:    filter.SortField(strings.ToLower(f.sortBy)),
		SortOrder: filter.SortOrder(strings.ToLower(f.order)),
	}

	if f.period != "" {
		period, err := filter.ParsePeriod(strings.ToLower(f.period))
		if err != nil {
			return spec, err
		}
		spec = spec.WithPeriod(period, now)
	}

	if f.from != "" {
		d, err := model.ParseDate(f.from)
		if err != nil {
			return spec, fmt.Errorf("invalid --from: %w", err)
		}
		spec.DateFrom = d
	}
	if f.to != "" {
		d, err := model.ParseDate(f.to)
		if err != nil {
			return spec, fmt.Errorf("invalid --to: %w", err)
		}
		spec.DateTo = d
	}

	if cmd.Flags().Changed("min") {
		spec.AmountMin = &f.minAmount
	}
	if cmd.Flags().Changed("max") {
		spec.AmountMax = &f.maxAmount
	}

	if spec.Category != filter.All && spec.Category != "" {
		spec.Category = categoryID(ledger, spec.Category, typesFor(spec.Type)...)
	}

	return spec, spec.Validate()
}

func typesFor(filterType string) []model.CategoryType {
	switch filterType {
	case string(model.TypeIncome):
		return []model.CategoryType{model.CategoryTypeIncome}
	case string(model.TypeExpense):
		return []model.CategoryType{model.CategoryTypeExpense}
	default:
		return model.CategoryTypes
	}
}

// categoryID maps a user-supplied id or name to a category id. Unknown
// references are returned unchanged so that validation can report them.
func categoryID(ledger *engine.Ledger, ref string, types ...model.CategoryType) string {
	store := ledger.Categories()
	for _, t := range types {
		if _, ok := store.Get(ref, t); ok {
			return ref
		}
	}
	for _, t := range types {
		if c, ok := store.FindByName(ref, t); ok {
			return c.ID
		}
	}
	return ref
}
