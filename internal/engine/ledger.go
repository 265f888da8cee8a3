// Package engine is the application object that owns the category and
// transaction stores and exposes the commands the user interface drives.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/ofx"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/Veraticus/pocketbook/internal/transaction"
)

// Ledger wires the stores to the storage adapter and the pure filter and
// aggregation functions.
type Ledger struct {
	adapter          *storage.Adapter
	categories       *category.Store
	transactions     *transaction.Store
	parser           *ofx.Parser
	now              func() time.Time
	importCategories ofx.Categories
	defaultTheme     model.Theme
	categoryOpts     []category.Option
	transactionOpts  []transaction.Option
	trendMonths      int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source for every component.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
		l.categoryOpts = append(l.categoryOpts, category.WithClock(now))
		l.transactionOpts = append(l.transactionOpts, transaction.WithClock(now))
	}
}

// WithTransactionOptions passes options through to the transaction store.
func WithTransactionOptions(opts ...transaction.Option) Option {
	return func(l *Ledger) {
		l.transactionOpts = append(l.transactionOpts, opts...)
	}
}

// WithCategoryOptions passes options through to the category store.
func WithCategoryOptions(opts ...category.Option) Option {
	return func(l *Ledger) {
		l.categoryOpts = append(l.categoryOpts, opts...)
	}
}

// WithImportCategories sets the categories statement imports are filed under.
func WithImportCategories(c ofx.Categories) Option {
	return func(l *Ledger) {
		l.importCategories = c
	}
}

// WithTrendMonths sets the trailing trend window used by reports.
func WithTrendMonths(months int) Option {
	return func(l *Ledger) {
		l.trendMonths = months
	}
}

// WithDefaultTheme sets the theme reported before one has been saved.
func WithDefaultTheme(t model.Theme) Option {
	return func(l *Ledger) {
		l.defaultTheme = t
	}
}

// New loads both stores from adapter.
func New(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Ledger {
	l := &Ledger{
		adapter:          adapter,
		parser:           ofx.NewParser(),
		now:              time.Now,
		importCategories: ofx.Categories{Income: "salary", Expense: "shopping"},
		defaultTheme:     model.ThemeLight,
		trendMonths:      analysis.DefaultTrendMonths,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.categories = category.NewStore(ctx, adapter, l.categoryOpts...)
	l.transactions = transaction.NewStore(ctx, adapter, l.transactionOpts...)

	slog.Debug("Ledger ready",
		"transactions", l.transactions.Len(),
		"categories", len(l.categories.All()))
	return l
}

// Categories exposes the category store for read access.
func (l *Ledger) Categories() *category.Store {
	return l.categories
}

// Transactions exposes the transaction store for read access.
func (l *Ledger) Transactions() *transaction.Store {
	return l.transactions
}

// Close releases the storage backend.
func (l *Ledger) Close() error {
	return l.adapter.Backend().Close()
}

// AddTransaction records a new transaction. When choice asks for a new
// category, a category of that name in the transaction's partition is reused
// if one exists and created otherwise. Nothing is created unless the rest of
// the input is valid.
func (l *Ledger) AddTransaction(ctx context.Context, input model.TransactionInput, choice model.CategoryChoice) (model.Transaction, error) {
	var warnings []error

	if id, ok := choice.Existing(); ok {
		input.Category = id
	}

	if name, ok := choice.CreateNew(); ok {
		input.Category = name
		if _, err := transaction.Validate(input); err != nil {
			return model.Transaction{}, err
		}

		id, err := l.ensureCategory(ctx, input.Type.CategoryType(), name)
		if err != nil && !common.IsSoft(err) {
			return model.Transaction{}, err
		}
		if err != nil {
			warnings = append(warnings, err)
		}
		input.Category = id
	}

	txn, err := l.transactions.Add(ctx, input)
	if err != nil && !common.IsSoft(err) {
		return model.Transaction{}, err
	}
	if err != nil {
		warnings = append(warnings, err)
	}
	return txn, errors.Join(warnings...)
}

func (l *Ledger) ensureCategory(ctx context.Context, t model.CategoryType, name string) (string, error) {
	if existing, ok := l.categories.FindByName(name, t); ok {
		return existing.ID, nil
	}
	cat, err := l.categories.Add(ctx, t, name, "")
	if err != nil && !common.IsSoft(err) {
		return "", fmt.Errorf("failed to create category %q: %w", name, err)
	}
	slog.Info("Created category for transaction", "id", cat.ID, "name", cat.Name)
	return cat.ID, err
}

// UpdateTransaction applies patch to the transaction with id.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (model.Transaction, error) {
	return l.transactions.Update(ctx, id, patch)
}

// DeleteTransaction removes the transaction with id.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	return l.transactions.Delete(ctx, id)
}

// GetTransaction looks a transaction up by id.
func (l *Ledger) GetTransaction(id string) (model.Transaction, bool) {
	return l.transactions.GetByID(id)
}

// ListTransactions returns the filtered, sorted view described by spec.
func (l *Ledger) ListTransactions(spec filter.Spec) []model.Transaction {
	return filter.Apply(l.transactions.All(), spec)
}

// ClearTransactions removes every transaction.
func (l *Ledger) ClearTransactions(ctx context.Context) error {
	return l.transactions.Clear(ctx)
}

// AddCategory creates a category.
func (l *Ledger) AddCategory(ctx context.Context, t model.CategoryType, name, color string) (model.Category, error) {
	return l.categories.Add(ctx, t, name, color)
}

// UpdateCategory applies patch to a category.
func (l *Ledger) UpdateCategory(ctx context.Context, id string, t model.CategoryType, patch model.CategoryPatch) (model.Category, error) {
	return l.categories.Update(ctx, id, t, patch)
}

// DeleteCategory removes a category. Transactions that reference it keep the
// id and resolve to the unknown fallback.
func (l *Ledger) DeleteCategory(ctx context.Context, id string, t model.CategoryType) error {
	return l.categories.Delete(ctx, id, t)
}

// ResolveCategory returns the display form of a category reference.
func (l *Ledger) ResolveCategory(id string, t model.CategoryType) model.CategoryRef {
	return l.categories.Resolve(id, t)
}

// ResetCategories restores the default categories.
func (l *Ledger) ResetCategories(ctx context.Context) error {
	return l.categories.Reset(ctx)
}

// Theme returns the saved theme, or the default when none is saved or the
// saved value is not a known theme.
func (l *Ledger) Theme(ctx context.Context) model.Theme {
	saved := storage.Get(ctx, l.adapter, storage.KeyTheme, string(l.defaultTheme))
	theme, err := model.ParseTheme(saved)
	if err != nil {
		slog.Warn("Ignoring unknown saved theme", "theme", saved)
		return l.defaultTheme
	}
	return theme
}

// SetTheme saves the theme preference.
func (l *Ledger) SetTheme(ctx context.Context, theme model.Theme) error {
	if _, err := model.ParseTheme(string(theme)); err != nil {
		verr := common.NewValidationError()
		verr.Add("theme", err.Error())
		return verr
	}
	if err := l.adapter.Save(ctx, storage.KeyTheme, theme); err != nil {
		return &common.PersistenceError{Key: storage.KeyTheme, Err: err}
	}
	return nil
}
