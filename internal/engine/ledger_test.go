package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/export"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/ofx"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/Veraticus/pocketbook/internal/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("txn-%d", n)
	}
}

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *storage.MemoryStorage) {
	t.Helper()
	backend := storage.NewMemoryStorage()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithTransactionOptions(transaction.WithIDGenerator(sequentialIDs())),
		WithCategoryOptions(category.WithSuffixGenerator(func() string { return "abc123def" })),
	}
	ledger := New(context.Background(), storage.NewAdapter(backend), append(base, opts...)...)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger, backend
}

func input(txType model.TransactionType, amount float64, date string) model.TransactionInput {
	return model.TransactionInput{
		Type:        txType,
		Amount:      amount,
		Date:        date,
		Description: "test",
	}
}

func seed(t *testing.T, l *Ledger) {
	t.Helper()
	ctx := context.Background()
	entries := []struct {
		txType   model.TransactionType
		amount   float64
		category string
		date     string
	}{
		{model.TypeIncome, 5000, "salary", "2024-03-01"},
		{model.TypeExpense, 1200, "food", "2024-03-05"},
		{model.TypeExpense, 800, "transport", "2024-03-10"},
		{model.TypeExpense, 300, "food", "2023-12-24"},
	}
	for _, e := range entries {
		_, err := l.AddTransaction(ctx, input(e.txType, e.amount, e.date), model.ExistingCategory(e.category))
		require.NoError(t, err)
	}
}

func TestLedger_AddTransactionExistingCategory(t *testing.T) {
	l, _ := newTestLedger(t)

	txn, err := l.AddTransaction(context.Background(), input(model.TypeExpense, 250, "2024-03-02"), model.ExistingCategory("food"))
	require.NoError(t, err)
	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, "food", txn.Category)
	assert.Equal(t, testNow, txn.CreatedAt)

	got, ok := l.GetTransaction("txn-1")
	require.True(t, ok)
	assert.Equal(t, txn, got)
	assert.Equal(t, "Food & Groceries", l.ResolveCategory(txn.Category, model.CategoryTypeExpense).Name)
}

func TestLedger_AddTransactionNewCategory(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	first, err := l.AddTransaction(ctx, input(model.TypeExpense, 90, "2024-03-02"), model.NewCategory("Pets"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Category, "expense-"))
	assert.True(t, strings.HasSuffix(first.Category, "-abc123def"))

	cat, ok := l.Categories().FindByName("pets", model.CategoryTypeExpense)
	require.True(t, ok)
	assert.Equal(t, first.Category, cat.ID)

	second, err := l.AddTransaction(ctx, input(model.TypeExpense, 40, "2024-03-03"), model.NewCategory("PETS"))
	require.NoError(t, err)
	assert.Equal(t, first.Category, second.Category, "existing name is reused")
	assert.Len(t, l.Categories().List(model.CategoryTypeExpense), 12)
	assert.False(t, l.Categories().Exists("Pets", model.CategoryTypeIncome))
}

func TestLedger_AddTransactionInvalidCreatesNothing(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.AddTransaction(context.Background(), input(model.TypeExpense, 0.5, "2024-03-02"), model.NewCategory("Pets"))
	require.Error(t, err)

	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("amount"))
	assert.False(t, l.Categories().Exists("Pets", model.CategoryTypeExpense))
	assert.Zero(t, l.Transactions().Len())
}

func TestLedger_AddTransactionPersistenceFailureIsSoft(t *testing.T) {
	l, backend := newTestLedger(t)
	backend.SetQuota(1)

	txn, err := l.AddTransaction(context.Background(), input(model.TypeIncome, 10, "2024-03-02"), model.NewCategory("Gifts"))
	require.Error(t, err)
	assert.True(t, common.IsSoft(err))
	assert.True(t, errors.Is(err, common.ErrNotPersisted))
	assert.Equal(t, "txn-1", txn.ID)
	assert.True(t, l.Categories().Exists("Gifts", model.CategoryTypeIncome))
	assert.Equal(t, 1, l.Transactions().Len())
}

func TestLedger_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	seed(t, l)

	desc := "Weekly shop"
	updated, err := l.UpdateTransaction(ctx, "txn-2", model.TransactionPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	require.NoError(t, l.DeleteTransaction(ctx, "txn-2"))
	_, ok := l.GetTransaction("txn-2")
	assert.False(t, ok)

	err = l.DeleteTransaction(ctx, "txn-2")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestLedger_ListAndAggregates(t *testing.T) {
	l, _ := newTestLedger(t)
	seed(t, l)

	spec := filter.DefaultSpec()
	spec.DateFrom = model.MustParseDate("2024-03-01")

	listed := l.ListTransactions(spec)
	require.Len(t, listed, 3)
	assert.Equal(t, "2024-03-10", listed[0].Date.String(), "newest first by default")

	summary := l.Summary(spec)
	assert.Equal(t, analysis.Summary{Income: 5000, Expenses: 2000, Balance: 3000, Count: 3, SavingsRate: 60}, summary)

	byCategory := l.CategoryBreakdown(spec)
	assert.Equal(t, analysis.CategoryTotal{Total: 1200, Count: 1}, byCategory["food"])

	breakdown := l.TypeBreakdown(filter.DefaultSpec())
	assert.Equal(t, int64(1500), breakdown.Expenses["food"].Total)
	assert.Equal(t, int64(5000), breakdown.Income["salary"].Total)

	trend := l.Trend(analysis.Month, filter.DefaultSpec())
	require.Len(t, trend, 2)
	assert.Equal(t, "2023-12", trend[0].Period)
	assert.Equal(t, int64(3000), trend[1].Net)

	monthly := l.MonthlyTrend(3)
	require.Len(t, monthly, 3)
	assert.Equal(t, int64(5000), monthly[2].Income)
	assert.Zero(t, monthly[0].Count)

	stats := l.CategoryStats()
	require.NotEmpty(t, stats)
	assert.Equal(t, "Salary", stats[len(stats)-1].Name)
}

func TestLedger_Report(t *testing.T) {
	l, _ := newTestLedger(t)
	seed(t, l)

	report := l.Report(filter.PeriodMonth)
	assert.Equal(t, "month", report.Period)
	assert.Equal(t, int64(5000), report.Summary.Income)
	assert.Equal(t, int64(2000), report.Summary.Expenses)
	assert.Len(t, report.Trend, analysis.DefaultTrendMonths)
	require.NotEmpty(t, report.TopCategories)
	assert.Equal(t, "food", report.TopCategories[0].CategoryID)
	assert.Equal(t, 3.0, report.Metrics.TransactionFrequency)

	all := l.Report(filter.PeriodAll)
	assert.Equal(t, 4, all.Summary.Count)
	assert.Equal(t, testNow, all.GeneratedAt)
}

func TestLedger_Theme(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, WithDefaultTheme(model.ThemeDark))

	assert.Equal(t, model.ThemeDark, l.Theme(ctx))

	require.NoError(t, l.SetTheme(ctx, model.ThemeAuto))
	assert.Equal(t, model.ThemeAuto, l.Theme(ctx))

	err := l.SetTheme(ctx, "neon")
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.ThemeAuto, l.Theme(ctx))
}

func TestLedger_ExportImportJSON(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestLedger(t)
	seed(t, source)

	var buf bytes.Buffer
	require.NoError(t, source.Export(&buf, export.FormatJSON, filter.DefaultSpec()))

	target, _ := newTestLedger(t)
	result, err := target.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Read: 4, Added: 4}, result)

	result, err = target.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Skipped())
	assert.Equal(t, 4, target.Transactions().Len())

	_, err = target.ImportJSON(ctx, strings.NewReader("nope"))
	assert.True(t, errors.Is(err, export.ErrInvalidFormat))
}

func TestLedger_ImportJSONAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	doc := `[{"type":"expense","amount":250,"category":"food","description":"lunch","date":"2024-03-02"}]`
	result, err := l.ImportJSON(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Read: 1, Added: 1}, result)

	txn, ok := l.GetTransaction("txn-1")
	require.True(t, ok)
	assert.Equal(t, "lunch", txn.Description)
	assert.Equal(t, testNow, txn.CreatedAt)
}

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240315120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240310120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024031001
<NAME>AMAZON.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240312120000[0:GMT]
<TRNAMT>20.00
<FITID>CC2024031201
<NAME>REFUND
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-25.99
<DTASOF>20240315120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestLedger_ImportOFX(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, WithImportCategories(ofx.Categories{Income: "bonus", Expense: "shopping"}))

	result, err := l.ImportOFX(ctx, strings.NewReader(statementOFX))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Read: 2, Added: 2}, result)

	purchase, ok := l.GetTransaction("ofx-4111111111111111-CC2024031001")
	require.True(t, ok)
	assert.Equal(t, int64(46), purchase.Amount)
	assert.Equal(t, "shopping", purchase.Category)
	assert.Equal(t, model.TypeExpense, purchase.Type)

	refund, ok := l.GetTransaction("ofx-4111111111111111-CC2024031201")
	require.True(t, ok)
	assert.Equal(t, "bonus", refund.Category)

	result, err = l.ImportOFX(ctx, strings.NewReader(statementOFX))
	require.NoError(t, err)
	assert.Zero(t, result.Added, "re-import adds nothing")

	_, err = l.ImportOFX(ctx, strings.NewReader("garbage"))
	assert.Error(t, err)
}

func TestLedger_BackupRestore(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	seed(t, l)
	_, err := l.AddCategory(ctx, model.CategoryTypeExpense, "Pets", "")
	require.NoError(t, err)
	require.NoError(t, l.SetTheme(ctx, model.ThemeDark))

	backup, err := l.Backup(ctx)
	require.NoError(t, err)
	assert.True(t, storage.ValidateBackup(backup))

	require.NoError(t, l.ClearTransactions(ctx))
	require.NoError(t, l.ResetCategories(ctx))
	require.NoError(t, l.SetTheme(ctx, model.ThemeLight))

	require.NoError(t, l.Restore(ctx, backup))
	assert.Equal(t, 4, l.Transactions().Len())
	assert.True(t, l.Categories().Exists("Pets", model.CategoryTypeExpense))
	assert.Equal(t, model.ThemeDark, l.Theme(ctx))

	err = l.Restore(ctx, []byte(`{"version":"1.0.0"}`))
	assert.True(t, errors.Is(err, storage.ErrInvalidBackup))
	assert.Equal(t, 4, l.Transactions().Len(), "invalid backup leaves data untouched")
}

func TestLedger_RestoreRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{
			name:  "out of bounds amount",
			data:  `"transactions":[{"id":"x","type":"expense","amount":-500,"category":"food","date":"2024-03-01"}]`,
			field: "[0].amount",
		},
		{
			name:  "malformed record",
			data:  `"transactions":[{"id":"y","type":"bogus","amount":0,"category":"","date":""}]`,
			field: "[0].type",
		},
		{
			name:  "blank category name",
			data:  `"categories":{"expense":[{"id":"food","name":" "}],"income":[]}`,
			field: "expense[0].name",
		},
		{
			name:  "unknown theme",
			data:  `"theme":"neon"`,
			field: "theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l, _ := newTestLedger(t)
			seed(t, l)
			require.NoError(t, l.SetTheme(ctx, model.ThemeDark))
			before := l.Summary(filter.DefaultSpec())

			raw := `{"version":"1.0.0","timestamp":"2024-03-01T10:00:00Z","data":{` + tt.data + `}}`
			err := l.Restore(ctx, []byte(raw))

			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.True(t, verr.Has(tt.field), "fields: %v", verr.Fields)

			assert.Equal(t, before, l.Summary(filter.DefaultSpec()))
			assert.Equal(t, 4, l.Transactions().Len())
			assert.Len(t, l.Categories().All(), 18)
			assert.Equal(t, model.ThemeDark, l.Theme(ctx))
		})
	}
}

func TestLedger_CategoryCommands(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	seed(t, l)

	name := "Groceries"
	updated, err := l.UpdateCategory(ctx, "food", model.CategoryTypeExpense, model.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	require.NoError(t, l.DeleteCategory(ctx, "food", model.CategoryTypeExpense))
	assert.Equal(t, model.UnknownCategory, l.ResolveCategory("food", model.CategoryTypeExpense))
	assert.Len(t, l.ListTransactions(filter.Spec{Category: "food"}), 2, "transactions keep the dangling id")
}

func TestLedger_Usage(t *testing.T) {
	l, _ := newTestLedger(t)
	seed(t, l)

	usage, err := l.Usage(context.Background())
	require.NoError(t, err)
	assert.Positive(t, usage.Slots[storage.KeyTransactions])
	assert.Equal(t, usage.TotalBytes, usage.AppBytes)
}
