package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func txn(id string, t model.TransactionType, category, description, date string, amount int64, createdOffset int) model.Transaction {
	return model.Transaction{
		ID:          id,
		Type:        t,
		Category:    category,
		Description: description,
		Date:        model.MustParseDate(date),
		Amount:      amount,
		CreatedAt:   base.Add(time.Duration(createdOffset) * time.Hour),
	}
}

func fixture() []model.Transaction {
	return []model.Transaction{
		txn("a", model.TypeIncome, "salary", "January salary", "2024-01-05", 5000, 1),
		txn("b", model.TypeExpense, "food", "groceries", "2024-01-10", 1200, 2),
		txn("c", model.TypeExpense, "rent", "Flat rent", "2024-02-01", 800, 3),
		txn("d", model.TypeExpense, "food", "Eating out", "2024-01-10", 1200, 0),
	}
}

func ids(txns []model.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func i64(v int64) *int64 { return &v }

func TestApply_Criteria(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{name: "defaults keep everything date desc", spec: DefaultSpec(), want: []string{"c", "b", "d", "a"}},
		{name: "zero spec behaves like defaults", spec: Spec{}, want: []string{"c", "b", "d", "a"}},
		{name: "type income", spec: Spec{Type: "income"}, want: []string{"a"}},
		{name: "category", spec: Spec{Category: "food"}, want: []string{"b", "d"}},
		{name: "date from inclusive", spec: Spec{DateFrom: model.MustParseDate("2024-01-10")}, want: []string{"c", "b", "d"}},
		{name: "date to inclusive", spec: Spec{DateTo: model.MustParseDate("2024-01-10")}, want: []string{"b", "d", "a"}},
		{name: "search description case-insensitive", spec: Spec{Search: "SALARY"}, want: []string{"a"}},
		{name: "search amount string", spec: Spec{Search: "80"}, want: []string{"c"}},
		{name: "amount bounds inclusive", spec: Spec{AmountMin: i64(800), AmountMax: i64(1200)}, want: []string{"c", "b", "d"}},
		{name: "no matches", spec: Spec{Type: "income", Category: "food"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.spec)))
		})
	}
}

func TestApply_Sorting(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{name: "date asc ties keep input order", spec: Spec{SortBy: SortDate, SortOrder: Asc}, want: []string{"a", "b", "d", "c"}},
		{name: "date desc ties keep input order", spec: Spec{SortBy: SortDate, SortOrder: Desc}, want: []string{"c", "b", "d", "a"}},
		{name: "amount asc", spec: Spec{SortBy: SortAmount, SortOrder: Asc}, want: []string{"c", "b", "d", "a"}},
		{name: "amount desc", spec: Spec{SortBy: SortAmount, SortOrder: Desc}, want: []string{"a", "b", "d", "c"}},
		{name: "description asc ignores case", spec: Spec{SortBy: SortDescription, SortOrder: Asc}, want: []string{"d", "c", "b", "a"}},
		{name: "category asc", spec: Spec{SortBy: SortCategory, SortOrder: Asc}, want: []string{"b", "d", "c", "a"}},
		{name: "type asc", spec: Spec{SortBy: SortType, SortOrder: Asc}, want: []string{"b", "c", "d", "a"}},
		{name: "unknown field sorts by creation", spec: Spec{SortBy: "colour", SortOrder: Asc}, want: []string{"d", "a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.spec)))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := fixture()
	_ = Apply(input, Spec{SortBy: SortAmount, SortOrder: Asc})
	assert.Equal(t, fixture(), input)
}

func TestApply_TypeUnionCoversAll(t *testing.T) {
	all := Apply(fixture(), DefaultSpec())
	income := Apply(fixture(), Spec{Type: string(model.TypeIncome)})
	expense := Apply(fixture(), Spec{Type: string(model.TypeExpense)})

	assert.Len(t, all, len(income)+len(expense))
	assert.ElementsMatch(t, ids(all), append(ids(income), ids(expense)...))
}

func TestSpec_HasActive(t *testing.T) {
	assert.False(t, DefaultSpec().HasActive())
	assert.False(t, Spec{SortBy: SortAmount, SortOrder: Asc}.HasActive(), "sorting is not a filter")
	assert.True(t, Spec{Search: "x"}.HasActive())
	assert.True(t, Spec{AmountMax: i64(10)}.HasActive())
	assert.True(t, Spec{DateTo: model.MustParseDate("2024-01-01")}.HasActive())
}

type stubResolver map[string]string

func (r stubResolver) Resolve(id string, t model.CategoryType) model.CategoryRef {
	if name, ok := r[string(t)+"/"+id]; ok {
		return model.CategoryRef{Name: name}
	}
	return model.UnknownCategory
}

func TestSpec_Describe(t *testing.T) {
	spec := Spec{
		Category:  "food",
		DateFrom:  model.MustParseDate("2024-01-01"),
		Search:    "lunch",
		AmountMin: i64(5),
	}

	got := spec.Describe(stubResolver{"expense/food": "Food & Groceries"})
	assert.Equal(t, []string{
		"Category: Food & Groceries",
		"From: 2024-01-01",
		`Search: "lunch"`,
		"Min amount: 5",
	}, got)

	assert.Equal(t, []string{"Category: food"}, Spec{Category: "food"}.Describe(nil))
	assert.Empty(t, DefaultSpec().Describe(nil))
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name       string
		spec       Spec
		wantFields []string
	}{
		{name: "defaults", spec: DefaultSpec()},
		{name: "bad type", spec: Spec{Type: "transfer"}, wantFields: []string{"type"}},
		{name: "bad sort", spec: Spec{SortBy: "colour", SortOrder: "up"}, wantFields: []string{"sortBy", "sortOrder"}},
		{name: "inverted dates", spec: Spec{DateFrom: model.MustParseDate("2024-02-01"), DateTo: model.MustParseDate("2024-01-01")}, wantFields: []string{"dateTo"}},
		{name: "inverted amounts", spec: Spec{AmountMin: i64(10), AmountMax: i64(5)}, wantFields: []string{"amountMax"}},
		{name: "negative amount", spec: Spec{AmountMin: i64(-1)}, wantFields: []string{"amountMin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr))
			for _, field := range tt.wantFields {
				assert.True(t, verr.Has(field), "expected failure on %s", field)
			}
		})
	}
}

func TestRangeFor(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)
	today := model.NewDate(2024, time.May, 15)

	tests := []struct {
		period    Period
		wantStart model.Date
	}{
		{period: PeriodWeek, wantStart: model.NewDate(2024, time.May, 8)},
		{period: PeriodMonth, wantStart: model.NewDate(2024, time.April, 15)},
		{period: PeriodQuarter, wantStart: model.NewDate(2024, time.February, 15)},
		{period: PeriodYear, wantStart: model.NewDate(2023, time.May, 15)},
		{period: PeriodYTD, wantStart: model.NewDate(2024, time.January, 1)},
		{period: "fortnight", wantStart: model.NewDate(2024, time.April, 15)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			r := RangeFor(tt.period, now)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, today, r.End)
		})
	}

	assert.True(t, RangeFor(PeriodAll, now).Start.IsZero())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("ytd")
	require.NoError(t, err)
	assert.Equal(t, PeriodYTD, p)

	_, err = ParsePeriod("decade")
	assert.Error(t, err)
}
