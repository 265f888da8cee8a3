// Package filter derives filtered, sorted views of a transaction collection.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All disables the type or category criterion.
const All = "all"

// SortField names the attribute a view is ordered by.
type SortField string

// Sortable fields.
const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortDescription SortField = "description"
	SortCategory    SortField = "category"
	SortType        SortField = "type"
)

// SortFields lists the accepted sort fields in display order.
var SortFields = []SortField{SortDate, SortAmount, SortDescription, SortCategory, SortType}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Spec describes a view. The zero value of every criterion means "no
// constraint"; the zero sort means date descending.
type Spec struct {
	DateFrom  model.Date
	DateTo    model.Date
	AmountMin *int64
	AmountMax *int64
	Type      string
	Category  string
	Search    string
	SortBy    SortField
	SortOrder SortOrder
}

// DefaultSpec returns the spec with every default spelled out.
func DefaultSpec() Spec {
	return Spec{
		Type:      All,
		Category:  All,
		SortBy:    SortDate,
		SortOrder: Desc,
	}
}

// Apply returns the transactions matching spec, sorted. The input is never
// modified. Transactions that compare equal keep their input order.
func Apply(transactions []model.Transaction, spec Spec) []model.Transaction {
	out := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if spec.Matches(txn) {
			out = append(out, txn)
		}
	}

	compare := comparator(spec.SortBy)
	desc := spec.SortOrder != Asc
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Matches reports whether txn satisfies every criterion of spec.
func (s Spec) Matches(txn model.Transaction) bool {
	if active(s.Type) && string(txn.Type) != s.Type {
		return false
	}
	if active(s.Category) && txn.Category != s.Category {
		return false
	}
	if !s.Range().Contains(txn.Date) {
		return false
	}
	if s.AmountMin != nil && txn.Amount < *s.AmountMin {
		return false
	}
	if s.AmountMax != nil && txn.Amount > *s.AmountMax {
		return false
	}
	if query := strings.ToLower(strings.TrimSpace(s.Search)); query != "" {
		if !strings.Contains(strings.ToLower(txn.Description), query) &&
			!strings.Contains(strconv.FormatInt(txn.Amount, 10), query) {
			return false
		}
	}
	return true
}

// Range returns the date bounds of the spec.
func (s Spec) Range() service.DateRange {
	return service.DateRange{Start: s.DateFrom, End: s.DateTo}
}

// HasActive reports whether any criterion narrows the view.
func (s Spec) HasActive() bool {
	return active(s.Type) || active(s.Category) ||
		!s.DateFrom.IsZero() || !s.DateTo.IsZero() ||
		strings.TrimSpace(s.Search) != "" ||
		s.AmountMin != nil || s.AmountMax != nil
}

// Describe lists the active criteria in human-readable form. Category ids
// are shown through resolver when one is given.
func (s Spec) Describe(resolver service.CategoryResolver) []string {
	var parts []string
	if active(s.Type) {
		parts = append(parts, "Type: "+s.Type)
	}
	if active(s.Category) {
		name := s.Category
		if resolver != nil {
			name = s.describeCategory(resolver)
		}
		parts = append(parts, "Category: "+name)
	}
	if !s.DateFrom.IsZero() {
		parts = append(parts, "From: "+s.DateFrom.String())
	}
	if !s.DateTo.IsZero() {
		parts = append(parts, "To: "+s.DateTo.String())
	}
	if q := strings.TrimSpace(s.Search); q != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", q))
	}
	if s.AmountMin != nil {
		parts = append(parts, fmt.Sprintf("Min amount: %d", *s.AmountMin))
	}
	if s.AmountMax != nil {
		parts = append(parts, fmt.Sprintf("Max amount: %d", *s.AmountMax))
	}
	return parts
}

// Category ids are only unique per partition, so prefer the partition the
// type criterion points at and fall back to whichever one knows the id.
func (s Spec) describeCategory(resolver service.CategoryResolver) string {
	types := model.CategoryTypes
	if active(s.Type) {
		types = []model.CategoryType{model.CategoryType(s.Type)}
	}
	for _, t := range types {
		if ref := resolver.Resolve(s.Category, t); ref.Name != model.UnknownCategoryName {
			return ref.Name
		}
	}
	return model.UnknownCategoryName
}

// Validate reports every malformed criterion.
func (s Spec) Validate() error {
	verr := common.NewValidationError()

	if active(s.Type) && !model.TransactionType(s.Type).Valid() {
		verr.Add("type", "Type must be all, income or expense")
	}
	if s.SortBy != "" && !validSortField(s.SortBy) {
		verr.Add("sortBy", "Sort field must be one of date, amount, description, category, type")
	}
	if s.SortOrder != "" && s.SortOrder != Asc && s.SortOrder != Desc {
		verr.Add("sortOrder", "Sort order must be asc or desc")
	}
	if !s.DateFrom.IsZero() && !s.DateTo.IsZero() && s.DateFrom.After(s.DateTo) {
		verr.Add("dateTo", "End date must not be before start date")
	}
	if s.AmountMin != nil && *s.AmountMin < 0 {
		verr.Add("amountMin", "Minimum amount must not be negative")
	}
	if s.AmountMax != nil && *s.AmountMax < 0 {
		verr.Add("amountMax", "Maximum amount must not be negative")
	}
	if s.AmountMin != nil && s.AmountMax != nil && *s.AmountMin > *s.AmountMax {
		verr.Add("amountMax", "Maximum amount must not be below minimum amount")
	}

	return verr.OrNil()
}

func validSortField(f SortField) bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

func active(criterion string) bool {
	return criterion != "" && criterion != All
}

type compareFunc func(a, b model.Transaction) int

// comparator returns the ordering for field. Unknown fields order by
// creation time.
func comparator(field SortField) compareFunc {
	switch field {
	case SortDate, "":
		return func(a, b model.Transaction) int { return a.Date.Compare(b.Date.Time) }
	case SortAmount:
		return func(a, b model.Transaction) int { return compareInt(a.Amount, b.Amount) }
	case SortDescription:
		c := collate.New(language.English)
		return func(a, b model.Transaction) int { return c.CompareString(a.Description, b.Description) }
	case SortCategory:
		c := collate.New(language.English)
		return func(a, b model.Transaction) int { return c.CompareString(a.Category, b.Category) }
	case SortType:
		c := collate.New(language.English)
		return func(a, b model.Transaction) int { return c.CompareString(string(a.Type), string(b.Type)) }
	default:
		return func(a, b model.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
