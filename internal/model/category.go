package model

import "fmt"

// CategoryType indicates which partition a category lives in.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// CategoryTypes lists the partitions in their canonical order.
var CategoryTypes = []CategoryType{CategoryTypeIncome, CategoryTypeExpense}

// Valid reports whether t is a known partition.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// ParseCategoryType converts user input into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid category type %q: must be income or expense", s)
	}
	return t, nil
}

// Category identifies a bucket that transactions are filed under.
// IDs are unique within a type partition only.
type Category struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Type  CategoryType `json:"type,omitempty"`
}

// CategoryPatch describes an update to a category. Nil fields are left untouched.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// CategoryRef is the display form of a category reference.
type CategoryRef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Display fallback for references to categories that no longer exist.
const (
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "bg-gray-500"
)

// UnknownCategory is returned when a category id cannot be resolved.
var UnknownCategory = CategoryRef{Name: UnknownCategoryName, Color: UnknownCategoryColor}

// CategoryColors is the palette new categories draw from when no colour is given.
var CategoryColors = []string{
	"bg-red-500",
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-purple-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-orange-500",
	"bg-teal-500",
	"bg-cyan-500",
	"bg-lime-500",
	"bg-amber-500",
	"bg-emerald-500",
	"bg-violet-500",
	"bg-rose-500",
	"bg-gray-500",
}

// CategorySet holds both partitions. It is persisted as a single unit.
type CategorySet struct {
	Expense []Category `json:"expense"`
	Income  []Category `json:"income"`
}

// For returns the partition for the given type.
func (s CategorySet) For(t CategoryType) []Category {
	switch t {
	case CategoryTypeIncome:
		return s.Income
	case CategoryTypeExpense:
		return s.Expense
	default:
		return nil
	}
}

// Clone returns a deep copy of the set with Type stamped on every entry.
func (s CategorySet) Clone() CategorySet {
	out := CategorySet{
		Expense: make([]Category, len(s.Expense)),
		Income:  make([]Category, len(s.Income)),
	}
	copy(out.Expense, s.Expense)
	copy(out.Income, s.Income)
	for i := range out.Expense {
		out.Expense[i].Type = CategoryTypeExpense
	}
	for i := range out.Income {
		out.Income[i].Type = CategoryTypeIncome
	}
	return out
}

// CategoryChoice is the category selected for a new transaction: either an
// existing category id or the name of a category to create on the fly.
type CategoryChoice struct {
	id      string
	newName string
}

// ExistingCategory selects a category that is already in the store.
func ExistingCategory(id string) CategoryChoice {
	return CategoryChoice{id: id}
}

// NewCategory asks for a category with the given name to be created.
func NewCategory(name string) CategoryChoice {
	return CategoryChoice{newName: name}
}

// Existing returns the selected id when the choice refers to an existing category.
func (c CategoryChoice) Existing() (string, bool) {
	return c.id, c.newName == "" && c.id != ""
}

// CreateNew returns the requested name when the choice asks for a new category.
func (c CategoryChoice) CreateNew() (string, bool) {
	return c.newName, c.newName != ""
}
