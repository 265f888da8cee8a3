// Package category owns the income and expense category partitions.
package category

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/google/uuid"
)

// MaxNameLength bounds category names, counted in characters.
const MaxNameLength = 50

// Store owns both category partitions and persists them together on every
// mutation. It is safe for concurrent use.
type Store struct {
	adapter *storage.Adapter
	now     func() time.Time
	suffix  func() string
	set     model.CategorySet
	mu      sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for generated ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSuffixGenerator overrides the random suffix used for generated ids.
func WithSuffixGenerator(suffix func() string) Option {
	return func(s *Store) {
		s.suffix = suffix
	}
}

// NewStore loads the persisted categories, falling back to the default set
// when nothing has been saved yet.
func NewStore(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		now:     time.Now,
		suffix:  randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// Reload re-reads the categories from storage, discarding in-memory state.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Store) load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) {
	set, ok := storage.Lookup[model.CategorySet](ctx, s.adapter, storage.KeyCategories)
	if !ok {
		s.set = model.DefaultCategories()
		return
	}
	s.set = set.Clone()
	slog.Debug("Loaded categories",
		"income", len(s.set.Income),
		"expense", len(s.set.Expense))
}

// Add creates a category in the given partition.
func (s *Store) Add(ctx context.Context, categoryType model.CategoryType, name, color string) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	verr := common.NewValidationError()
	if !categoryType.Valid() {
		verr.Add("type", "Category type must be income or expense")
	} else {
		s.validateName(verr, categoryType, name, "")
	}
	if err := verr.OrNil(); err != nil {
		return model.Category{}, err
	}

	partition := s.partition(categoryType)
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.CategoryColors[len(*partition)%len(model.CategoryColors)]
	}

	cat := model.Category{
		ID:    fmt.Sprintf("%s-%d-%s", categoryType, s.now().UnixMilli(), s.suffix()),
		Name:  name,
		Color: color,
		Type:  categoryType,
	}
	*partition = append(*partition, cat)

	slog.Info("Created category", "id", cat.ID, "name", cat.Name, "type", categoryType)
	return cat, s.persistLocked(ctx)
}

// Update applies patch to the category with id in the given partition.
func (s *Store) Update(ctx context.Context, id string, categoryType model.CategoryType, patch model.CategoryPatch) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition := s.partition(categoryType)
	idx := indexOf(partition, id)
	if idx < 0 {
		return model.Category{}, &common.NotFoundError{Kind: "category", ID: id}
	}

	updated := (*partition)[idx]
	verr := common.NewValidationError()
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		s.validateName(verr, categoryType, name, id)
		updated.Name = name
	}
	if patch.Color != nil {
		if color := strings.TrimSpace(*patch.Color); color != "" {
			updated.Color = color
		} else {
			verr.Add("color", "Color cannot be blank")
		}
	}
	if err := verr.OrNil(); err != nil {
		return model.Category{}, err
	}

	(*partition)[idx] = updated
	return updated, s.persistLocked(ctx)
}

// Delete removes a category. Transactions that reference it are left alone
// and resolve to the unknown fallback from then on.
func (s *Store) Delete(ctx context.Context, id string, categoryType model.CategoryType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition := s.partition(categoryType)
	idx := indexOf(partition, id)
	if idx < 0 {
		return &common.NotFoundError{Kind: "category", ID: id}
	}

	*partition = append((*partition)[:idx:idx], (*partition)[idx+1:]...)
	slog.Info("Deleted category", "id", id, "type", categoryType)
	return s.persistLocked(ctx)
}

// Get returns the category with id in the given partition.
func (s *Store) Get(id string, categoryType model.CategoryType) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cat := range s.set.For(categoryType) {
		if cat.ID == id {
			return cat, true
		}
	}
	return model.Category{}, false
}

// Resolve returns the display form of a reference, or the unknown fallback.
func (s *Store) Resolve(id string, categoryType model.CategoryType) model.CategoryRef {
	cat, ok := s.Get(id, categoryType)
	if !ok {
		return model.UnknownCategory
	}
	return model.CategoryRef{Name: cat.Name, Color: cat.Color}
}

// Exists reports whether a category with this name (case-insensitive) is in
// the partition.
func (s *Store) Exists(name string, categoryType model.CategoryType) bool {
	_, ok := s.FindByName(name, categoryType)
	return ok
}

// FindByName looks a category up by case-insensitive name.
func (s *Store) FindByName(name string, categoryType model.CategoryType) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByName(s.set.For(categoryType), name)
}

// List returns a copy of one partition.
func (s *Store) List(categoryType model.CategoryType) []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.set.For(categoryType)
	out := make([]model.Category, len(src))
	copy(out, src)
	return out
}

// All returns both partitions flattened, income first.
func (s *Store) All() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Category, 0, len(s.set.Income)+len(s.set.Expense))
	out = append(out, s.set.Income...)
	out = append(out, s.set.Expense...)
	return out
}

// Snapshot returns a deep copy of both partitions.
func (s *Store) Snapshot() model.CategorySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Clone()
}

// Search returns categories whose name contains query, case-insensitively.
// An empty categoryType searches both partitions.
func (s *Store) Search(query string, categoryType model.CategoryType) []model.Category {
	var candidates []model.Category
	if categoryType != "" {
		candidates = s.List(categoryType)
	} else {
		candidates = s.All()
	}

	query = strings.ToLower(query)
	var out []model.Category
	for _, cat := range candidates {
		if strings.Contains(strings.ToLower(cat.Name), query) {
			out = append(out, cat)
		}
	}
	return out
}

// Reset restores the default categories.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = model.DefaultCategories()
	slog.Info("Reset categories to defaults")
	return s.persistLocked(ctx)
}

// Import replaces both partitions after validating them.
func (s *Store) Import(ctx context.Context, set model.CategorySet) error {
	clean, err := normalizeSet(set)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = clean
	return s.persistLocked(ctx)
}

// CheckSlot validates an encoded categories slot, as found in backups, and
// returns it re-encoded with trimmed names.
func CheckSlot(raw json.RawMessage) (json.RawMessage, error) {
	var set model.CategorySet
	if err := json.Unmarshal(raw, &set); err != nil {
		verr := common.NewValidationError()
		verr.Add("categories", "Categories must be an object of expense and income lists")
		return nil, verr
	}

	clean, err := normalizeSet(set)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories: %w", err)
	}
	return out, nil
}

// normalizeSet checks ids and names in both partitions and returns a copy
// with trimmed names.
func normalizeSet(set model.CategorySet) (model.CategorySet, error) {
	clean := set.Clone()
	verr := common.NewValidationError()
	for _, categoryType := range model.CategoryTypes {
		partition := clean.For(categoryType)
		seenIDs := make(map[string]bool)
		for i := range partition {
			cat := &partition[i]
			prefix := fmt.Sprintf("%s[%d].", categoryType, i)
			switch {
			case strings.TrimSpace(cat.ID) == "":
				verr.Add(prefix+"id", "Category id is required")
			case seenIDs[cat.ID]:
				verr.Add(prefix+"id", "Category id is duplicated")
			}
			seenIDs[cat.ID] = true

			cat.Name = strings.TrimSpace(cat.Name)
			nameErr := common.NewValidationError()
			checkName(nameErr, partition[:i], cat.Name, "")
			verr.Merge(prefix, nameErr)
		}
	}
	if err := verr.OrNil(); err != nil {
		return model.CategorySet{}, err
	}
	return clean, nil
}

// Stat aggregates transactions filed under one category.
type Stat struct {
	CategoryID string
	Type       model.CategoryType
	Name       string
	Color      string
	Count      int
	Total      int64
}

// Stats summarises transactions per category, in order of first appearance.
func (s *Store) Stats(transactions []model.Transaction) []Stat {
	index := make(map[string]int)
	var stats []Stat

	for _, txn := range transactions {
		key := string(txn.Type) + "-" + txn.Category
		i, seen := index[key]
		if !seen {
			ref := s.Resolve(txn.Category, txn.Type.CategoryType())
			stats = append(stats, Stat{
				CategoryID: txn.Category,
				Type:       txn.Type.CategoryType(),
				Name:       ref.Name,
				Color:      ref.Color,
			})
			i = len(stats) - 1
			index[key] = i
		}
		stats[i].Count++
		stats[i].Total += txn.Amount
	}
	return stats
}

func (s *Store) partition(categoryType model.CategoryType) *[]model.Category {
	switch categoryType {
	case model.CategoryTypeIncome:
		return &s.set.Income
	case model.CategoryTypeExpense:
		return &s.set.Expense
	default:
		return nil
	}
}

func (s *Store) validateName(verr *common.ValidationError, categoryType model.CategoryType, name, selfID string) {
	checkName(verr, s.set.For(categoryType), name, selfID)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.adapter.Save(ctx, storage.KeyCategories, s.set); err != nil {
		return &common.PersistenceError{Key: storage.KeyCategories, Err: err}
	}
	return nil
}

func checkName(verr *common.ValidationError, existing []model.Category, name, selfID string) {
	switch {
	case name == "":
		verr.Add("name", "Category name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		verr.Add("name", fmt.Sprintf("Category name must be at most %d characters", MaxNameLength))
	default:
		if cat, ok := findByName(existing, name); ok && cat.ID != selfID {
			verr.Add("name", "Category name already exists")
		}
	}
}

func findByName(categories []model.Category, name string) (model.Category, bool) {
	name = strings.TrimSpace(name)
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return model.Category{}, false
}

func indexOf(categories *[]model.Category, id string) int {
	if categories == nil {
		return -1
	}
	for i, cat := range *categories {
		if cat.ID == id {
			return i
		}
	}
	return -1
}
