// Package transaction owns the recorded transaction collection.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/google/uuid"
)

// Store holds transactions most-recent-first and persists the whole
// collection after every mutation. It is safe for concurrent use.
type Store struct {
	adapter *storage.Adapter
	now     func() time.Time
	newID   func() string
	txns    []model.Transaction
	mu      sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides how transaction ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore loads persisted transactions. A missing or corrupt slot yields an
// empty collection.
func NewStore(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload(ctx)
	return s
}

// Reload re-reads the collection from storage.
func (s *Store) Reload(ctx context.Context) {
	txns := storage.Get(ctx, s.adapter, storage.KeyTransactions, []model.Transaction{})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = txns
	slog.Debug("Loaded transactions", "count", len(txns))
}

// Add validates input, stamps identity and timestamps, and inserts the new
// transaction at the head of the collection.
func (s *Store) Add(ctx context.Context, input model.TransactionInput) (model.Transaction, error) {
	txn, err := Validate(input)
	if err != nil {
		return model.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	txn.ID = s.newID()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	s.txns = append([]model.Transaction{txn}, s.txns...)
	slog.Debug("Added transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return txn, s.persistLocked(ctx)
}

// Update applies patch to the transaction with id. Only the patched fields
// are validated; createdAt is never changed.
func (s *Store) Update(ctx context.Context, id string, patch model.TransactionPatch) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Transaction{}, &common.NotFoundError{Kind: "transaction", ID: id}
	}

	updated, err := applyPatch(s.txns[idx], patch)
	if err != nil {
		return model.Transaction{}, err
	}
	updated.UpdatedAt = s.now().UTC()

	s.txns[idx] = updated
	return updated, s.persistLocked(ctx)
}

// Delete removes the transaction with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return &common.NotFoundError{Kind: "transaction", ID: id}
	}

	s.txns = append(s.txns[:idx:idx], s.txns[idx+1:]...)
	slog.Debug("Deleted transaction", "id", id)
	return s.persistLocked(ctx)
}

// GetByID returns the transaction with id.
func (s *Store) GetByID(id string) (model.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.txns[idx], true
	}
	return model.Transaction{}, false
}

// All returns a copy of the collection in storage order.
func (s *Store) All() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns)
}

// ByType returns transactions of the given type.
func (s *Store) ByType(t model.TransactionType) []model.Transaction {
	return s.where(func(txn model.Transaction) bool { return txn.Type == t })
}

// ByCategory returns transactions filed under categoryID.
func (s *Store) ByCategory(categoryID string) []model.Transaction {
	return s.where(func(txn model.Transaction) bool { return txn.Category == categoryID })
}

// ByDateRange returns transactions dated inside r.
func (s *Store) ByDateRange(r service.DateRange) []model.Transaction {
	return s.where(func(txn model.Transaction) bool { return r.Contains(txn.Date) })
}

// Search matches query case-insensitively against the description, the
// category id and the amount.
func (s *Store) Search(query string) []model.Transaction {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.All()
	}
	return s.where(func(txn model.Transaction) bool {
		return strings.Contains(strings.ToLower(txn.Description), query) ||
			strings.Contains(strings.ToLower(txn.Category), query) ||
			strings.Contains(strconv.FormatInt(txn.Amount, 10), query)
	})
}

// Recent returns up to limit transactions, newest createdAt first.
func (s *Store) Recent(limit int) []model.Transaction {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Clear removes every transaction and the persisted slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns = nil
	if !s.adapter.Remove(ctx, storage.KeyTransactions) {
		return &common.PersistenceError{Key: storage.KeyTransactions}
	}
	slog.Info("Cleared all transactions")
	return nil
}

// Import validates every record and prepends those whose id is not already
// present. Records without an id get a fresh one. The batch is rejected as a
// whole if any record is invalid.
func (s *Store) Import(ctx context.Context, records []model.Transaction) (int, error) {
	verr := common.NewValidationError()
	for i, record := range records {
		verr.Merge(fmt.Sprintf("[%d].", i), checkRecord(record))
	}
	if err := verr.OrNil(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.txns)+len(records))
	for _, txn := range s.txns {
		seen[txn.ID] = true
	}

	now := s.now().UTC()
	var fresh []model.Transaction
	for _, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			record.ID = s.newID()
		}
		if seen[record.ID] {
			slog.Debug("Skipping duplicate transaction", "id", record.ID)
			continue
		}
		seen[record.ID] = true

		record.Description = describe(record.Description)
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		record.UpdatedAt = now
		fresh = append(fresh, record)
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	s.txns = append(fresh, s.txns...)
	slog.Info("Imported transactions", "added", len(fresh), "skipped", len(records)-len(fresh))
	return len(fresh), s.persistLocked(ctx)
}

func (s *Store) where(keep func(model.Transaction) bool) []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Transaction
	for _, txn := range s.txns {
		if keep(txn) {
			out = append(out, txn)
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, txn := range s.txns {
		if txn.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.adapter.Save(ctx, storage.KeyTransactions, s.txns); err != nil {
		return &common.PersistenceError{Key: storage.KeyTransactions, Err: err}
	}
	return nil
}
