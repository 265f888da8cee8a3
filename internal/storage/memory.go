package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/pocketbook/internal/common"
)

// MemoryStorage implements service.Backend in process memory. It is used by
// tests and can enforce a byte quota the way browser storage does.
type MemoryStorage struct {
	slots map[string][]byte
	quota int
	mu    sync.RWMutex
}

// MemoryOption configures a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithQuota limits the total stored bytes. Writes that would exceed it fail
// with common.ErrQuotaExceeded. Zero means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(m *MemoryStorage) {
		m.quota = bytes
	}
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{slots: make(map[string][]byte)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetQuota changes the byte quota.
func (m *MemoryStorage) SetQuota(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
}

// Load returns a copy of the value stored under key.
func (m *MemoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.slots[key]
	if !ok {
		return nil, fmt.Errorf("slot %q: %w", key, common.ErrNotFound)
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Save overwrites the slot with a copy of value.
func (m *MemoryStorage) Save(ctx context.Context, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		used := 0
		for k, v := range m.slots {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("slot %q: %w", key, common.ErrQuotaExceeded)
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.slots[key] = stored
	return nil
}

// Delete removes the slot.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

// Sizes reports the byte length of every slot.
func (m *MemoryStorage) Sizes(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sizes := make(map[string]int, len(m.slots))
	for k, v := range m.slots {
		sizes[k] = len(v)
	}
	return sizes, nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
