package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/service"
)

// Slot keys used by the ledger.
const (
	KeyTransactions = "financeTracker-transactions"
	KeyCategories   = "financeTracker-categories"
	KeyTheme        = "financeTracker-theme"
	KeyDataVersion  = "__data_version__"
)

// AppKeys lists every slot that belongs to the application's data.
var AppKeys = []string{KeyTransactions, KeyCategories, KeyTheme}

// Adapter encodes values as JSON slots on a backend. Failures never escape
// as panics; reads fall back to defaults and writes report a plain error
// after logging it.
type Adapter struct {
	backend service.Backend
}

// NewAdapter wraps a backend.
func NewAdapter(backend service.Backend) *Adapter {
	return &Adapter{backend: backend}
}

// Backend returns the underlying backend.
func (a *Adapter) Backend() service.Backend {
	return a.backend
}

// Lookup decodes the slot into a fresh T. The boolean is false when the slot
// is missing or cannot be decoded.
func Lookup[T any](ctx context.Context, a *Adapter, key string) (T, bool) {
	var zero T

	raw, err := a.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			slog.Error("Error reading from storage", "key", key, "error", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.Warn("Discarding undecodable storage slot", "key", key, "error", err)
		return zero, false
	}
	return value, true
}

// Get decodes the slot, returning def when it is missing or undecodable.
func Get[T any](ctx context.Context, a *Adapter, key string, def T) T {
	if value, ok := Lookup[T](ctx, a, key); ok {
		return value
	}
	return def
}

// Save encodes value and overwrites the slot.
func (a *Adapter) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("Error encoding storage value", "key", key, "error", err)
		return fmt.Errorf("failed to encode slot %q: %w", key, err)
	}

	if err := a.backend.Save(ctx, key, raw); err != nil {
		slog.Error("Error writing to storage", "key", key, "error", err)
		return err
	}

	slog.Debug("Persisted slot", "key", key, "bytes", len(raw))
	return nil
}

// Set is Save reduced to a success flag.
func (a *Adapter) Set(ctx context.Context, key string, value any) bool {
	return a.Save(ctx, key, value) == nil
}

// Remove deletes the slot and reports success.
func (a *Adapter) Remove(ctx context.Context, key string) bool {
	if err := a.backend.Delete(ctx, key); err != nil {
		slog.Error("Error removing from storage", "key", key, "error", err)
		return false
	}
	return true
}

// Raw returns the undecoded slot bytes.
func (a *Adapter) Raw(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := a.backend.Load(ctx, key)
	if err != nil {
		return nil, false
	}
	return json.RawMessage(raw), true
}

// SaveRaw writes already-encoded JSON, rejecting invalid documents.
func (a *Adapter) SaveRaw(ctx context.Context, key string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("slot %q: invalid JSON", key)
	}
	if err := a.backend.Save(ctx, key, raw); err != nil {
		slog.Error("Error writing to storage", "key", key, "error", err)
		return err
	}
	return nil
}

// Usage summarises how much space the slots take.
type Usage struct {
	Slots      map[string]int
	TotalBytes int
	AppBytes   int
}

// Usage reports per-slot sizes.
func (a *Adapter) Usage(ctx context.Context) (*Usage, error) {
	sizes, err := a.backend.Sizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage usage: %w", err)
	}

	usage := &Usage{Slots: sizes}
	for _, size := range sizes {
		usage.TotalBytes += size
	}
	for _, key := range AppKeys {
		usage.AppBytes += sizes[key]
	}
	return usage, nil
}
