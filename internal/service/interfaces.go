// Package service defines the interfaces shared between the ledger's components.
package service

import (
	"context"

	"github.com/Veraticus/pocketbook/internal/model"
)

// Backend is the contract for the on-device key/value store that holds the
// ledger's named slots. Every Save fully overwrites the slot.
type Backend interface {
	// Load returns the raw bytes stored under key, or an error wrapping
	// common.ErrNotFound when the slot is empty.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Sizes reports the byte length of every stored slot.
	Sizes(ctx context.Context) (map[string]int, error)
	Close() error
}

// CategoryResolver maps a category reference to its display form.
type CategoryResolver interface {
	Resolve(id string, categoryType model.CategoryType) model.CategoryRef
}

// DateRange is an inclusive calendar range. A zero bound is unbounded.
type DateRange struct {
	Start model.Date
	End   model.Date
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d model.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}
