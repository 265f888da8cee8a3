package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DataVersion is the version stamped on backups written by this build.
const DataVersion = "1.0.0"

// ErrInvalidBackup is returned for documents that are not ledger backups.
var ErrInvalidBackup = errors.New("invalid backup format")

// backupNames maps the names used inside backups to slot keys.
var backupNames = map[string]string{
	"transactions": KeyTransactions,
	"categories":   KeyCategories,
	"theme":        KeyTheme,
}

// Backup is the on-disk backup document.
type Backup struct {
	Data      map[string]json.RawMessage `json:"data"`
	Timestamp time.Time                  `json:"timestamp"`
	Version   string                     `json:"version"`
}

// CreateBackup snapshots every application slot into a pretty-printed document.
func CreateBackup(ctx context.Context, a *Adapter, now time.Time) ([]byte, error) {
	backup := Backup{
		Version:   Get(ctx, a, KeyDataVersion, DataVersion),
		Timestamp: now.UTC(),
		Data:      make(map[string]json.RawMessage, len(backupNames)),
	}

	for name, key := range backupNames {
		raw, ok := a.Raw(ctx, key)
		if !ok {
			backup.Data[name] = json.RawMessage("null")
			continue
		}
		backup.Data[name] = raw
	}

	out, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return out, nil
}

// ParseBackup decodes and checks a backup document.
func ParseBackup(raw []byte) (*Backup, error) {
	var backup Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if backup.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidBackup)
	}
	if backup.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidBackup)
	}
	if backup.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: missing timestamp", ErrInvalidBackup)
	}
	return &backup, nil
}

// ValidateBackup reports whether raw is a well-formed backup.
func ValidateBackup(raw []byte) bool {
	_, err := ParseBackup(raw)
	return err == nil
}

// EntryCheck validates one backup entry and returns the bytes to store.
type EntryCheck func(value json.RawMessage) (json.RawMessage, error)

// RestoreBackup replaces the application slots with the backup's contents.
// Entries named in checks are validated first; any failure rejects the whole
// backup before a slot is touched. A failed write puts the previous slots
// back.
func RestoreBackup(ctx context.Context, a *Adapter, raw []byte, checks map[string]EntryCheck) error {
	backup, err := ParseBackup(raw)
	if err != nil {
		return err
	}

	slots := make(map[string]json.RawMessage, len(backupNames))
	for name, value := range backup.Data {
		key, known := backupNames[name]
		if !known {
			slog.Warn("Ignoring unknown backup entry", "name", name)
			continue
		}
		if len(value) == 0 || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if !json.Valid(value) {
			return fmt.Errorf("%w: %s is not valid JSON", ErrInvalidBackup, name)
		}
		if check, ok := checks[name]; ok {
			if value, err = check(value); err != nil {
				return fmt.Errorf("invalid %s in backup: %w", name, err)
			}
		}
		slots[key] = value
	}

	previous := make(map[string]json.RawMessage, len(AppKeys))
	for _, key := range AppKeys {
		if old, ok := a.Raw(ctx, key); ok {
			previous[key] = old
		}
	}

	if err := writeSlots(ctx, a, slots); err != nil {
		if rbErr := writeSlots(ctx, a, previous); rbErr != nil {
			slog.Error("Failed to roll back restore", "error", rbErr)
		}
		return err
	}

	if err := a.Save(ctx, KeyDataVersion, backup.Version); err != nil {
		return fmt.Errorf("failed to record data version: %w", err)
	}

	slog.Info("Restored backup", "version", backup.Version, "timestamp", backup.Timestamp)
	return nil
}

// writeSlots makes the application slots hold exactly slots. Stale slots are
// removed before anything is written so the new data has the most room.
func writeSlots(ctx context.Context, a *Adapter, slots map[string]json.RawMessage) error {
	for _, key := range AppKeys {
		if _, keep := slots[key]; !keep && !a.Remove(ctx, key) {
			return fmt.Errorf("failed to clear %s", key)
		}
	}
	for _, key := range AppKeys {
		value, ok := slots[key]
		if !ok {
			continue
		}
		if err := a.SaveRaw(ctx, key, value); err != nil {
			return fmt.Errorf("failed to restore %s: %w", key, err)
		}
	}
	return nil
}
