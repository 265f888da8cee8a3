package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/export"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/storage"
	"github.com/Veraticus/pocketbook/internal/transaction"
)

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Read  int
	Added int
}

// Skipped is the number of records that were already present.
func (r ImportResult) Skipped() int {
	return r.Read - r.Added
}

// Export writes the transactions selected by spec in format f.
func (l *Ledger) Export(w io.Writer, f export.Format, spec filter.Spec) error {
	return export.Write(w, f, l.ListTransactions(spec))
}

// ImportJSON reads a JSON export and merges it into the ledger.
func (l *Ledger) ImportJSON(ctx context.Context, r io.Reader) (ImportResult, error) {
	records, err := export.ReadJSON(r)
	if err != nil {
		return ImportResult{}, err
	}
	return l.importRecords(ctx, records)
}

// ImportOFX parses a bank statement and merges its lines into the ledger,
// filed under the configured import categories. Re-importing the same
// statement adds nothing.
func (l *Ledger) ImportOFX(ctx context.Context, r io.Reader) (ImportResult, error) {
	entries, err := l.parser.ParseFile(ctx, r)
	if err != nil {
		return ImportResult{}, err
	}

	now := l.now()
	records := make([]model.Transaction, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.Transaction(l.importCategories, now))
	}
	return l.importRecords(ctx, records)
}

func (l *Ledger) importRecords(ctx context.Context, records []model.Transaction) (ImportResult, error) {
	added, err := l.transactions.Import(ctx, records)
	result := ImportResult{Read: len(records), Added: added}
	if err != nil {
		return result, err
	}
	slog.Debug("Import complete", "read", result.Read, "added", result.Added)
	return result, nil
}

// Backup returns a backup document of every application slot.
func (l *Ledger) Backup(ctx context.Context) ([]byte, error) {
	return storage.CreateBackup(ctx, l.adapter, l.now())
}

// Restore replaces the ledger's data with a backup and reloads both stores.
// An invalid document, or one holding any invalid record, leaves the data
// untouched.
func (l *Ledger) Restore(ctx context.Context, raw []byte) error {
	checks := map[string]storage.EntryCheck{
		"transactions": transaction.CheckSlot,
		"categories":   category.CheckSlot,
		"theme":        checkThemeSlot,
	}
	if err := storage.RestoreBackup(ctx, l.adapter, raw, checks); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	l.categories.Reload(ctx)
	l.transactions.Reload(ctx)
	return nil
}

func checkThemeSlot(raw json.RawMessage) (json.RawMessage, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if _, err := model.ParseTheme(name); err == nil {
			return raw, nil
		}
	}
	verr := common.NewValidationError()
	verr.Add("theme", "Theme must be light, dark or auto")
	return nil, verr
}

// Usage reports how much space the stored slots take.
func (l *Ledger) Usage(ctx context.Context) (*storage.Usage, error) {
	return l.adapter.Usage(ctx)
}
