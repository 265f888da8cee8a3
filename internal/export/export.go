// Package export writes transactions to CSV and JSON and reads JSON back.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
)

// ErrInvalidFormat is returned for unreadable import data or unknown formats.
var ErrInvalidFormat = errors.New("invalid export format")

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be csv or json)", ErrInvalidFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Filename returns the default export file name for the day of now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("transactions-%s.%s", now.Format(model.DateLayout), f)
}

// CSVHeader is the fixed column order of CSV exports.
var CSVHeader = []string{"id", "type", "amount", "category", "description", "date", "createdAt", "updatedAt"}

// Write encodes transactions in format f.
func Write(w io.Writer, f Format, transactions []model.Transaction) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, transactions)
	case FormatJSON:
		return WriteJSON(w, transactions)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
}

// WriteCSV writes a header row and one row per transaction. Fields that
// contain commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, transactions []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range transactions {
		record := []string{
			txn.ID,
			string(txn.Type),
			strconv.FormatInt(txn.Amount, 10),
			txn.Category,
			txn.Description,
			txn.Date.String(),
			formatTimestamp(txn.CreatedAt),
			formatTimestamp(txn.UpdatedAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", txn.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// WriteJSON writes transactions as an indented JSON array.
func WriteJSON(w io.Writer, transactions []model.Transaction) error {
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON array of transactions as produced by WriteJSON.
// Records are not validated here.
func ReadJSON(r io.Reader) ([]model.Transaction, error) {
	var transactions []model.Transaction
	if err := json.NewDecoder(r).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return transactions, nil
}
