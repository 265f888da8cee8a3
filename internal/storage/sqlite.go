package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements service.Backend on a local SQLite database.
// Each slot is one row of the slots table.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	retry  common.RetryOptions
}

// isBusy reports whether err is a transient lock held by another process.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Pass ":memory:" for a throwaway database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		retry:  common.RetryOptions{Retryable: isBusy},
	}, nil
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Load returns the value stored under key.
func (s *SQLiteStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %q: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}

	return value, nil
}

// Save overwrites the slot with value.
func (s *SQLiteStorage) Save(ctx context.Context, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	query := `
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`

	err := common.WithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, key, value)
		return err
	}, s.retry)
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	err := common.WithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key)
		return err
	}, s.retry)
	if err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

// Sizes reports the stored byte length of every slot.
func (s *SQLiteStorage) Sizes(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, length(value) FROM slots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query slot sizes: %w", err)
	}
	defer rows.Close()

	sizes := make(map[string]int)
	for rows.Next() {
		var (
			key  string
			size int
		)
		if err := rows.Scan(&key, &size); err != nil {
			return nil, fmt.Errorf("failed to scan slot size: %w", err)
		}
		sizes[key] = size
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return sizes, nil
}
