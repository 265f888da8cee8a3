package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	source := NewAdapter(NewMemoryStorage())
	require.True(t, source.Set(ctx, KeyTransactions, []map[string]any{{"id": "t1", "amount": 10}}))
	require.True(t, source.Set(ctx, KeyTheme, "dark"))

	raw, err := CreateBackup(ctx, source, now)
	require.NoError(t, err)
	assert.True(t, ValidateBackup(raw))

	target := NewAdapter(NewMemoryStorage())
	require.True(t, target.Set(ctx, KeyCategories, map[string]any{"expense": []any{}}))

	require.NoError(t, RestoreBackup(ctx, target, raw, nil))

	assert.Equal(t, "dark", Get(ctx, target, KeyTheme, ""))
	txns := Get(ctx, target, KeyTransactions, []map[string]any(nil))
	require.Len(t, txns, 1)
	assert.Equal(t, "t1", txns[0]["id"])

	_, ok := target.Raw(ctx, KeyCategories)
	assert.False(t, ok, "slots absent from the backup are cleared")
	assert.Equal(t, DataVersion, Get(ctx, target, KeyDataVersion, ""))
}

func TestParseBackup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "nope"},
		{name: "missing data", raw: `{"version":"1.0.0","timestamp":"2024-01-01T00:00:00Z"}`},
		{name: "missing version", raw: `{"data":{},"timestamp":"2024-01-01T00:00:00Z"}`},
		{name: "missing timestamp", raw: `{"data":{},"version":"1.0.0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBackup([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBackup))
			assert.False(t, ValidateBackup([]byte(tt.raw)))
		})
	}
}

func TestRestoreBackup_InvalidLeavesDataUntouched(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(NewMemoryStorage())
	require.True(t, adapter.Set(ctx, KeyTheme, "light"))

	require.Error(t, RestoreBackup(ctx, adapter, []byte(`{}`), nil))
	assert.Equal(t, "light", Get(ctx, adapter, KeyTheme, ""))
}

func TestRestoreBackup_CheckRejectsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(NewMemoryStorage())
	require.True(t, adapter.Set(ctx, KeyTheme, "light"))
	require.True(t, adapter.Set(ctx, KeyTransactions, []map[string]any{{"id": "old"}}))

	raw := []byte(`{"version":"1.0.0","timestamp":"2024-03-01T10:00:00Z",` +
		`"data":{"transactions":[{"id":"new"}],"theme":"dark"}}`)
	errBad := errors.New("bad record")
	checks := map[string]EntryCheck{
		"transactions": func(json.RawMessage) (json.RawMessage, error) { return nil, errBad },
	}

	err := RestoreBackup(ctx, adapter, raw, checks)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBad))

	assert.Equal(t, "light", Get(ctx, adapter, KeyTheme, ""))
	txns := Get(ctx, adapter, KeyTransactions, []map[string]any(nil))
	require.Len(t, txns, 1)
	assert.Equal(t, "old", txns[0]["id"])
}

func TestRestoreBackup_CheckRewritesEntry(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter(NewMemoryStorage())

	raw := []byte(`{"version":"1.0.0","timestamp":"2024-03-01T10:00:00Z","data":{"theme":"DARK"}}`)
	checks := map[string]EntryCheck{
		"theme": func(json.RawMessage) (json.RawMessage, error) { return json.RawMessage(`"dark"`), nil },
	}

	require.NoError(t, RestoreBackup(ctx, adapter, raw, checks))
	assert.Equal(t, "dark", Get(ctx, adapter, KeyTheme, ""))
}

func TestRestoreBackup_FailedWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()
	adapter := NewAdapter(backend)
	require.True(t, adapter.Set(ctx, KeyTransactions, []map[string]any{{"id": "old"}}))
	require.True(t, adapter.Set(ctx, KeyTheme, "light"))
	backend.SetQuota(150)

	big := strings.Repeat("x", 200)
	raw := []byte(`{"version":"1.0.0","timestamp":"2024-03-01T10:00:00Z",` +
		`"data":{"transactions":[{"id":"new"}],"categories":{"expense":[{"id":"` + big + `"}]}}}`)

	err := RestoreBackup(ctx, adapter, raw, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrQuotaExceeded))

	txns := Get(ctx, adapter, KeyTransactions, []map[string]any(nil))
	require.Len(t, txns, 1)
	assert.Equal(t, "old", txns[0]["id"])
	assert.Equal(t, "light", Get(ctx, adapter, KeyTheme, ""))
	_, ok := adapter.Raw(ctx, KeyCategories)
	assert.False(t, ok)
	_, ok = adapter.Raw(ctx, KeyDataVersion)
	assert.False(t, ok)
}
