package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, KeyTheme, []byte(`"dark"`)))
	require.NoError(t, store.Migrate(ctx), "second migrate must be a no-op")

	got, err := store.Load(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(got))
}

func TestMigration2_UpdatedAtColumn(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, KeyTheme, []byte(`"auto"`)))

	var updatedAt string
	err := store.db.QueryRowContext(ctx, `SELECT updated_at FROM slots WHERE key = ?`, KeyTheme).Scan(&updatedAt)
	require.NoError(t, err)
	assert.NotEmpty(t, updatedAt)
}
