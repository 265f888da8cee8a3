package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Quota(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage(WithQuota(8))

	require.NoError(t, m.Save(ctx, "a", []byte("1234")))   // 5 bytes used
	require.NoError(t, m.Save(ctx, "a", []byte("123456"))) // overwrite → 7 bytes

	err := m.Save(ctx, "b", []byte("12"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrQuotaExceeded))

	got, err := m.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "123456", string(got), "failed write leaves other slots intact")

	m.SetQuota(0)
	require.NoError(t, m.Save(ctx, "b", []byte("12")))
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	value := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStorage_Missing(t *testing.T) {
	_, err := NewMemoryStorage().Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
