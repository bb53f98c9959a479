package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_KV(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	in := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", in))
	in[0] = 'x'

	v, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v), "stored value is a copy")

	require.NoError(t, m.Delete(ctx, "k"))
	v, _ = m.Get(ctx, "k")
	assert.Nil(t, v)
}

func TestMemory_ScrapeCacheExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.SetCachedScrape(ctx, "h", []byte("data"), time.Minute))
	v, err := m.GetCachedScrape(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "data", string(v))

	now = now.Add(2 * time.Minute)
	v, err = m.GetCachedScrape(ctx, "h")
	require.NoError(t, err)
	assert.Nil(t, v)

	n, err := m.DeleteExpiredScrapes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = NewMemory()
	var _ Store = (*SQLiteStore)(nil)
}
