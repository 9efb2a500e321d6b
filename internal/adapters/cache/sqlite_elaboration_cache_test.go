package cache

import (
	"context"
	"delivery-delay-service/internal/adapters/repositories"
	"delivery-delay-service/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSqliteElaborationCache(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))

	c := NewSqliteElaborationCache(conn, "gpt-4o-mini")

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "k1", "first"))
	require.NoError(t, c.Put(ctx, "k1", "second"))

	text, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", text)
}

func TestSqliteElaborationCacheRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteElaborationCache(nil, "m")
	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c = NewSqliteElaborationCache(conn, "m")
	assert.Error(t, c.Put(ctx, " ", "text"))
	_, _, err = c.Get(ctx, "")
	assert.Error(t, err)
}
