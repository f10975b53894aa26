package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/campusmedia/gallery/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLStore(t *testing.T) Store {
	t.Helper()

	conn, err := db.Init(db.DriverSQLite, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, db.DriverSQLite))
	return NewSQLStore(conn)
}

func TestSQLStore(t *testing.T) {
	storeContract(t, newSQLStore)
}

func TestSQLStoreKeysEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	require.NoError(t, store.Set(ctx, "a_b:1", []byte("1")))
	require.NoError(t, store.Set(ctx, "axb:2", []byte("1")))
	require.NoError(t, store.Set(ctx, "a%:3", []byte("1")))

	keys, err := store.Keys(ctx, "a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b:1"}, keys)

	keys, err = store.Keys(ctx, "a%")
	require.NoError(t, err)
	assert.Equal(t, []string{"a%:3"}, keys)
}
