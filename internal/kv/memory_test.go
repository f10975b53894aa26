package kv

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get remove", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, "a", []byte(`{"n":1}`)))

		value, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, `{"n":1}`, string(value))

		require.NoError(t, store.Set(ctx, "a", []byte(`{"n":2}`)))
		value, err = store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, `{"n":2}`, string(value))

		require.NoError(t, store.Remove(ctx, "a"))
		_, err = store.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, store.Remove(ctx, "a"))
	})

	t.Run("keys by prefix", func(t *testing.T) {
		store := newStore(t)
		for _, k := range []string{"views:b", "views:a", "bookmarks:x", "views_c"} {
			require.NoError(t, store.Set(ctx, k, []byte("1")))
		}

		keys, err := store.Keys(ctx, "views:")
		require.NoError(t, err)
		assert.Equal(t, []string{"views:a", "views:b"}, keys)

		keys, err = store.Keys(ctx, "none:")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("modify counts concurrently", func(t *testing.T) {
		store := newStore(t)
		const workers = 20

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := Modify(ctx, store, "counter", func(current []byte, found bool) ([]byte, bool, error) {
					n := 0
					if found {
						n, _ = strconv.Atoi(string(current))
					}
					return []byte(strconv.Itoa(n + 1)), true, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, err := store.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(workers), string(value))
	})

	t.Run("modify without write", func(t *testing.T) {
		store := newStore(t)
		err := Modify(ctx, store, "k", func([]byte, bool) ([]byte, bool, error) {
			return []byte("x"), false, nil
		})
		require.NoError(t, err)

		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("modify error aborts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("old")))

		boom := errors.New("boom")
		err := Modify(ctx, store, "k", func([]byte, bool) ([]byte, bool, error) {
			return []byte("new"), true, boom
		})
		assert.ErrorIs(t, err, boom)

		value, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "old", string(value))
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

// plainStore hides MemoryStore's Updater so Modify takes the fallback path.
type plainStore struct {
	inner *MemoryStore
}

func (p plainStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, key)
}

func (p plainStore) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, key, value)
}

func (p plainStore) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, key)
}

func (p plainStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return p.inner.Keys(ctx, prefix)
}

func TestModifyFallback(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return plainStore{inner: NewMemoryStore()}
	})
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	store := Unavailable()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Set(ctx, "k", nil), ErrUnavailable)
	assert.ErrorIs(t, store.Remove(ctx, "k"), ErrUnavailable)
	_, err = store.Keys(ctx, "")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = Modify(ctx, store, "k", func([]byte, bool) ([]byte, bool, error) {
		return nil, true, nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}
