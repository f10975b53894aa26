// Package kv is the small key-value abstraction behind per-visitor state
// (view attribution, bookmarks, download history).
package kv

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("key-value store unavailable")
)

type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	// Keys lists keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// UpdateFunc receives the current value (found=false when absent) and
// returns the value to store. Returning write=false leaves the key as is.
type UpdateFunc func(current []byte, found bool) (next []byte, write bool, err error)

// Updater is implemented by stores that can run a read-modify-write
// atomically.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// fallbackMu serializes Modify for stores without Updater. It only guards
// against races inside this process.
var fallbackMu sync.Mutex

// Modify runs fn against key atomically when store supports it, and under
// a process-wide lock otherwise.
func Modify(ctx context.Context, store Store, key string, fn UpdateFunc) error {
	updater, ok := store.(Updater)
	if ok {
		return updater.Update(ctx, key, fn)
	}

	fallbackMu.Lock()
	defer fallbackMu.Unlock()

	current, err := store.Get(ctx, key)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	next, write, err := fn(current, found)
	if err != nil || !write {
		return err
	}
	return store.Set(ctx, key, next)
}

type unavailableStore struct{}

// Unavailable returns a store whose every operation fails with
// ErrUnavailable.
func Unavailable() Store {
	return unavailableStore{}
}

func (unavailableStore) Get(context.Context, string) ([]byte, error) {
	return nil, ErrUnavailable
}

func (unavailableStore) Set(context.Context, string, []byte) error {
	return ErrUnavailable
}

func (unavailableStore) Remove(context.Context, string) error {
	return ErrUnavailable
}

func (unavailableStore) Keys(context.Context, string) ([]string, error) {
	return nil, ErrUnavailable
}
