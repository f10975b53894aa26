package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campusmedia/gallery/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordViewCooldown(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.NewMemoryStore(), 0)
	assert.Equal(t, DefaultViewCooldown, a.Cooldown())

	first := a.RecordView(ctx, "r1", testNow)
	assert.Equal(t, ViewResult{Counted: true, NewCount: 1}, first)

	reload := a.RecordView(ctx, "r1", testNow.Add(time.Minute))
	assert.Equal(t, ViewResult{Counted: false, NewCount: 1}, reload)

	boundary := a.RecordView(ctx, "r1", testNow.Add(DefaultViewCooldown))
	assert.False(t, boundary.Counted, "cooldown boundary is exclusive")

	later := a.RecordView(ctx, "r1", testNow.Add(DefaultViewCooldown+time.Nanosecond))
	assert.Equal(t, ViewResult{Counted: true, NewCount: 2}, later)

	state, found, err := a.State(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, state.Count)
	assert.True(t, state.LastViewedAt.Equal(testNow.Add(DefaultViewCooldown+time.Nanosecond)))
}

func TestRecordViewIsMonotonic(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.NewMemoryStore(), 10*time.Minute)

	last := 0
	for i := range 50 {
		now := testNow.Add(time.Duration(i*3) * time.Minute)
		result := a.RecordView(ctx, "r1", now)
		assert.GreaterOrEqual(t, result.NewCount, last)
		last = result.NewCount
	}
	assert.Equal(t, 13, last)
}

func TestRecordViewResourcesIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.NewMemoryStore(), DefaultViewCooldown)

	assert.True(t, a.RecordView(ctx, "r1", testNow).Counted)
	assert.True(t, a.RecordView(ctx, "r2", testNow).Counted)
	assert.False(t, a.RecordView(ctx, "r1", testNow).Counted)
}

func TestRecordViewPerVisitor(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.NewMemoryStore(), DefaultViewCooldown)

	alice := a.ForVisitor("alice")
	bob := a.ForVisitor("bob")

	assert.True(t, alice.RecordView(ctx, "r1", testNow).Counted)
	assert.False(t, alice.RecordView(ctx, "r1", testNow.Add(time.Second)).Counted)
	assert.True(t, bob.RecordView(ctx, "r1", testNow.Add(time.Second)).Counted)
	assert.Same(t, a, a.ForVisitor(""))
}

func TestRecordViewStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.Unavailable(), DefaultViewCooldown)

	for range 3 {
		assert.Equal(t, ViewResult{Counted: true, NewCount: 1}, a.RecordView(ctx, "r1", testNow))
	}
}

func TestRecordViewCorruptState(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "views:r1", []byte("{not json")))

	a := NewViewAttributor(store, DefaultViewCooldown)
	assert.Equal(t, ViewResult{Counted: true, NewCount: 1}, a.RecordView(ctx, "r1", testNow))
}

func TestRecordViewConcurrent(t *testing.T) {
	ctx := context.Background()
	a := NewViewAttributor(kv.NewMemoryStore(), DefaultViewCooldown)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan ViewResult, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- a.RecordView(ctx, "r1", testNow)
		}()
	}
	wg.Wait()
	close(results)

	n := 0
	for result := range results {
		if result.Counted {
			n++
		}
		assert.Equal(t, 1, result.NewCount)
	}
	assert.Equal(t, 1, n)
}

func TestForgetClearsEveryScope(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	a := NewViewAttributor(store, DefaultViewCooldown)

	a.RecordView(ctx, "r1", testNow)
	a.RecordView(ctx, "r2", testNow)
	for i := range 3 {
		a.ForVisitor(fmt.Sprintf("v%d", i)).RecordView(ctx, "r1", testNow)
	}

	require.NoError(t, a.Forget(ctx, "r1"))

	keys, err := store.Keys(ctx, "views:")
	require.NoError(t, err)
	assert.Equal(t, []string{"views:r2"}, keys)
	assert.True(t, a.RecordView(ctx, "r1", testNow).Counted)
}
