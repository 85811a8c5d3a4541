package postedstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_MarkPosted(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark succeeds, repeat returns false", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Now()

		first, err := store.MarkPosted(ctx, "AS-00001", now)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkPosted(ctx, "AS-00001", now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("first mark wins over a later re-mark", func(t *testing.T) {
		store := NewMemoryStore()
		first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		_, err := store.MarkPosted(ctx, "AS-00002", first)
		require.NoError(t, err)
		_, err = store.MarkPosted(ctx, "AS-00002", first.Add(time.Hour))
		require.NoError(t, err)

		at, err := store.PostedAt(ctx, "AS-00002")
		require.NoError(t, err)
		require.NotNil(t, at)
		assert.True(t, at.Equal(first))
	})
}

func TestMemoryStore_PostedAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	at, err := store.PostedAt(ctx, "AS-MISSING")
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestMemoryStore_ConcurrentMark(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkPosted(ctx, "AS-00003", time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one goroutine should win the mark")
	assert.Equal(t, 1, store.Size())
}
