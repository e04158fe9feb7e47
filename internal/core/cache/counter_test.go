package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/core/cache"
)

func TestCounter_ConcurrentIncrements(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()
	likes := cache.NewCounter(store, cache.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := likes.Increment(ctx, "post_likes:42", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, found, err := likes.Get(ctx, "post_likes:42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(4), n)
}

func TestCounter_AdjustOnlyExisting(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()
	comments := cache.NewCounter(store, cache.Options{})

	_, applied, err := comments.Adjust(ctx, "post_comments:1", 1)
	require.NoError(t, err)
	assert.False(t, applied)

	_, found, err := comments.Get(ctx, "post_comments:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, comments.Set(ctx, "post_comments:1", 10, time.Minute))

	n, applied, err := comments.Adjust(ctx, "post_comments:1", -1)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(9), n)

	n, err = comments.Decrement(ctx, "post_comments:1", 9)
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err := comments.Delete(ctx, "post_comments:1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestCounter_BackendErrorsPropagate(t *testing.T) {
	mr, store := setupStore(t)
	ctx := context.Background()
	likes := cache.NewCounter(store, cache.Options{})

	mr.Close()

	_, err := likes.Increment(ctx, "post_likes:1", 1)
	assert.Error(t, err)

	_, found, err := likes.Get(ctx, "post_likes:1")
	assert.NoError(t, err)
	assert.False(t, found)
}
