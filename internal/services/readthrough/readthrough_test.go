package readthrough_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/readthrough"
	"github.com/wayfarer/content-service/tests/testutils"
)

func newPostLoader(store cache.Store) *readthrough.Entity[models.Post] {
	return readthrough.NewEntity[models.Post](store, cache.NewJSONCodec[models.Post](cache.DefaultJSONOptions()), time.Hour, readthrough.Options{})
}

func TestEntity_MissLoadsAndPopulates(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (*models.Post, error) {
		calls++
		return testutils.NewTestPost(), nil
	}

	first, err := loader.Load(ctx, "post:"+testutils.TestPostID, fetch)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := loader.Load(ctx, "post:"+testutils.TestPostID, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Title, second.Title)
	assert.True(t, second.CreatedAt.Equal(testutils.TestTime))
	assert.True(t, mr.Exists("post:"+testutils.TestPostID))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("post:"+testutils.TestPostID).Seconds(), 1)
}

func TestEntity_NotFoundIsNotCached(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)

	calls := 0
	fetch := func(ctx context.Context) (*models.Post, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 2; i++ {
		v, err := loader.Load(context.Background(), "post:missing", fetch)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
	assert.Equal(t, 2, calls)
	assert.False(t, mr.Exists("post:missing"))
}

func TestEntity_FetchErrorIsReturned(t *testing.T) {
	_, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)
	boom := errors.New("database down")

	v, err := loader.Load(context.Background(), "post:1", func(ctx context.Context) (*models.Post, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, v)
}

func TestEntity_BackendDownFallsBackToSource(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)
	mr.Close()

	v, err := loader.Load(context.Background(), "post:1", func(ctx context.Context) (*models.Post, error) {
		return testutils.NewTestPost(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, testutils.TestPostID, v.ID)
}

func TestEntity_WrongKindFallsBackWithoutOverwriting(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)
	mr.HSet("post:1", "field", "value")

	v, err := loader.Load(context.Background(), "post:1", func(ctx context.Context) (*models.Post, error) {
		return testutils.NewTestPost(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, testutils.TestPostID, v.ID)
	assert.Equal(t, "hash", mr.Type("post:1"))
}

func TestEntity_SetAndForget(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	loader := newPostLoader(store)
	ctx := context.Background()

	require.NoError(t, loader.Set(ctx, "post:1", *testutils.NewTestPost()))
	assert.True(t, mr.Exists("post:1"))

	require.NoError(t, loader.Forget(ctx, "post:1"))
	assert.False(t, mr.Exists("post:1"))
}

func TestAggregate_NonPositiveIsRecomputed(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	agg := readthrough.NewAggregate(store, time.Hour, readthrough.Options{})
	ctx := context.Background()

	require.NoError(t, mr.Set("post_likes:1", "0"))

	n, err := agg.Load(ctx, "post_likes:1", func(ctx context.Context) (int64, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	got, _ := mr.Get("post_likes:1")
	assert.Equal(t, "7", got)

	n, err = agg.Load(ctx, "post_likes:1", func(ctx context.Context) (int64, error) {
		t.Fatal("positive cached count must not be recomputed")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestAggregate_AdjustLeavesMissingCounterMissing(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	agg := readthrough.NewAggregate(store, time.Hour, readthrough.Options{})
	ctx := context.Background()

	_, applied, err := agg.Adjust(ctx, "post_likes:1", 1)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, mr.Exists("post_likes:1"))

	require.NoError(t, mr.Set("post_likes:1", "4"))
	n, applied, err := agg.Adjust(ctx, "post_likes:1", -1)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(3), n)

	require.NoError(t, agg.Forget(ctx, "post_likes:1"))
	assert.False(t, mr.Exists("post_likes:1"))
}

func TestAggregate_ComputeErrorIsReturned(t *testing.T) {
	_, store := testutils.NewMiniredisStore(t)
	agg := readthrough.NewAggregate(store, time.Hour, readthrough.Options{})
	boom := errors.New("count failed")

	_, err := agg.Load(context.Background(), "post_likes:1", func(ctx context.Context) (int64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestFlag_CachesBothAnswers(t *testing.T) {
	mr, store := testutils.NewMiniredisStore(t)
	flag := readthrough.NewFlag(store, time.Hour, readthrough.Options{})
	ctx := context.Background()

	calls := 0
	check := func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	}

	for i := 0; i < 3; i++ {
		liked, err := flag.Load(ctx, "liked:u:p", check)
		require.NoError(t, err)
		assert.False(t, liked)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, flag.Store(ctx, "liked:u:p", true))
	liked, err := flag.Load(ctx, "liked:u:p", check)
	require.NoError(t, err)
	assert.True(t, liked)

	got, _ := mr.Get("liked:u:p")
	assert.Equal(t, "true", got)
}
