package redis_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/core/cache"
	rediscache "github.com/wayfarer/content-service/internal/infrastructure/cache/redis"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *rediscache.Cache) {
	t.Helper()
	return setupWithConfig(t, rediscache.Config{})
}

func setupWithConfig(t *testing.T, cfg rediscache.Config) (*miniredis.Miniredis, *rediscache.Cache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg.Addrs = []string{mr.Addr()}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}

	c, err := rediscache.NewCache(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		mr.Close()
	})

	return mr, c
}

func TestNewCache_Success(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := rediscache.NewCache(rediscache.Config{Addrs: []string{mr.Addr()}})

	assert.NoError(t, err)
	assert.NotNil(t, c)
	assert.False(t, c.Capabilities().Cluster)

	c.Close()
}

func TestNewCache_UnreachableBackendDegrades(t *testing.T) {
	c, err := rediscache.NewCache(rediscache.Config{
		Addrs:       []string{"127.0.0.1:1"},
		DialTimeout: 100 * time.Millisecond,
		OpTimeout:   200 * time.Millisecond,
	})
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Capabilities().Unlink)
	assert.Error(t, c.Ping(context.Background()))

	values := cache.NewTyped[string](c, cache.StringCodec{}, cache.Options{})
	_, found, err := values.Get(context.Background(), "post:1")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestNewCache_RequiresAddress(t *testing.T) {
	_, err := rediscache.NewCache(rediscache.Config{})
	assert.Error(t, err)
}

func TestCache_SetAndGet(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	err := c.Set(ctx, "test-key", []byte("test-value"), time.Minute)
	require.NoError(t, err)

	val, found, err := c.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("test-value"), val)
}

func TestCache_GetAbsent(t *testing.T) {
	_, c := setupMiniredis(t)

	val, found, err := c.Get(context.Background(), "non-existent")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestCache_PrefixNamespacesKeys(t *testing.T) {
	mr, c := setupWithConfig(t, rediscache.Config{Prefix: "content"})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "post:1", []byte("x"), 0))

	assert.True(t, mr.Exists("content:post:1"))
	assert.False(t, mr.Exists("post:1"))

	raw, err := c.GetClient().Get(ctx, "content:post:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "x", raw)
}

func TestCache_DefaultTTLAndNoExpiration(t *testing.T) {
	mr, c := setupWithConfig(t, rediscache.Config{DefaultTTL: 5 * time.Minute})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "default", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), cache.NoExpiration))

	assert.Equal(t, 5*time.Minute, mr.TTL("default"))
	assert.Equal(t, time.Duration(0), mr.TTL("forever"))

	ttl, found, err := c.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cache.NoExpiration, ttl)

	_, found, err = c.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_TTLExpiration(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "expiring-key", []byte("value"), time.Second))

	_, found, err := c.Get(ctx, "expiring-key")
	require.NoError(t, err)
	assert.True(t, found)

	mr.FastForward(2 * time.Second)

	_, found, err = c.Get(ctx, "expiring-key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_ExpireAndPersist(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	ok, err := c.Expire(ctx, "k", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, mr.TTL("k"))

	ok, err = c.Expire(ctx, "k", cache.NoExpiration)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), mr.TTL("k"))

	ok, err = c.Expire(ctx, "missing", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_DeleteIsIdempotent(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), 0))

	deleted, err := c.Delete(ctx, "key")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "key")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCache_DeleteMany(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	n, err := c.DeleteMany(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.DeleteMany(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_ExistsIgnoresKind(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	_, err := c.HashSet(ctx, "hash", map[string][]byte{"f": []byte("v")})
	require.NoError(t, err)

	ok, err := c.Exists(ctx, "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_GetManyAndSetMany(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	stored, err := c.SetMany(ctx, map[string][]byte{
		"m:1": []byte("one"),
		"m:2": []byte("two"),
	}, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, 30*time.Second, mr.TTL("m:1"))
	assert.Equal(t, 30*time.Second, mr.TTL("m:2"))

	got, err := c.GetMany(ctx, "m:1", "m:2", "m:3")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"m:1": []byte("one"), "m:2": []byte("two")}, got)
}

func TestCache_GetManyPartialFailure(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "plain", []byte("v"), 0))
	_, err := c.ListPush(ctx, "list", []byte("x"))
	require.NoError(t, err)

	got, err := c.GetMany(ctx, "plain", "list")

	assert.Error(t, err)
	assert.Equal(t, []byte("v"), got["plain"])
	assert.NotContains(t, got, "list")
}

func TestCache_DeletePattern(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("family:%d", i), []byte("v"), 0))
	}
	require.NoError(t, c.Set(ctx, "other:1", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "familyish", []byte("v"), 0))

	n, err := c.DeletePattern(ctx, "family:*")
	require.NoError(t, err)
	assert.Equal(t, int64(25), n)

	for i := 0; i < 25; i++ {
		_, found, err := c.Get(ctx, fmt.Sprintf("family:%d", i))
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.ElementsMatch(t, []string{"other:1", "familyish"}, mr.Keys())
}

func TestCache_DeletePatternRespectsPrefix(t *testing.T) {
	mr, c := setupWithConfig(t, rediscache.Config{Prefix: "a", ScanCount: 2})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "posts:1", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "posts:2", []byte("v"), 0))
	require.NoError(t, mr.Set("b:posts:1", "other instance"))

	n, err := c.DeletePattern(ctx, "posts:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{"b:posts:1"}, mr.Keys())
}

func TestCache_Hash(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	n, err := c.HashSet(ctx, "blog_slugs", map[string][]byte{"go": []byte("1"), "rust": []byte("2")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	val, found, err := c.HashGet(ctx, "blog_slugs", "go")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("1"), val)

	_, found, err = c.HashGet(ctx, "blog_slugs", "zig")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := c.HashDelete(ctx, "blog_slugs", "rust", "zig")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	all, err := c.HashGetAll(ctx, "blog_slugs")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"go": []byte("1")}, all)
}

func TestCache_ListIsAStack(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	n, err := c.ListPush(ctx, "recent", []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.ListPush(ctx, "recent", []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	items, err := c.ListRange(ctx, "recent", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, items)

	require.NoError(t, c.ListTrim(ctx, "recent", 0, 1))
	length, err := c.ListLength(ctx, "recent")
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	val, found, err := c.ListPop(ctx, "recent")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("c"), val)

	_, found, err = c.ListPop(ctx, "empty")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Set(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	added, err := c.SetAdd(ctx, "viewers", []byte("u1"), []byte("u2"), []byte("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	ok, err := c.SetContains(ctx, "viewers", []byte("u2"))
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := c.SetLength(ctx, "viewers")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	removed, err := c.SetRemove(ctx, "viewers", []byte("u2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	members, err := c.SetMembers(ctx, "viewers")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("u1")}, members)
}

func TestCache_IncrementCreatesCounter(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	n, err := c.Increment(ctx, "post_likes:1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = c.Decrement(ctx, "post_likes:1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Decrement(ctx, "post_comments:1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}

func TestCache_IncrementIfExists(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	_, applied, err := c.IncrementIfExists(ctx, "counter", 1)
	require.NoError(t, err)
	assert.False(t, applied)

	exists, err := c.Exists(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Set(ctx, "counter", []byte("5"), 0))

	n, applied, err := c.IncrementIfExists(ctx, "counter", -2)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(3), n)
}

func TestCache_CounterAtomicity(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	const callers = 50
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Increment(ctx, "post_likes:42", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	val, found, err := c.Get(ctx, "post_likes:42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, fmt.Sprint(callers), string(val))
}

func TestCache_WrongKindIsReportedDistinctly(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "scalar", []byte("v"), 0))

	_, _, err := c.HashGet(ctx, "scalar", "field")
	assert.True(t, errors.Is(err, cache.ErrWrongKind))

	_, err = c.ListPush(ctx, "scalar", []byte("x"))
	assert.True(t, errors.Is(err, cache.ErrWrongKind))

	_, err = c.Increment(ctx, "scalar", 1)
	assert.True(t, errors.Is(err, cache.ErrNotInteger))
}

func TestCache_SetLeavesCollectionsAlone(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	mr.HSet("profile:1", "name", "ada")
	_, err := mr.SetAdd("followers:1", "u2")
	require.NoError(t, err)

	err = c.Set(ctx, "profile:1", []byte("scalar"), 0)
	assert.True(t, errors.Is(err, cache.ErrWrongKind))
	assert.Equal(t, "hash", mr.Type("profile:1"))
	assert.Equal(t, "ada", mr.HGet("profile:1", "name"))

	stored, err := c.SetMany(ctx, map[string][]byte{
		"followers:1": []byte("scalar"),
		"post:1":      []byte("p"),
	}, time.Minute)
	assert.True(t, errors.Is(err, cache.ErrWrongKind))
	assert.Equal(t, 1, stored)
	assert.Equal(t, "set", mr.Type("followers:1"))

	got, err := mr.Get("post:1")
	require.NoError(t, err)
	assert.Equal(t, "p", got)
	assert.Equal(t, time.Minute, mr.TTL("post:1"))

	// Scalars are still overwritten in place.
	require.NoError(t, c.Set(ctx, "post:1", []byte("q"), -1))
	got, err = mr.Get("post:1")
	require.NoError(t, err)
	assert.Equal(t, "q", got)
	assert.Zero(t, mr.TTL("post:1"))
}

func TestCache_SetIfAbsent(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	ok, err := c.SetIfAbsent(ctx, "liked:user1:post42", []byte("true"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetIfAbsent(ctx, "liked:user1:post42", []byte("false"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, _, err := c.Get(ctx, "liked:user1:post42")
	require.NoError(t, err)
	assert.Equal(t, []byte("true"), val)
}

func TestCache_PublishSubscribe(t *testing.T) {
	_, c := setupWithConfig(t, rediscache.Config{Prefix: "content"})
	ctx := context.Background()

	received := make(chan cache.Message, 4)
	var calls int
	var mu sync.Mutex

	sub, err := c.Subscribe(ctx, "invalidations", func(ctx context.Context, msg cache.Message) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		switch n {
		case 1:
			return errors.New("handler failed")
		case 2:
			panic("handler panicked")
		}
		received <- msg
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "invalidations", sub.Channel())

	for i := 0; i < 3; i++ {
		_, err := c.Publish(ctx, "invalidations", []byte(fmt.Sprintf("m%d", i)))
		require.NoError(t, err)
	}

	select {
	case msg := <-received:
		assert.Equal(t, "invalidations", msg.Channel)
		assert.Equal(t, []byte("m2"), msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription stopped delivering after handler failures")
	}

	require.NoError(t, sub.Unsubscribe(ctx))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCache_HandlerFailureLogsError(t *testing.T) {
	var out lockedBuffer
	logger := zerolog.New(&out)
	_, c := setupWithConfig(t, rediscache.Config{Logger: &logger})
	ctx := context.Background()

	sub, err := c.Subscribe(ctx, "invalidations", func(ctx context.Context, msg cache.Message) error {
		return errors.New("apply failed")
	})
	require.NoError(t, err)
	defer sub.Unsubscribe(ctx)

	_, err = c.Publish(ctx, "invalidations", []byte("m"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "subscription handler failed")
	}, 2*time.Second, 10*time.Millisecond)
	logged := out.String()
	assert.Contains(t, logged, `"level":"error"`)
	assert.Contains(t, logged, `"channel":"invalidations"`)
	assert.Contains(t, logged, `"error":"apply failed"`)
}

func TestCache_SubscriptionEndsWithContext(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx, cancel := context.WithCancel(context.Background())

	delivered := make(chan struct{}, 4)
	sub, err := c.Subscribe(ctx, "invalidations", func(ctx context.Context, msg cache.Message) error {
		delivered <- struct{}{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mr.PubSubNumSub("invalidations")["invalidations"])

	cancel()

	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub("invalidations")["invalidations"] == 0
	}, 2*time.Second, 10*time.Millisecond)

	n, err := c.Publish(context.Background(), "invalidations", []byte("late"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, delivered)

	require.NoError(t, sub.Unsubscribe(context.Background()))
}

func TestCache_HealthCheck(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.HealthCheck(ctx))
	assert.Empty(t, mr.Keys())
}

func TestCache_Ping(t *testing.T) {
	_, c := setupMiniredis(t)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestCache_BreakerOpensWhenBackendFails(t *testing.T) {
	mr, c := setupWithConfig(t, rediscache.Config{
		OpTimeout: 100 * time.Millisecond,
		Breaker: rediscache.BreakerConfig{
			MinRequests:      1,
			FailureThreshold: 0.5,
			Timeout:          time.Minute,
		},
	})
	ctx := context.Background()

	mr.Close()

	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, cache.ErrUnavailable))

	_, _, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrUnavailable))
}

func TestCache_MissesDoNotTripBreaker(t *testing.T) {
	_, c := setupWithConfig(t, rediscache.Config{
		Breaker: rediscache.BreakerConfig{MinRequests: 1, FailureThreshold: 0.1},
	})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "scalar", []byte("v"), 0))
	for i := 0; i < 5; i++ {
		_, _, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		_, _, err = c.HashGet(ctx, "scalar", "f")
		require.True(t, errors.Is(err, cache.ErrWrongKind))
	}

	_, _, err := c.Get(ctx, "scalar")
	assert.NoError(t, err)
}
