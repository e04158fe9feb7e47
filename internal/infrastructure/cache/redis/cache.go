// Package redis provides the Redis cache implementation.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/wayfarer/content-service/internal/core/cache"
)

const (
	// DefaultOpTimeout bounds every backend round trip.
	DefaultOpTimeout = 500 * time.Millisecond

	// DefaultScanCount is the COUNT hint used by pattern deletes.
	DefaultScanCount = 100

	healthKeyPrefix = "__health__"
)

// setScalar writes a scalar value unless the key holds a collection.
// ARGV[2] is the lifetime in milliseconds, 0 for none.
var setScalar = redis.NewScript(`
local kind = redis.call("TYPE", KEYS[1]).ok
if kind ~= "none" and kind ~= "string" then
	return redis.error_reply("WRONGTYPE Operation against a key holding the wrong kind of value")
end
if tonumber(ARGV[2]) > 0 then
	return redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
end
return redis.call("SET", KEYS[1], ARGV[1])
`)

// Config holds Redis connection configuration.
type Config struct {
	// Addrs lists host:port pairs. More than one address selects cluster mode.
	Addrs       []string
	Password    string
	DB          int
	Prefix      string
	DefaultTTL  time.Duration
	OpTimeout   time.Duration
	DialTimeout time.Duration
	PoolSize    int
	ScanCount   int64
	Breaker     BreakerConfig
	Logger      *zerolog.Logger
}

// Cache implements the cache.Store interface for Redis.
type Cache struct {
	client     redis.UniversalClient
	breaker    *gobreaker.CircuitBreaker
	caps       Capabilities
	prefix     string
	defaultTTL time.Duration
	opTimeout  time.Duration
	scanCount  int64
	instanceID string
	logger     zerolog.Logger
}

var _ cache.Store = (*Cache)(nil)

// NewCache creates a new Redis cache instance and negotiates backend
// capabilities once. An unreachable backend is not an error: the cache starts
// with conservative capabilities and the breaker sheds calls until it
// recovers. Only a missing address fails.
func NewCache(cfg Config) (*Cache, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("at least one redis address is required")
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("component", "cache").Logger()

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	scanCount := cfg.ScanCount
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var caps Capabilities
	if err := client.Ping(ctx).Err(); err != nil {
		caps = conservative(client)
		logger.Warn().
			Err(err).
			Strs("addrs", cfg.Addrs).
			Msg("redis unreachable at startup, serving without cache until it recovers")
	} else {
		caps = negotiate(ctx, client)
		logger.Info().
			Bool("cluster", caps.Cluster).
			Bool("unlink", caps.Unlink).
			Str("prefix", cfg.Prefix).
			Msg("cache backend capabilities negotiated")
	}

	return &Cache{
		client:     client,
		breaker:    newBreaker(cfg.Breaker, logger),
		caps:       caps,
		prefix:     cfg.Prefix,
		defaultTTL: cfg.DefaultTTL,
		opTimeout:  opTimeout,
		scanCount:  scanCount,
		instanceID: uuid.NewString(),
		logger:     logger,
	}, nil
}

type lookup struct {
	data  []byte
	found bool
}

// Get retrieves a value from Redis by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := do(c, ctx, "get", func(ctx context.Context) (lookup, error) {
		val, err := c.client.Get(ctx, c.key(key)).Bytes()
		if err == redis.Nil {
			return lookup{}, nil // Key not found
		}
		if err != nil {
			return lookup{}, err
		}
		return lookup{data: val, found: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return res.data, res.found, nil
}

// Set stores a value in Redis with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := do(c, ctx, "set", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, setScalar.Run(ctx, c.client, []string{c.key(key)}, value, millis(c.expiration(ttl))).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// SetIfAbsent stores a value only if the key does not exist.
func (c *Cache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := do(c, ctx, "set_if_absent", func(ctx context.Context) (bool, error) {
		return c.client.SetNX(ctx, c.key(key), value, c.expiration(ttl)).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to set key %s if absent: %w", key, err)
	}
	return ok, nil
}

// Delete removes a key from Redis.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.DeleteMany(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return n > 0, nil
}

// DeleteMany removes keys and returns how many existed.
func (c *Cache) DeleteMany(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}

	n, err := do(c, ctx, "delete", func(ctx context.Context) (int64, error) {
		return c.deleteKeys(ctx, c.client, full)
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete keys: %w", err)
	}
	return n, nil
}

// Exists reports whether the key is present.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := do(c, ctx, "exists", func(ctx context.Context) (int64, error) {
		return c.client.Exists(ctx, c.key(key)).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

// Expire updates the lifetime of a key. NoExpiration removes the TTL.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := do(c, ctx, "expire", func(ctx context.Context) (bool, error) {
		if ttl < 0 {
			return c.client.Persist(ctx, c.key(key)).Result()
		}
		return c.client.Expire(ctx, c.key(key), c.expiration(ttl)).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to expire key %s: %w", key, err)
	}
	return ok, nil
}

// TTL returns the remaining lifetime of a key.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := do(c, ctx, "ttl", func(ctx context.Context) (time.Duration, error) {
		return c.client.TTL(ctx, c.key(key)).Result()
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to get ttl of key %s: %w", key, err)
	}

	switch d {
	case -2:
		return 0, false, nil
	case -1:
		return cache.NoExpiration, true, nil
	default:
		return d, true, nil
	}
}

// GetMany fetches keys in one pipeline and returns the ones present.
func (c *Cache) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	_, err := do(c, ctx, "get_many", func(ctx context.Context) (struct{}, error) {
		pipe := c.client.Pipeline()
		cmds := make([]*redis.StringCmd, len(keys))
		for i, k := range keys {
			cmds[i] = pipe.Get(ctx, c.key(k))
		}
		_, _ = pipe.Exec(ctx)

		var errs []error
		for i, cmd := range cmds {
			val, err := cmd.Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("key %s: %w", keys[i], err))
				continue
			}
			result[keys[i]] = val
		}
		return struct{}{}, errors.Join(errs...)
	})
	if err != nil {
		return result, fmt.Errorf("failed to get keys: %w", err)
	}
	return result, nil
}

// SetMany stores entries in one pipeline with a shared TTL. Entries whose
// key holds a collection are skipped and reported as ErrWrongKind.
func (c *Cache) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	exp := millis(c.expiration(ttl))
	stored, err := do(c, ctx, "set_many", func(ctx context.Context) (int, error) {
		pipe := c.client.Pipeline()
		keys := make([]string, 0, len(entries))
		cmds := make([]*redis.Cmd, 0, len(entries))
		for k, v := range entries {
			keys = append(keys, k)
			// EVALSHA cannot fall back to EVAL inside a pipeline.
			cmds = append(cmds, setScalar.Eval(ctx, pipe, []string{c.key(k)}, v, exp))
		}
		_, _ = pipe.Exec(ctx)

		var stored int
		var errs []error
		for i, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				errs = append(errs, fmt.Errorf("key %s: %w", keys[i], err))
				continue
			}
			stored++
		}
		return stored, errors.Join(errs...)
	})
	if err != nil {
		return stored, fmt.Errorf("failed to set keys: %w", err)
	}
	return stored, nil
}

// Publish sends a message to a channel.
func (c *Cache) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	n, err := do(c, ctx, "publish", func(ctx context.Context) (int64, error) {
		return c.client.Publish(ctx, c.key(channel), message).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return n, nil
}

// HealthCheck writes, reads back and deletes a reserved key.
func (c *Cache) HealthCheck(ctx context.Context) error {
	key := healthKeyPrefix + cache.Separator + c.instanceID
	token := []byte(uuid.NewString())

	if err := c.Set(ctx, key, token, 10*time.Second); err != nil {
		return fmt.Errorf("health check write failed: %w", err)
	}

	got, found, err := c.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("health check read failed: %w", err)
	}
	if !found || string(got) != string(token) {
		return fmt.Errorf("health check read back an unexpected value")
	}

	if _, err := c.Delete(ctx, key); err != nil {
		return fmt.Errorf("health check delete failed: %w", err)
	}
	return nil
}

// Ping checks if the Redis connection is alive.
func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	return nil
}

// Capabilities returns the features negotiated at startup.
func (c *Cache) Capabilities() Capabilities {
	return c.caps
}

// GetClient returns the underlying Redis client (for testing purposes).
func (c *Cache) GetClient() redis.UniversalClient {
	return c.client
}

// key namespaces a logical key under the instance prefix.
func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + cache.Separator + k
}

// expiration maps the cache TTL convention onto Redis expirations:
// 0 selects the default TTL, negative values mean no expiry.
func (c *Cache) expiration(ttl time.Duration) time.Duration {
	switch {
	case ttl < 0:
		return 0
	case ttl == 0:
		return c.defaultTTL
	default:
		return ttl
	}
}

// millis converts an expiration to the millisecond argument of setScalar,
// rounding sub-millisecond lifetimes up so they still expire.
func millis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	if ms := d.Milliseconds(); ms > 0 {
		return ms
	}
	return 1
}

// deleteKeys deletes fully qualified keys. Cluster nodes reject multi-key
// commands spanning slots, so keys are deleted one command each in a pipeline.
func (c *Cache) deleteKeys(ctx context.Context, client redis.Cmdable, keys []string) (int64, error) {
	pipe := client.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, k := range keys {
		if c.caps.Unlink {
			cmds[i] = pipe.Unlink(ctx, k)
		} else {
			cmds[i] = pipe.Del(ctx, k)
		}
	}
	_, _ = pipe.Exec(ctx)

	var deleted int64
	var errs []error
	for i, cmd := range cmds {
		n, err := cmd.Result()
		if err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", keys[i], err))
			continue
		}
		deleted += n
	}
	return deleted, errors.Join(errs...)
}
