package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// incrementIfExists applies a delta only to an existing counter.
// Returns {1, value} when applied and {0, 0} when the key is absent.
var incrementIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return {1, redis.call("INCRBY", KEYS[1], ARGV[1])}
end
return {0, 0}
`)

// HashGet returns one field of the hash at key.
func (c *Cache) HashGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	res, err := do(c, ctx, "hash_get", func(ctx context.Context) (lookup, error) {
		val, err := c.client.HGet(ctx, c.key(key), field).Bytes()
		if err == redis.Nil {
			return lookup{}, nil
		}
		if err != nil {
			return lookup{}, err
		}
		return lookup{data: val, found: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get field %s of key %s: %w", field, key, err)
	}
	return res.data, res.found, nil
}

// HashSet writes fields into the hash at key and returns how many were new.
func (c *Cache) HashSet(ctx context.Context, key string, fields map[string][]byte) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	pairs := make([]interface{}, 0, len(fields)*2)
	for f, v := range fields {
		pairs = append(pairs, f, v)
	}

	n, err := do(c, ctx, "hash_set", func(ctx context.Context) (int64, error) {
		return c.client.HSet(ctx, c.key(key), pairs...).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set hash %s: %w", key, err)
	}
	return n, nil
}

// HashDelete removes fields from the hash at key.
func (c *Cache) HashDelete(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	n, err := do(c, ctx, "hash_delete", func(ctx context.Context) (int64, error) {
		return c.client.HDel(ctx, c.key(key), fields...).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete fields of hash %s: %w", key, err)
	}
	return n, nil
}

// HashGetAll returns every field of the hash at key.
func (c *Cache) HashGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	raw, err := do(c, ctx, "hash_get_all", func(ctx context.Context) (map[string]string, error) {
		return c.client.HGetAll(ctx, c.key(key)).Result()
	})
	if err != nil {
		return map[string][]byte{}, fmt.Errorf("failed to get hash %s: %w", key, err)
	}

	result := make(map[string][]byte, len(raw))
	for f, v := range raw {
		result[f] = []byte(v)
	}
	return result, nil
}

// ListPush pushes values onto the head of the list and returns its new length.
func (c *Cache) ListPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	if len(values) == 0 {
		return c.ListLength(ctx, key)
	}

	n, err := do(c, ctx, "list_push", func(ctx context.Context) (int64, error) {
		return c.client.LPush(ctx, c.key(key), toArgs(values)...).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to push to list %s: %w", key, err)
	}
	return n, nil
}

// ListPop removes and returns the head of the list.
func (c *Cache) ListPop(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := do(c, ctx, "list_pop", func(ctx context.Context) (lookup, error) {
		val, err := c.client.LPop(ctx, c.key(key)).Bytes()
		if err == redis.Nil {
			return lookup{}, nil
		}
		if err != nil {
			return lookup{}, err
		}
		return lookup{data: val, found: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to pop from list %s: %w", key, err)
	}
	return res.data, res.found, nil
}

// ListRange returns elements start..stop inclusive.
func (c *Cache) ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	raw, err := do(c, ctx, "list_range", func(ctx context.Context) ([]string, error) {
		return c.client.LRange(ctx, c.key(key), start, stop).Result()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", key, err)
	}
	return toBytes(raw), nil
}

// ListLength returns the length of the list at key.
func (c *Cache) ListLength(ctx context.Context, key string) (int64, error) {
	n, err := do(c, ctx, "list_length", func(ctx context.Context) (int64, error) {
		return c.client.LLen(ctx, c.key(key)).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get length of list %s: %w", key, err)
	}
	return n, nil
}

// ListTrim keeps only elements start..stop.
func (c *Cache) ListTrim(ctx context.Context, key string, start, stop int64) error {
	_, err := do(c, ctx, "list_trim", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.client.LTrim(ctx, c.key(key), start, stop).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to trim list %s: %w", key, err)
	}
	return nil
}

// SetAdd adds members to the set at key and returns how many were new.
func (c *Cache) SetAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	n, err := do(c, ctx, "set_add", func(ctx context.Context) (int64, error) {
		return c.client.SAdd(ctx, c.key(key), toArgs(members)...).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add to set %s: %w", key, err)
	}
	return n, nil
}

// SetRemove removes members from the set at key.
func (c *Cache) SetRemove(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	n, err := do(c, ctx, "set_remove", func(ctx context.Context) (int64, error) {
		return c.client.SRem(ctx, c.key(key), toArgs(members)...).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove from set %s: %w", key, err)
	}
	return n, nil
}

// SetContains reports whether member belongs to the set at key.
func (c *Cache) SetContains(ctx context.Context, key string, member []byte) (bool, error) {
	ok, err := do(c, ctx, "set_contains", func(ctx context.Context) (bool, error) {
		return c.client.SIsMember(ctx, c.key(key), member).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check set %s: %w", key, err)
	}
	return ok, nil
}

// SetMembers returns every member of the set at key.
func (c *Cache) SetMembers(ctx context.Context, key string) ([][]byte, error) {
	raw, err := do(c, ctx, "set_members", func(ctx context.Context) ([]string, error) {
		return c.client.SMembers(ctx, c.key(key)).Result()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read set %s: %w", key, err)
	}
	return toBytes(raw), nil
}

// SetLength returns the cardinality of the set at key.
func (c *Cache) SetLength(ctx context.Context, key string) (int64, error) {
	n, err := do(c, ctx, "set_length", func(ctx context.Context) (int64, error) {
		return c.client.SCard(ctx, c.key(key)).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get length of set %s: %w", key, err)
	}
	return n, nil
}

// Increment atomically adds by to the counter at key, creating it at by.
func (c *Cache) Increment(ctx context.Context, key string, by int64) (int64, error) {
	n, err := do(c, ctx, "increment", func(ctx context.Context) (int64, error) {
		return c.client.IncrBy(ctx, c.key(key), by).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	return n, nil
}

// Decrement atomically subtracts by from the counter at key, creating it at -by.
func (c *Cache) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	n, err := do(c, ctx, "decrement", func(ctx context.Context) (int64, error) {
		return c.client.DecrBy(ctx, c.key(key), by).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to decrement key %s: %w", key, err)
	}
	return n, nil
}

type adjusted struct {
	value   int64
	applied bool
}

// IncrementIfExists applies delta only when the counter already exists.
func (c *Cache) IncrementIfExists(ctx context.Context, key string, delta int64) (int64, bool, error) {
	res, err := do(c, ctx, "increment_if_exists", func(ctx context.Context) (adjusted, error) {
		raw, err := incrementIfExists.Run(ctx, c.client, []string{c.key(key)}, delta).Int64Slice()
		if err != nil {
			return adjusted{}, err
		}
		if len(raw) != 2 {
			return adjusted{}, fmt.Errorf("unexpected script reply of length %d", len(raw))
		}
		return adjusted{value: raw[1], applied: raw[0] == 1}, nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to adjust key %s: %w", key, err)
	}
	return res.value, res.applied, nil
}

func toArgs(values [][]byte) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func toBytes(values []string) [][]byte {
	result := make([][]byte, len(values))
	for i, v := range values {
		result[i] = []byte(v)
	}
	return result
}
