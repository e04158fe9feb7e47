package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// DeletePattern removes every key matching a glob pattern and returns how
// many were deleted. Keys are enumerated with SCAN, never KEYS, so the
// backend is not blocked. In cluster mode every master is scanned.
//
// Delete failures are collected and the scan continues; a scan failure
// aborts. The returned count is exact for the keys seen by the scan.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	match := c.key(pattern)

	cluster, ok := c.client.(*redis.ClusterClient)
	if !ok {
		n, err := c.deleteMatching(ctx, c.client, match)
		if err != nil {
			return n, fmt.Errorf("failed to delete pattern %s: %w", pattern, err)
		}
		return n, nil
	}

	var (
		total int64
		mu    sync.Mutex
		errs  []error
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		n, err := c.deleteMatching(ctx, node, match)
		atomic.AddInt64(&total, n)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("node %s: %w", node.Options().Addr, err))
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return total, fmt.Errorf("failed to delete pattern %s: %w", pattern, errors.Join(errs...))
	}
	return total, nil
}

type scanPage struct {
	keys   []string
	cursor uint64
}

func (c *Cache) deleteMatching(ctx context.Context, node redis.Cmdable, match string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
		errs    []error
	)

	for {
		page, err := do(c, ctx, "scan", func(ctx context.Context) (scanPage, error) {
			keys, next, err := node.Scan(ctx, cursor, match, c.scanCount).Result()
			return scanPage{keys: keys, cursor: next}, err
		})
		if err != nil {
			errs = append(errs, err)
			return deleted, errors.Join(errs...)
		}

		if len(page.keys) > 0 {
			n, err := do(c, ctx, "delete", func(ctx context.Context) (int64, error) {
				return c.deleteKeys(ctx, node, page.keys)
			})
			deleted += n
			if err != nil {
				errs = append(errs, err)
			}
		}

		cursor = page.cursor
		if cursor == 0 {
			break
		}
	}

	return deleted, errors.Join(errs...)
}
