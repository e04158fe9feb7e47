package cache

import (
	"context"
	"time"
)

// Counter is the integer view of a Store. Counters are stored as base-10
// text so that atomic increments operate on the same payload Get decodes.
//
// Reads degrade to "absent" like any other read. Increment, Decrement and
// Adjust return backend errors: their side effect is the whole point.
type Counter struct {
	values *Typed[int64]
}

// NewCounter creates a counter view of store.
func NewCounter(store Store, opts Options) *Counter {
	return &Counter{values: NewTyped[int64](store, Int64Codec{}, opts)}
}

// Get returns the current value and whether the counter exists.
func (c *Counter) Get(ctx context.Context, key string) (int64, bool, error) {
	return c.values.Get(ctx, key)
}

// Set overwrites the counter with n.
func (c *Counter) Set(ctx context.Context, key string, n int64, ttl time.Duration) error {
	return c.values.Set(ctx, key, n, ttl)
}

// Increment adds by and returns the new value, creating the counter at by.
func (c *Counter) Increment(ctx context.Context, key string, by int64) (int64, error) {
	return c.values.Store().Increment(ctx, key, by)
}

// Decrement subtracts by and returns the new value, creating the counter at -by.
func (c *Counter) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	return c.values.Store().Decrement(ctx, key, by)
}

// Adjust applies a delta only to a counter that already exists, so a
// missing counter is later recomputed from the source instead of starting
// from the delta.
func (c *Counter) Adjust(ctx context.Context, key string, delta int64) (int64, bool, error) {
	return c.values.Store().IncrementIfExists(ctx, key, delta)
}

// Delete removes the counter.
func (c *Counter) Delete(ctx context.Context, key string) (bool, error) {
	return c.values.Delete(ctx, key)
}
