// Package mocks provides testify mocks of the cache store, the document
// store and the sealer.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wayfarer/content-service/internal/core/cache"
)

// MockStore is a mock implementation of cache.Store.
type MockStore struct {
	mock.Mock
}

var _ cache.Store = (*MockStore)(nil)

// Get retrieves a payload from the cache.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	return bytesArg(args, 0), args.Bool(1), args.Error(2)
}

// Set stores a payload in the cache.
func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// SetIfAbsent stores a payload if the key does not exist.
func (m *MockStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

// Delete removes a key.
func (m *MockStore) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// DeleteMany removes keys.
func (m *MockStore) DeleteMany(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

// DeletePattern removes all keys matching the pattern.
func (m *MockStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

// Exists reports whether a key is present.
func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Expire sets a key's TTL.
func (m *MockStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// TTL returns a key's remaining lifetime.
func (m *MockStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

// GetMany retrieves several payloads.
func (m *MockStore) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	args := m.Called(ctx, keys)
	return bytesMapArg(args, 0), args.Error(1)
}

// SetMany stores several payloads.
func (m *MockStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) (int, error) {
	args := m.Called(ctx, entries, ttl)
	return args.Int(0), args.Error(1)
}

// HashGet reads a hash field.
func (m *MockStore) HashGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	args := m.Called(ctx, key, field)
	return bytesArg(args, 0), args.Bool(1), args.Error(2)
}

// HashSet writes hash fields.
func (m *MockStore) HashSet(ctx context.Context, key string, fields map[string][]byte) (int64, error) {
	args := m.Called(ctx, key, fields)
	return args.Get(0).(int64), args.Error(1)
}

// HashDelete removes hash fields.
func (m *MockStore) HashDelete(ctx context.Context, key string, fields ...string) (int64, error) {
	args := m.Called(ctx, key, fields)
	return args.Get(0).(int64), args.Error(1)
}

// HashGetAll reads every hash field.
func (m *MockStore) HashGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	args := m.Called(ctx, key)
	return bytesMapArg(args, 0), args.Error(1)
}

// ListPush pushes list values.
func (m *MockStore) ListPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	args := m.Called(ctx, key, values)
	return args.Get(0).(int64), args.Error(1)
}

// ListPop pops a list value.
func (m *MockStore) ListPop(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	return bytesArg(args, 0), args.Bool(1), args.Error(2)
}

// ListRange reads a list range.
func (m *MockStore) ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	args := m.Called(ctx, key, start, stop)
	return bytesSliceArg(args, 0), args.Error(1)
}

// ListLength returns a list's length.
func (m *MockStore) ListLength(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// ListTrim trims a list.
func (m *MockStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	args := m.Called(ctx, key, start, stop)
	return args.Error(0)
}

// SetAdd adds set members.
func (m *MockStore) SetAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	args := m.Called(ctx, key, members)
	return args.Get(0).(int64), args.Error(1)
}

// SetRemove removes set members.
func (m *MockStore) SetRemove(ctx context.Context, key string, members ...[]byte) (int64, error) {
	args := m.Called(ctx, key, members)
	return args.Get(0).(int64), args.Error(1)
}

// SetContains checks set membership.
func (m *MockStore) SetContains(ctx context.Context, key string, member []byte) (bool, error) {
	args := m.Called(ctx, key, member)
	return args.Bool(0), args.Error(1)
}

// SetMembers reads set members.
func (m *MockStore) SetMembers(ctx context.Context, key string) ([][]byte, error) {
	args := m.Called(ctx, key)
	return bytesSliceArg(args, 0), args.Error(1)
}

// SetLength returns a set's cardinality.
func (m *MockStore) SetLength(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// Increment adds to a counter.
func (m *MockStore) Increment(ctx context.Context, key string, by int64) (int64, error) {
	args := m.Called(ctx, key, by)
	return args.Get(0).(int64), args.Error(1)
}

// Decrement subtracts from a counter.
func (m *MockStore) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	args := m.Called(ctx, key, by)
	return args.Get(0).(int64), args.Error(1)
}

// IncrementIfExists adds to an existing counter.
func (m *MockStore) IncrementIfExists(ctx context.Context, key string, by int64) (int64, bool, error) {
	args := m.Called(ctx, key, by)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

// Publish publishes a message.
func (m *MockStore) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	args := m.Called(ctx, channel, message)
	return args.Get(0).(int64), args.Error(1)
}

// Subscribe subscribes to a channel.
func (m *MockStore) Subscribe(ctx context.Context, channel string, handler cache.Handler) (cache.Subscription, error) {
	args := m.Called(ctx, channel, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cache.Subscription), args.Error(1)
}

// HealthCheck runs the cache health check.
func (m *MockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ping checks the cache connection.
func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the cache connection.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func bytesArg(args mock.Arguments, i int) []byte {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]byte)
}

func bytesMapArg(args mock.Arguments, i int) map[string][]byte {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(map[string][]byte)
}

func bytesSliceArg(args mock.Arguments, i int) [][]byte {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([][]byte)
}
