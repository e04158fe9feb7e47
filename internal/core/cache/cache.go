// Package cache defines the cache store contract, value codecs, the key scheme
// and the typed policy layer used by the content services.
package cache

import (
	"context"
	"time"
)

// Store is the key-value engine shared by every caller in the process.
//
// Keys and channels passed to a Store are logical names; implementations
// namespace them under their instance prefix. Store methods return backend
// errors as-is: the miss/no-op degradation policy is applied by Typed and
// Counter, not here.
type Store interface {
	// Get returns the raw payload stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A ttl of 0 applies the default TTL,
	// NoExpiration stores the key without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent stores value only if key does not exist yet.
	// Returns true if this call created the key.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key. Returns true if the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteMany removes keys and returns how many existed.
	DeleteMany(ctx context.Context, keys ...string) (int64, error)

	// DeletePattern removes all keys matching the glob pattern using an
	// incremental cursor scan. Returns the number of keys deleted.
	DeletePattern(ctx context.Context, pattern string) (int64, error)

	// Exists reports whether key is present, whatever its kind.
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets the remaining lifetime of key. Returns false if key is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// TTL returns the remaining lifetime of key. The bool is false if the key
	// is absent; a present key without expiry reports NoExpiration.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)

	// GetMany returns the payloads of the keys that are present.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// SetMany stores every entry with the same ttl and returns how many were stored.
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) (int, error)

	HashGet(ctx context.Context, key, field string) ([]byte, bool, error)
	HashSet(ctx context.Context, key string, fields map[string][]byte) (int64, error)
	HashDelete(ctx context.Context, key string, fields ...string) (int64, error)
	HashGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// ListPush pushes values to the head of the list. ListPop pops from the
	// same end, giving stack order.
	ListPush(ctx context.Context, key string, values ...[]byte) (int64, error)
	ListPop(ctx context.Context, key string) ([]byte, bool, error)
	ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	ListLength(ctx context.Context, key string) (int64, error)
	ListTrim(ctx context.Context, key string, start, stop int64) error

	SetAdd(ctx context.Context, key string, members ...[]byte) (int64, error)
	SetRemove(ctx context.Context, key string, members ...[]byte) (int64, error)
	SetContains(ctx context.Context, key string, member []byte) (bool, error)
	SetMembers(ctx context.Context, key string) ([][]byte, error)
	SetLength(ctx context.Context, key string) (int64, error)

	// Increment atomically adds by to the counter, creating it at by if absent.
	Increment(ctx context.Context, key string, by int64) (int64, error)

	// Decrement atomically subtracts by from the counter, creating it at -by if absent.
	Decrement(ctx context.Context, key string, by int64) (int64, error)

	// IncrementIfExists adds by only when the counter is already materialized.
	// The bool is false when the key was absent and nothing changed.
	IncrementIfExists(ctx context.Context, key string, by int64) (int64, bool, error)

	// Publish sends message to channel and returns the number of receivers.
	Publish(ctx context.Context, channel string, message []byte) (int64, error)

	// Subscribe starts delivering channel messages to handler until the
	// subscription is closed or ctx is cancelled.
	Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error)

	// HealthCheck performs a write-read-delete round trip on a reserved key.
	HealthCheck(ctx context.Context) error

	// Ping checks if the backend connection is alive.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// Handler receives published messages. A returned error is logged and the
// subscription keeps running.
type Handler func(ctx context.Context, msg Message) error

// Message is a published payload as seen by a subscriber.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription is an active channel subscription.
type Subscription interface {
	// Channel returns the logical channel name.
	Channel() string

	// Unsubscribe stops delivery and waits for the dispatch loop to exit.
	Unsubscribe(ctx context.Context) error
}
