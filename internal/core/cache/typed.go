package cache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures the policy layer.
type Options struct {
	Logger   *zerolog.Logger
	Observer Observer
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return log.Logger
}

func (o Options) observer() Observer {
	if o.Observer != nil {
		return o.Observer
	}
	return nopObserver{}
}

// Typed applies the failure policy to a Store for values of type T:
//   - reads degrade to a miss on backend or decode errors, and log them;
//   - writes return backend errors so the caller decides whether to absorb them;
//   - kind mismatches are always returned as ErrWrongKind.
type Typed[T any] struct {
	store    Store
	codec    Codec[T]
	logger   zerolog.Logger
	observer Observer
}

// NewTyped creates a typed view of store using codec.
func NewTyped[T any](store Store, codec Codec[T], opts Options) *Typed[T] {
	return &Typed[T]{
		store:    store,
		codec:    codec,
		logger:   opts.logger(),
		observer: opts.observer(),
	}
}

// Store returns the underlying store.
func (t *Typed[T]) Store() Store {
	return t.store
}

// Get returns the decoded value under key. The bool is false on a miss,
// on a backend error and on a decode failure.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	data, found, err := t.store.Get(ctx, key)
	if err != nil {
		return zero, false, t.readFailure("get", key, err)
	}
	if !found {
		t.observer.Observe("get", ResultMiss)
		return zero, false, nil
	}

	v, err := t.codec.Decode(data)
	if err != nil {
		t.observer.Observe("get", ResultDecode)
		t.logger.Warn().Err(err).Str("key", key).Msg("cache payload could not be decoded, treating as miss")
		return zero, false, nil
	}

	t.observer.Observe("get", ResultHit)
	return v, true, nil
}

// Set encodes and stores v. Null values are refused without error.
func (t *Typed[T]) Set(ctx context.Context, key string, v T, ttl time.Duration) error {
	data, err := t.codec.Encode(v)
	if errors.Is(err, ErrNilValue) {
		t.observer.Observe("set", ResultSkipped)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}

	if err := t.store.Set(ctx, key, data, ttl); err != nil {
		t.observer.Observe("set", ResultError)
		return err
	}
	t.observer.Observe("set", ResultStored)
	return nil
}

// SetIfAbsent stores v only if key does not exist. Returns true if this call
// wrote the value. Null values are refused without error, like Set. Backend
// errors are returned because callers rely on the outcome.
func (t *Typed[T]) SetIfAbsent(ctx context.Context, key string, v T, ttl time.Duration) (bool, error) {
	data, err := t.codec.Encode(v)
	if errors.Is(err, ErrNilValue) {
		t.observer.Observe("set_if_absent", ResultSkipped)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}
	return t.store.SetIfAbsent(ctx, key, data, ttl)
}

// GetOrSet returns the cached value or calls factory, stores its result and
// returns it. Zero results are returned but never cached, so a transient
// empty answer is not pinned until expiry. Factory errors and ErrWrongKind
// are returned; other cache errors are logged. A key of the wrong kind is
// left untouched and the factory is not called.
func (t *Typed[T]) GetOrSet(ctx context.Context, key string, factory func(ctx context.Context) (T, error), ttl time.Duration) (T, error) {
	v, ok, err := t.Get(ctx, key)
	if IsWrongKind(err) {
		return v, err
	}
	if err == nil && ok {
		return v, nil
	}

	v, err = factory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if isZero(v) {
		t.observer.Observe("get_or_set", ResultSkipped)
		return v, nil
	}

	if err := t.Set(ctx, key, v, ttl); err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("failed to populate cache")
	}
	return v, nil
}

// Delete removes key.
func (t *Typed[T]) Delete(ctx context.Context, key string) (bool, error) {
	return t.store.Delete(ctx, key)
}

// GetMany returns the decodable values among keys. Entries that fail to
// decode are skipped; a backend failure yields an empty result.
func (t *Typed[T]) GetMany(ctx context.Context, keys ...string) (map[string]T, error) {
	result := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	raw, err := t.store.GetMany(ctx, keys...)
	if err != nil {
		if IsWrongKind(err) {
			t.observer.Observe("get_many", ResultWrongKind)
			t.logger.Error().Err(err).Strs("keys", keys).Msg("batch get hit keys of the wrong kind")
		} else {
			t.observer.Observe("get_many", ResultError)
			t.logger.Warn().Err(err).Int("keys", len(keys)).Msg("batch get partially failed")
		}
	}

	for key, data := range raw {
		v, err := t.codec.Decode(data)
		if err != nil {
			t.observer.Observe("get_many", ResultDecode)
			t.logger.Warn().Err(err).Str("key", key).Msg("skipping undecodable cache entry")
			continue
		}
		result[key] = v
	}
	return result, nil
}

// SetMany stores every non-null value with one ttl and returns how many were stored.
func (t *Typed[T]) SetMany(ctx context.Context, values map[string]T, ttl time.Duration) (int, error) {
	entries := make(map[string][]byte, len(values))
	var errs []error
	for key, v := range values {
		data, err := t.codec.Encode(v)
		if errors.Is(err, ErrNilValue) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode value for key %s: %w", key, err))
			continue
		}
		entries[key] = data
	}

	if len(entries) == 0 {
		return 0, errors.Join(errs...)
	}

	stored, err := t.store.SetMany(ctx, entries, ttl)
	if err != nil {
		errs = append(errs, err)
	}
	return stored, errors.Join(errs...)
}

// HashGet returns one decoded field of a hash.
func (t *Typed[T]) HashGet(ctx context.Context, key, field string) (T, bool, error) {
	var zero T

	data, found, err := t.store.HashGet(ctx, key, field)
	if err != nil {
		return zero, false, t.readFailure("hash_get", key, err)
	}
	if !found {
		t.observer.Observe("hash_get", ResultMiss)
		return zero, false, nil
	}

	v, err := t.codec.Decode(data)
	if err != nil {
		t.observer.Observe("hash_get", ResultDecode)
		t.logger.Warn().Err(err).Str("key", key).Str("field", field).Msg("hash field could not be decoded, treating as miss")
		return zero, false, nil
	}
	t.observer.Observe("hash_get", ResultHit)
	return v, true, nil
}

// HashSet stores fields into the hash at key. Null values are skipped.
func (t *Typed[T]) HashSet(ctx context.Context, key string, fields map[string]T) (int64, error) {
	encoded := make(map[string][]byte, len(fields))
	for field, v := range fields {
		data, err := t.codec.Encode(v)
		if errors.Is(err, ErrNilValue) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to encode field %s of key %s: %w", field, key, err)
		}
		encoded[field] = data
	}
	if len(encoded) == 0 {
		return 0, nil
	}
	return t.store.HashSet(ctx, key, encoded)
}

// HashDelete removes fields from the hash at key.
func (t *Typed[T]) HashDelete(ctx context.Context, key string, fields ...string) (int64, error) {
	return t.store.HashDelete(ctx, key, fields...)
}

// HashGetAll decodes every field of the hash independently. Fields that fail
// to decode are logged and left out.
func (t *Typed[T]) HashGetAll(ctx context.Context, key string) (map[string]T, error) {
	raw, err := t.store.HashGetAll(ctx, key)
	if err != nil {
		return map[string]T{}, t.readFailure("hash_get_all", key, err)
	}

	result := make(map[string]T, len(raw))
	for field, data := range raw {
		v, err := t.codec.Decode(data)
		if err != nil {
			t.observer.Observe("hash_get_all", ResultDecode)
			t.logger.Warn().Err(err).Str("key", key).Str("field", field).Msg("skipping undecodable hash field")
			continue
		}
		result[field] = v
	}

	if len(raw) == 0 {
		t.observer.Observe("hash_get_all", ResultMiss)
	} else {
		t.observer.Observe("hash_get_all", ResultHit)
	}
	return result, nil
}

// ListPush pushes values onto the head of the list at key.
func (t *Typed[T]) ListPush(ctx context.Context, key string, values ...T) (int64, error) {
	encoded := make([][]byte, 0, len(values))
	for _, v := range values {
		data, err := t.codec.Encode(v)
		if errors.Is(err, ErrNilValue) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to encode list value for key %s: %w", key, err)
		}
		encoded = append(encoded, data)
	}
	if len(encoded) == 0 {
		return t.store.ListLength(ctx, key)
	}
	return t.store.ListPush(ctx, key, encoded...)
}

// ListPop pops the most recently pushed value.
func (t *Typed[T]) ListPop(ctx context.Context, key string) (T, bool, error) {
	var zero T
	data, found, err := t.store.ListPop(ctx, key)
	if err != nil || !found {
		return zero, false, err
	}
	v, err := t.codec.Decode(data)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode popped value of key %s: %w", key, err)
	}
	return v, true, nil
}

// ListRange returns decoded elements start..stop (inclusive, negative
// indexes count from the tail). Undecodable elements are skipped.
func (t *Typed[T]) ListRange(ctx context.Context, key string, start, stop int64) ([]T, error) {
	raw, err := t.store.ListRange(ctx, key, start, stop)
	if err != nil {
		return nil, t.readFailure("list_range", key, err)
	}

	result := make([]T, 0, len(raw))
	for _, data := range raw {
		v, err := t.codec.Decode(data)
		if err != nil {
			t.observer.Observe("list_range", ResultDecode)
			t.logger.Warn().Err(err).Str("key", key).Msg("skipping undecodable list element")
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// SetAdd adds members to the set at key.
func (t *Typed[T]) SetAdd(ctx context.Context, key string, members ...T) (int64, error) {
	encoded, err := t.encodeAll(key, members)
	if err != nil || len(encoded) == 0 {
		return 0, err
	}
	return t.store.SetAdd(ctx, key, encoded...)
}

// SetRemove removes members from the set at key.
func (t *Typed[T]) SetRemove(ctx context.Context, key string, members ...T) (int64, error) {
	encoded, err := t.encodeAll(key, members)
	if err != nil || len(encoded) == 0 {
		return 0, err
	}
	return t.store.SetRemove(ctx, key, encoded...)
}

// SetContains reports membership. Backend errors read as "not a member".
func (t *Typed[T]) SetContains(ctx context.Context, key string, member T) (bool, error) {
	data, err := t.codec.Encode(member)
	if err != nil {
		return false, fmt.Errorf("failed to encode member for key %s: %w", key, err)
	}
	ok, err := t.store.SetContains(ctx, key, data)
	if err != nil {
		return false, t.readFailure("set_contains", key, err)
	}
	return ok, nil
}

// SetMembers returns the decodable members of the set at key.
func (t *Typed[T]) SetMembers(ctx context.Context, key string) ([]T, error) {
	raw, err := t.store.SetMembers(ctx, key)
	if err != nil {
		return nil, t.readFailure("set_members", key, err)
	}

	result := make([]T, 0, len(raw))
	for _, data := range raw {
		v, err := t.codec.Decode(data)
		if err != nil {
			t.logger.Warn().Err(err).Str("key", key).Msg("skipping undecodable set member")
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

// SetLength returns the cardinality of the set at key, 0 on backend errors.
func (t *Typed[T]) SetLength(ctx context.Context, key string) (int64, error) {
	n, err := t.store.SetLength(ctx, key)
	if err != nil {
		return 0, t.readFailure("set_length", key, err)
	}
	return n, nil
}

func (t *Typed[T]) encodeAll(key string, values []T) ([][]byte, error) {
	encoded := make([][]byte, 0, len(values))
	for _, v := range values {
		data, err := t.codec.Encode(v)
		if errors.Is(err, ErrNilValue) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to encode member for key %s: %w", key, err)
		}
		encoded = append(encoded, data)
	}
	return encoded, nil
}

// readFailure applies the read-path policy: kind mismatches are returned,
// everything else is logged and absorbed.
func (t *Typed[T]) readFailure(op, key string, err error) error {
	if IsWrongKind(err) {
		t.observer.Observe(op, ResultWrongKind)
		t.logger.Error().Err(err).Str("op", op).Str("key", key).Msg("cache key holds the wrong kind of value")
		return err
	}
	t.observer.Observe(op, ResultError)
	t.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("cache read failed, treating as miss")
	return nil
}

func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
