// Package readthrough populates the cache lazily from the authoritative store.
//
// Lookups follow MISS -> LOAD -> (found ? POPULATE : NOT FOUND) -> RETURN.
// The cache is never a new way to fail: any cache error falls back to the
// authoritative source, and population failures are logged and dropped.
// Concurrent misses on one key may both load and both populate; the writes
// carry the same value.
package readthrough

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfarer/content-service/internal/core/cache"
)

const tracerName = "github.com/wayfarer/content-service/internal/services/readthrough"

// Options configures loaders.
type Options struct {
	Logger   *zerolog.Logger
	Observer cache.Observer
	Tracer   trace.Tracer
}

func (o Options) cacheOptions() cache.Options {
	return cache.Options{Logger: o.Logger, Observer: o.Observer}
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return log.Logger
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return otel.Tracer(tracerName)
}

func (o Options) observer() cache.Observer {
	if o.Observer != nil {
		return o.Observer
	}
	return nopObserver{}
}

type nopObserver struct{}

func (nopObserver) Observe(string, string) {}

// Entity loads single values of type T.
type Entity[T any] struct {
	values   *cache.Typed[T]
	ttl      time.Duration
	logger   zerolog.Logger
	observer cache.Observer
	tracer   trace.Tracer
}

// NewEntity creates a loader caching values under ttl.
func NewEntity[T any](store cache.Store, codec cache.Codec[T], ttl time.Duration, opts Options) *Entity[T] {
	return &Entity[T]{
		values:   cache.NewTyped[T](store, codec, opts.cacheOptions()),
		ttl:      ttl,
		logger:   opts.logger(),
		observer: opts.observer(),
		tracer:   opts.tracer(),
	}
}

// Load returns the value under key, fetching it on a miss. fetch returns
// nil when the entity does not exist; nothing is cached in that case.
func (e *Entity[T]) Load(ctx context.Context, key string, fetch func(ctx context.Context) (*T, error)) (*T, error) {
	ctx, span := e.tracer.Start(ctx, "readthrough.entity", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	cached, found, err := e.values.Get(ctx, key)
	wrongKind := err != nil
	if wrongKind {
		e.observer.Observe("readthrough", cache.ResultWrongKind)
		e.logger.Error().Err(err).Str("key", key).Msg("cache key holds the wrong kind of value, loading from source")
	} else if found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	// A kind mismatch is a programming error; leave the key alone so it
	// keeps surfacing.
	if !wrongKind {
		e.populate(ctx, key, *v)
	}
	return v, nil
}

// Set writes v under key, as done after a successful write-through.
func (e *Entity[T]) Set(ctx context.Context, key string, v T) error {
	return e.values.Set(ctx, key, v, e.ttl)
}

// Forget removes key.
func (e *Entity[T]) Forget(ctx context.Context, key string) error {
	_, err := e.values.Delete(ctx, key)
	return err
}

func (e *Entity[T]) populate(ctx context.Context, key string, v T) {
	if err := e.values.Set(ctx, key, v, e.ttl); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("failed to populate cache")
	}
}
