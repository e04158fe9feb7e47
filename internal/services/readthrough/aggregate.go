package readthrough

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfarer/content-service/internal/core/cache"
)

// Aggregate loads counters such as like and comment counts.
//
// A cached value that is zero or negative is not trusted: it is recomputed
// from the source. A legitimately empty aggregate costs a recomputation per
// read; in exchange a counter can never stay stuck at a stale zero after a
// missed delta.
type Aggregate struct {
	counter  *cache.Counter
	ttl      time.Duration
	logger   zerolog.Logger
	observer cache.Observer
	tracer   trace.Tracer
}

// NewAggregate creates a counter loader caching values under ttl.
func NewAggregate(store cache.Store, ttl time.Duration, opts Options) *Aggregate {
	return &Aggregate{
		counter:  cache.NewCounter(store, opts.cacheOptions()),
		ttl:      ttl,
		logger:   opts.logger(),
		observer: opts.observer(),
		tracer:   opts.tracer(),
	}
}

// Load returns the positive cached count or recomputes and caches it.
func (a *Aggregate) Load(ctx context.Context, key string, compute func(ctx context.Context) (int64, error)) (int64, error) {
	ctx, span := a.tracer.Start(ctx, "readthrough.aggregate", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	n, found, err := a.counter.Get(ctx, key)
	if err != nil {
		a.observer.Observe("aggregate", cache.ResultWrongKind)
		a.logger.Error().Err(err).Str("key", key).Msg("counter key holds the wrong kind of value, recomputing")
	}
	if err == nil && found && n > 0 {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return n, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	n, cerr := compute(ctx)
	if cerr != nil {
		span.RecordError(cerr)
		return 0, cerr
	}

	if err == nil {
		if serr := a.counter.Set(ctx, key, n, a.ttl); serr != nil {
			a.logger.Warn().Err(serr).Str("key", key).Msg("failed to cache recomputed counter")
		}
	}
	return n, nil
}

// Adjust applies delta to a materialized counter. A missing counter is left
// missing so the next Load recomputes it.
func (a *Aggregate) Adjust(ctx context.Context, key string, delta int64) (int64, bool, error) {
	return a.counter.Adjust(ctx, key, delta)
}

// Forget removes the counter so the next Load recomputes it.
func (a *Aggregate) Forget(ctx context.Context, key string) error {
	_, err := a.counter.Delete(ctx, key)
	return err
}
