package readthrough

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wayfarer/content-service/internal/core/cache"
)

// Flag loads per-pair booleans such as "liked by me". Both answers are
// cached, so a negative answer does not cost a source lookup on every read.
type Flag struct {
	values *cache.Typed[bool]
	ttl    time.Duration
	logger zerolog.Logger
}

// NewFlag creates a flag loader caching answers under ttl.
func NewFlag(store cache.Store, ttl time.Duration, opts Options) *Flag {
	return &Flag{
		values: cache.NewTyped[bool](store, cache.BoolCodec{}, opts.cacheOptions()),
		ttl:    ttl,
		logger: opts.logger(),
	}
}

// Load returns the cached answer or asks check and caches its answer.
func (f *Flag) Load(ctx context.Context, key string, check func(ctx context.Context) (bool, error)) (bool, error) {
	v, found, err := f.values.Get(ctx, key)
	if err != nil {
		f.logger.Error().Err(err).Str("key", key).Msg("flag key holds the wrong kind of value, checking source")
	}
	if err == nil && found {
		return v, nil
	}

	v, cerr := check(ctx)
	if cerr != nil {
		return false, cerr
	}

	if err == nil {
		if serr := f.values.Set(ctx, key, v, f.ttl); serr != nil {
			f.logger.Warn().Err(serr).Str("key", key).Msg("failed to cache flag")
		}
	}
	return v, nil
}

// Store overwrites the flag with the authoritative answer. The error is
// returned so callers relying on the flag learn it was not written.
func (f *Flag) Store(ctx context.Context, key string, v bool) error {
	return f.values.Set(ctx, key, v, f.ttl)
}
