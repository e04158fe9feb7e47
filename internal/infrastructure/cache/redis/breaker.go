package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/wayfarer/content-service/internal/core/cache"
)

// BreakerConfig holds circuit breaker configuration for backend calls.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      20,
	}
}

func newBreaker(cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	defaults := DefaultBreakerConfig()
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaults.MinRequests
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cache",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
		IsSuccessful: isBackendHealthy,
	})
}

// isBackendHealthy decides whether an error says anything about backend
// health. Kind mismatches and caller cancellation do not.
func isBackendHealthy(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
		return true
	}
	return isWrongType(err) || isNotInteger(err)
}

// do runs one backend round trip under the op timeout and the breaker.
// Partial results returned alongside an error are preserved.
func do[T any](c *Cache, ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	v, _ := res.(T)
	if err != nil {
		return v, translate(op, err)
	}
	return v, nil
}

// translate maps backend errors onto the cache error taxonomy.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s: %v", cache.ErrUnavailable, op, err)
	case isWrongType(err):
		return fmt.Errorf("%w: %s: %v", cache.ErrWrongKind, op, err)
	case isNotInteger(err):
		return fmt.Errorf("%w: %s: %v", cache.ErrNotInteger, op, err)
	default:
		return fmt.Errorf("redis %s: %w", op, err)
	}
}

func isWrongType(err error) bool {
	return strings.Contains(err.Error(), "WRONGTYPE")
}

func isNotInteger(err error) bool {
	return strings.Contains(err.Error(), "not an integer")
}
