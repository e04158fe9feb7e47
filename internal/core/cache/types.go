package cache

import (
	"errors"
	"time"
)

// Type represents the type of cache backend.
type Type string

const (
	// TypeRedis represents a Redis (single node or cluster) backend.
	TypeRedis Type = "redis"
)

// NoExpiration stores a key without a TTL.
const NoExpiration time.Duration = -1

var (
	// ErrWrongKind is returned when an operation targets a key holding a
	// different kind of value (hash operation on a scalar key, etc).
	ErrWrongKind = errors.New("cache: operation against a key holding the wrong kind of value")

	// ErrNilValue is returned by codecs asked to encode a null value.
	ErrNilValue = errors.New("cache: refusing to encode a nil value")

	// ErrNotInteger is returned when a counter operation hits a non-integer payload.
	ErrNotInteger = errors.New("cache: value is not an integer")

	// ErrUnavailable is returned when the backend is not reachable or the
	// circuit breaker is open.
	ErrUnavailable = errors.New("cache: backend unavailable")
)

// IsWrongKind reports whether err is a kind mismatch.
func IsWrongKind(err error) bool {
	return errors.Is(err, ErrWrongKind)
}

// Result labels reported to an Observer.
const (
	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultError     = "error"
	ResultDecode    = "decode_error"
	ResultWrongKind = "wrong_kind"
	ResultSkipped   = "skipped"
	ResultStored    = "stored"
)

// Observer receives one call per cache lookup or population.
type Observer interface {
	Observe(op, result string)
}

type nopObserver struct{}

func (nopObserver) Observe(string, string) {}
