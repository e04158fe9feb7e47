package testutils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	rediscache "github.com/wayfarer/content-service/internal/infrastructure/cache/redis"
)

// NewMiniredisStore starts a miniredis server and a cache connected to it.
// Both are closed when the test ends.
func NewMiniredisStore(t *testing.T) (*miniredis.Miniredis, *rediscache.Cache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := rediscache.NewCache(rediscache.Config{
		Addrs:      []string{mr.Addr()},
		DefaultTTL: time.Hour,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
		mr.Close()
	})
	return mr, store
}
