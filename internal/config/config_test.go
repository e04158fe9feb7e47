package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDRS", "")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"cache.internal:6380"}, cfg.Cache.Addrs)
	assert.Equal(t, "content", cfg.Cache.Prefix)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.OpTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "invalidations", cfg.Invalidation.Channel)
}

func TestLoad_ClusterAddresses(t *testing.T) {
	t.Setenv("REDIS_ADDRS", "r1:6379, r2:6379 ,r3:6379")
	t.Setenv("CACHE_DEFAULT_TTL_MINUTES", "5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"r1:6379", "r2:6379", "r3:6379"}, cfg.Cache.Addrs)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("CACHE_INSTANCE_PREFIX", "bad*prefix")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortSigningKey(t *testing.T) {
	t.Setenv("MEDIA_SIGNING_KEY", "c2hvcnQ=")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_MemoryDocDBNeedsNoURI(t *testing.T) {
	t.Setenv("DOCDB_TYPE", "memory")
	t.Setenv("MONGODB_URI", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DocDB.Type)
}
