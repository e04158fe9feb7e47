package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/pkg/metrics"
)

func TestCollector_ObserveCountsCacheResults(t *testing.T) {
	c := metrics.New()

	var observer cache.Observer = c
	observer.Observe("get", cache.ResultHit)
	observer.Observe("get", cache.ResultHit)
	observer.Observe("get", cache.ResultMiss)

	n, err := testutil.GatherAndCount(c.Registry(), "content_service_cache_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_InvalidationCounters(t *testing.T) {
	c := metrics.New()

	c.InvalidationStep("pattern", "ok")
	c.InvalidationStep("key", "failed")
	c.InvalidationRetry("succeeded")

	n, err := testutil.GatherAndCount(c.Registry(), "content_service_invalidation_steps_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := metrics.New()

	router := gin.New()
	router.Use(c.GinMiddleware())
	router.GET("/posts/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `content_service_http_requests_total{method="GET",route="/posts/:id",status="204"} 1`)
}
