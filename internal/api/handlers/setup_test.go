package handlers_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/api/handlers"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/api/routes"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/infrastructure/docdb/memory"
	"github.com/wayfarer/content-service/internal/pkg/encryption"
	"github.com/wayfarer/content-service/internal/services/catalog"
	"github.com/wayfarer/content-service/internal/services/invalidation"
	"github.com/wayfarer/content-service/internal/services/media"
	"github.com/wayfarer/content-service/internal/services/posts"
	"github.com/wayfarer/content-service/tests/testutils"
)

const (
	base      = routes.BasePath
	mediaBase = "http://localhost:8080/media"
	channel   = "invalidations"
)

type env struct {
	router       *gin.Engine
	mr           *miniredis.Miniredis
	db           *memory.Client
	signer       *media.TokenSigner
	orchestrator *invalidation.Orchestrator
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr, store := testutils.NewMiniredisStore(t)
	db := memory.NewClient()

	orchestrator, err := invalidation.New(invalidation.Config{
		Store:           store,
		Channel:         channel,
		MaxAttempts:     2,
		InitialInterval: time.Millisecond,
		MaxElapsed:      100 * time.Millisecond,
		Workers:         1,
		QueueSize:       8,
	})
	require.NoError(t, err)
	orchestrator.Start()
	t.Cleanup(orchestrator.Stop)

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	sealer, err := encryption.NewAESSealer(key)
	require.NoError(t, err)
	signer := media.NewTokenSigner(sealer, mediaBase, 15*time.Minute)

	postService, err := posts.NewService(posts.Config{
		Store:       store,
		DB:          db,
		Invalidator: orchestrator,
		Signer:      signer,
	})
	require.NoError(t, err)

	catalogCfg := catalog.Config{Store: store, Invalidator: orchestrator}
	blogs, err := catalog.NewBlogService(db.Blogs(), catalogCfg)
	require.NoError(t, err)
	locations, err := catalog.NewService[models.Location, *models.Location]("location", db.Locations(), catalogCfg)
	require.NoError(t, err)
	reviews, err := catalog.NewService[models.Review, *models.Review]("review", db.Reviews(), catalogCfg)
	require.NoError(t, err)

	router := testutils.SetupTestRouter()
	routes.Setup(router, &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(store, db),
		PostsHandler:     handlers.NewPostsHandler(postService),
		BlogsHandler:     handlers.NewBlogsHandler(blogs),
		LocationsHandler: handlers.NewLocationsHandler(locations),
		ReviewsHandler:   handlers.NewReviewsHandler(reviews),
		MediaHandler:     handlers.NewMediaHandler(signer, ""),
		EventsHandler:    handlers.NewEventsHandler(orchestrator, 20*time.Millisecond),
		ViewerMiddleware: middleware.NewViewerMiddleware(),
	})

	return &env{router: router, mr: mr, db: db, signer: signer, orchestrator: orchestrator}
}

func as(viewer string) map[string]string {
	return map[string]string{middleware.ViewerHeader: viewer}
}
