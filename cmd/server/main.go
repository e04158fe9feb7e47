// Package main is the entry point for the Content Service.
// @title Content Service API
// @version 1.0
// @description Posts, comments, likes, follows and catalog content served through a read-through Redis cache.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	_ "github.com/wayfarer/content-service/docs"
	"github.com/wayfarer/content-service/internal/api/handlers"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/api/routes"
	"github.com/wayfarer/content-service/internal/config"
	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
	rediscache "github.com/wayfarer/content-service/internal/infrastructure/cache/redis"
	"github.com/wayfarer/content-service/internal/infrastructure/docdb/memory"
	"github.com/wayfarer/content-service/internal/infrastructure/docdb/mongodb"
	"github.com/wayfarer/content-service/internal/pkg/encryption"
	"github.com/wayfarer/content-service/internal/pkg/logging"
	"github.com/wayfarer/content-service/internal/pkg/metrics"
	"github.com/wayfarer/content-service/internal/services/catalog"
	"github.com/wayfarer/content-service/internal/services/invalidation"
	"github.com/wayfarer/content-service/internal/services/media"
	"github.com/wayfarer/content-service/internal/services/posts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.Setup(logging.Config{Level: "info"})
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	collector := metrics.New()
	ctx := context.Background()

	// Initialize cache store using factory pattern
	store, err := createCacheStore(cfg.Cache, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache store")
	}
	defer store.Close()

	// Initialize document db client using factory pattern
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// Ensure database indexes
	if indexed, ok := docDBClient.(interface{ EnsureIndexes(context.Context) error }); ok {
		if err := indexed.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to ensure indexes")
		}
	}

	signer, err := createSigner(cfg.Media, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize media signer")
	}

	orchestrator, err := invalidation.New(invalidation.Config{
		Store:           store,
		Channel:         cfg.Invalidation.Channel,
		MaxAttempts:     cfg.Invalidation.MaxAttempts,
		InitialInterval: cfg.Invalidation.InitialInterval,
		MaxElapsed:      cfg.Invalidation.MaxElapsed,
		Workers:         cfg.Invalidation.Workers,
		QueueSize:       cfg.Invalidation.QueueSize,
		Recorder:        collector,
		Logger:          &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize invalidation orchestrator")
	}
	orchestrator.Start()
	defer orchestrator.Stop()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Setup router
	router, err := setupRouter(cfg, logger, collector, store, docDBClient, orchestrator, signer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up router")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

// createCacheStore creates a cache store based on the configuration.
func createCacheStore(cfg config.CacheConfig, logger *zerolog.Logger) (cache.Store, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			DB:         cfg.DB,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
			OpTimeout:  cfg.OpTimeout,
			PoolSize:   cfg.PoolSize,
			ScanCount:  cfg.ScanCount,
			Breaker: rediscache.BreakerConfig{
				MaxRequests:      cfg.Breaker.MaxRequests,
				Interval:         cfg.Breaker.Interval,
				Timeout:          cfg.Breaker.Timeout,
				FailureThreshold: cfg.Breaker.FailureThreshold,
				MinRequests:      cfg.Breaker.MinRequests,
			},
			Logger: logger,
		})
	default:
		return nil, errors.New("unsupported cache type: " + cfg.Type)
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	case docdb.TypeMemory:
		return memory.NewClient(), nil
	default:
		return nil, errors.New("unsupported docdb type: " + cfg.Type)
	}
}

// createSigner creates the media URL signer. Without a configured key a
// random one is generated, so URLs do not survive a restart.
func createSigner(cfg config.MediaConfig, logger zerolog.Logger) (media.Signer, error) {
	key := cfg.SigningKey
	if key == "" {
		logger.Warn().Msg("MEDIA_SIGNING_KEY not set, using an ephemeral key")
		generated, err := encryption.GenerateKey()
		if err != nil {
			return nil, err
		}
		key = generated
	}

	sealer, err := encryption.NewAESSealer(key)
	if err != nil {
		return nil, err
	}
	return media.NewTokenSigner(sealer, cfg.BaseURL, cfg.URLTTL), nil
}

// setupRouter creates the services and configures the Gin router.
func setupRouter(
	cfg *config.Config,
	logger zerolog.Logger,
	collector *metrics.Collector,
	store cache.Store,
	docDBClient docdb.Client,
	orchestrator *invalidation.Orchestrator,
	signer media.Signer,
) (*gin.Engine, error) {
	postService, err := posts.NewService(posts.Config{
		Store:          store,
		DB:             docDBClient,
		Invalidator:    orchestrator,
		Signer:         signer,
		EntityTTL:      cfg.Content.EntityTTL,
		ListingTTL:     cfg.Content.ListingTTL,
		CounterTTL:     cfg.Content.CounterTTL,
		FlagTTL:        cfg.Content.FlagTTL,
		ListingBucket:  cfg.Content.ListingBucket,
		RecentlyViewed: cfg.Content.RecentlyViewed,
		Observer:       collector,
		Logger:         &logger,
	})
	if err != nil {
		return nil, err
	}

	catalogCfg := catalog.Config{
		Store:         store,
		Invalidator:   orchestrator,
		EntityTTL:     cfg.Content.EntityTTL,
		ListingTTL:    cfg.Content.ListingTTL,
		ListingBucket: cfg.Content.ListingBucket,
		Observer:      collector,
		Logger:        &logger,
	}
	blogService, err := catalog.NewBlogService(docDBClient.Blogs(), catalogCfg)
	if err != nil {
		return nil, err
	}
	locationService, err := catalog.NewService[models.Location, *models.Location]("location", docDBClient.Locations(), catalogCfg)
	if err != nil {
		return nil, err
	}
	reviewService, err := catalog.NewService[models.Review, *models.Review]("review", docDBClient.Reviews(), catalogCfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	// Create middleware
	loggingMw := middleware.NewLoggingMiddlewareWithLogger(logger)
	errorMw := middleware.NewErrorMiddleware()
	corsCfg := middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)

	// Setup routes
	routesCfg := &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(store, docDBClient),
		PostsHandler:     handlers.NewPostsHandler(postService),
		BlogsHandler:     handlers.NewBlogsHandler(blogService),
		LocationsHandler: handlers.NewLocationsHandler(locationService),
		ReviewsHandler:   handlers.NewReviewsHandler(reviewService),
		MediaHandler:     handlers.NewMediaHandler(signer, cfg.Media.OriginURL),
		EventsHandler:    handlers.NewEventsHandler(orchestrator, 0),
		ViewerMiddleware: middleware.NewViewerMiddleware(),
		MetricsHandler:   collector.Handler(),
		EnableDocs:       cfg.Server.GinMode != gin.ReleaseMode,
	}

	middleware.SetupCORSRoutes(router, corsCfg)
	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw,
		middleware.NewCORSMiddleware(corsCfg),
		collector.GinMiddleware(),
	)

	return router, nil
}
