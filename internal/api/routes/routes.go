// Package routes defines the HTTP routes for the content service.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wayfarer/content-service/internal/api/handlers"
	"github.com/wayfarer/content-service/internal/api/middleware"
)

// BasePath is the prefix of every API route.
const BasePath = "/api/v1/content-service"

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	PostsHandler     *handlers.PostsHandler
	BlogsHandler     *handlers.BlogsHandler
	LocationsHandler *handlers.LocationsHandler
	ReviewsHandler   *handlers.ReviewsHandler
	MediaHandler     *handlers.MediaHandler
	EventsHandler    *handlers.EventsHandler
	ViewerMiddleware *middleware.ViewerMiddleware

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// EnableDocs mounts the Swagger UI under /docs.
	EnableDocs bool
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Signed media URLs point here directly
	r.GET("/media/:token", cfg.MediaHandler.Resolve)

	v1 := r.Group(BasePath)
	{
		// Health check routes
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		v1.GET("/events", cfg.EventsHandler.Stream)

		// Every other route knows its viewer if the caller sent one
		api := v1.Group("")
		api.Use(cfg.ViewerMiddleware.ExtractViewer())
		requireViewer := cfg.ViewerMiddleware.RequireViewer()

		// --- Posts ---
		posts := api.Group("/posts")
		{
			posts.GET("", cfg.PostsHandler.ListPosts)
			posts.POST("", requireViewer, cfg.PostsHandler.CreatePost)
			posts.GET("/:postId", cfg.PostsHandler.GetPost)
			posts.PATCH("/:postId", requireViewer, cfg.PostsHandler.UpdatePost)
			posts.DELETE("/:postId", requireViewer, cfg.PostsHandler.DeletePost)

			posts.POST("/:postId/like", requireViewer, cfg.PostsHandler.LikePost)
			posts.DELETE("/:postId/like", requireViewer, cfg.PostsHandler.UnlikePost)

			posts.GET("/:postId/comments", cfg.PostsHandler.ListComments)
			posts.POST("/:postId/comments", requireViewer, cfg.PostsHandler.AddComment)
			posts.DELETE("/:postId/comments/:commentId", requireViewer, cfg.PostsHandler.DeleteComment)
		}

		// --- Users ---
		users := api.Group("/users/:userId")
		{
			users.GET("/posts", cfg.PostsHandler.ListUserPosts)
			users.POST("/follow", requireViewer, cfg.PostsHandler.Follow)
			users.DELETE("/follow", requireViewer, cfg.PostsHandler.Unfollow)
		}

		// --- Viewer ---
		me := api.Group("/me", requireViewer)
		{
			me.GET("/feed", cfg.PostsHandler.Feed)
			me.GET("/recent", cfg.PostsHandler.RecentlyViewed)
		}

		// --- Blogs ---
		blogs := api.Group("/blogs")
		{
			blogs.GET("", cfg.BlogsHandler.List)
			blogs.POST("", requireViewer, cfg.BlogsHandler.Create)
			blogs.GET("/slug/:slug", cfg.BlogsHandler.GetBySlug)
			blogs.GET("/:blogId", cfg.BlogsHandler.Get)
			blogs.PUT("/:blogId", requireViewer, cfg.BlogsHandler.Update)
			blogs.DELETE("/:blogId", requireViewer, cfg.BlogsHandler.Delete)
		}

		// --- Locations and reviews ---
		locations := api.Group("/locations")
		{
			locations.GET("", cfg.LocationsHandler.List)
			locations.POST("", requireViewer, cfg.LocationsHandler.Create)
			locations.GET("/:locationId", cfg.LocationsHandler.Get)
			locations.PUT("/:locationId", requireViewer, cfg.LocationsHandler.Update)
			locations.DELETE("/:locationId", requireViewer, cfg.LocationsHandler.Delete)
			locations.GET("/:locationId/reviews", cfg.ReviewsHandler.ByLocation)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("", cfg.ReviewsHandler.List)
			reviews.POST("", requireViewer, cfg.ReviewsHandler.Create)
			reviews.GET("/:reviewId", cfg.ReviewsHandler.Get)
			reviews.PUT("/:reviewId", requireViewer, cfg.ReviewsHandler.Update)
			reviews.DELETE("/:reviewId", requireViewer, cfg.ReviewsHandler.Delete)
		}
	}

	r.NoRoute(middleware.NotFound())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, extra ...gin.HandlerFunc) {
	// Apply global middleware
	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(extra...)

	// Setup routes
	Setup(r, cfg)
}
