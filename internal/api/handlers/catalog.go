package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/catalog"
)

// catalogService is the part of a catalog service the handlers use.
type catalogService[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, q models.ListQuery) (*models.Page[T], error)
	ListBy(ctx context.Context, field, value string, q models.ListQuery) (*models.Page[T], error)
	Create(ctx context.Context, viewer string, entity *T) (*T, error)
	Update(ctx context.Context, viewer, id string, entity *T) (*T, error)
	Delete(ctx context.Context, viewer, id string) error
}

// CatalogHandler serves CRUD endpoints for one catalog resource.
type CatalogHandler[T any] struct {
	service catalogService[T]
	param   string
	decode  func(c *gin.Context) (*T, error)
}

func newCatalogHandler[T any](service catalogService[T], param string, decode func(c *gin.Context) (*T, error)) *CatalogHandler[T] {
	return &CatalogHandler[T]{service: service, param: param, decode: decode}
}

// Get handles GET /{resource}/{id}.
func (h *CatalogHandler[T]) Get(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param(h.param))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

// List handles GET /{resource}.
func (h *CatalogHandler[T]) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListBy returns a handler listing the entities whose field equals the
// value of the path parameter param.
func (h *CatalogHandler[T]) ListBy(field, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindListQuery(c)
		if !ok {
			return
		}

		page, err := h.service.ListBy(c.Request.Context(), field, c.Param(param), q)
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// Create handles POST /{resource}.
func (h *CatalogHandler[T]) Create(c *gin.Context) {
	entity, err := h.decode(c)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.GetViewerID(c), entity)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /{resource}/{id}.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	entity, err := h.decode(c)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.GetViewerID(c), c.Param(h.param), entity)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /{resource}/{id}.
func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.GetViewerID(c), c.Param(h.param)); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BlogsHandler serves blog endpoints, including lookup by slug.
type BlogsHandler struct {
	*CatalogHandler[models.Blog]
	blogs *catalog.BlogService
}

// NewBlogsHandler creates a new BlogsHandler.
func NewBlogsHandler(blogs *catalog.BlogService) *BlogsHandler {
	return &BlogsHandler{
		CatalogHandler: newCatalogHandler[models.Blog](blogs, "blogId", func(c *gin.Context) (*models.Blog, error) {
			var req dto.BlogRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return req.ToModel(), nil
		}),
		blogs: blogs,
	}
}

// GetBySlug handles GET /blogs/slug/{slug}
// @Summary Get a blog by slug
// @Tags Blogs
// @Produce json
// @Param slug path string true "Blog slug"
// @Success 200 {object} models.Blog
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/blogs/slug/{slug} [get]
func (h *BlogsHandler) GetBySlug(c *gin.Context) {
	blog, err := h.blogs.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// LocationsHandler serves location endpoints.
type LocationsHandler struct {
	*CatalogHandler[models.Location]
}

// NewLocationsHandler creates a new LocationsHandler.
func NewLocationsHandler(locations *catalog.Service[models.Location, *models.Location]) *LocationsHandler {
	return &LocationsHandler{
		CatalogHandler: newCatalogHandler[models.Location](locations, "locationId", func(c *gin.Context) (*models.Location, error) {
			var req dto.LocationRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return req.ToModel(), nil
		}),
	}
}

// ReviewsHandler serves review endpoints.
type ReviewsHandler struct {
	*CatalogHandler[models.Review]
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(reviews *catalog.Service[models.Review, *models.Review]) *ReviewsHandler {
	return &ReviewsHandler{
		CatalogHandler: newCatalogHandler[models.Review](reviews, "reviewId", func(c *gin.Context) (*models.Review, error) {
			var req dto.ReviewRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return nil, err
			}
			return req.ToModel(), nil
		}),
	}
}

// ByLocation handles GET /locations/{locationId}/reviews
// @Summary List reviews of a location
// @Tags Reviews
// @Produce json
// @Param locationId path string true "Location ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param sort query string false "Sort order" Enums(recent, oldest)
// @Success 200 {object} models.Page[models.Review]
// @Router /api/v1/content-service/locations/{locationId}/reviews [get]
func (h *ReviewsHandler) ByLocation(c *gin.Context) {
	h.ListBy("locationId", "locationId")(c)
}
