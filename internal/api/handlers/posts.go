package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/posts"
)

// PostsHandler handles post, comment, like and follow endpoints.
type PostsHandler struct {
	service *posts.Service
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(service *posts.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

// ListPosts handles GET /posts
// @Summary List public posts
// @Description Returns one page of public posts with their aggregates
// @Tags Posts
// @Produce json
// @Param X-User-ID header string false "Viewer ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param sort query string false "Sort order" Enums(recent, oldest)
// @Success 200 {object} dto.PostPageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts [get]
func (h *PostsHandler) ListPosts(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.service.List(c.Request.Context(), middleware.GetViewerID(c), q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost handles GET /posts/{postId}
// @Summary Get a post
// @Description Returns a post with its aggregates and records the view
// @Tags Posts
// @Produce json
// @Param X-User-ID header string false "Viewer ID"
// @Param postId path string true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId} [get]
func (h *PostsHandler) GetPost(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Tags Posts
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} models.PostView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts [post]
func (h *PostsHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	view, err := h.service.Create(c.Request.Context(), middleware.GetViewerID(c), req.ToInput())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdatePost handles PATCH /posts/{postId}
// @Summary Update a post
// @Description Changes the given fields of a post owned by the viewer
// @Tags Posts
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Param request body dto.UpdatePostRequest true "Fields to change"
// @Success 200 {object} models.PostView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId} [patch]
func (h *PostsHandler) UpdatePost(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	view, err := h.service.Update(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId"), req.ToInput())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeletePost handles DELETE /posts/{postId}
// @Summary Delete a post
// @Description Deletes a post owned by the viewer together with its likes and comments
// @Tags Posts
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId} [delete]
func (h *PostsHandler) DeletePost(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost handles POST /posts/{postId}/like
// @Summary Like a post
// @Tags Likes
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId}/like [post]
func (h *PostsHandler) LikePost(c *gin.Context) {
	postID := c.Param("postId")
	state, err := h.service.Like(c.Request.Context(), middleware.GetViewerID(c), postID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{PostID: postID, Liked: state.Liked, LikeCount: state.LikeCount})
}

// UnlikePost handles DELETE /posts/{postId}/like
// @Summary Unlike a post
// @Tags Likes
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId}/like [delete]
func (h *PostsHandler) UnlikePost(c *gin.Context) {
	postID := c.Param("postId")
	state, err := h.service.Unlike(c.Request.Context(), middleware.GetViewerID(c), postID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{PostID: postID, Liked: state.Liked, LikeCount: state.LikeCount})
}

// ListComments handles GET /posts/{postId}/comments
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param X-User-ID header string false "Viewer ID"
// @Param postId path string true "Post ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param sort query string false "Sort order" Enums(recent, oldest)
// @Success 200 {object} dto.CommentPageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId}/comments [get]
func (h *PostsHandler) ListComments(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.service.ListComments(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId"), q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// AddComment handles POST /posts/{postId}/comments
// @Summary Comment on a post
// @Tags Comments
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId}/comments [post]
func (h *PostsHandler) AddComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId"), req.Body)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /posts/{postId}/comments/{commentId}
// @Summary Delete a comment
// @Description The comment's author and the post's owner may delete it
// @Tags Comments
// @Param X-User-ID header string true "Viewer ID"
// @Param postId path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/content-service/posts/{postId}/comments/{commentId} [delete]
func (h *PostsHandler) DeleteComment(c *gin.Context) {
	err := h.service.DeleteComment(c.Request.Context(), middleware.GetViewerID(c), c.Param("postId"), c.Param("commentId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserPosts handles GET /users/{userId}/posts
// @Summary List a user's posts
// @Description Returns the user's posts the viewer may see
// @Tags Posts
// @Produce json
// @Param X-User-ID header string false "Viewer ID"
// @Param userId path string true "Owner ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param sort query string false "Sort order" Enums(recent, oldest)
// @Success 200 {object} dto.PostPageResponse
// @Router /api/v1/content-service/users/{userId}/posts [get]
func (h *PostsHandler) ListUserPosts(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.service.ListByOwner(c.Request.Context(), middleware.GetViewerID(c), c.Param("userId"), q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Follow handles POST /users/{userId}/follow
// @Summary Follow a user
// @Tags Follows
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param userId path string true "User to follow"
// @Success 200 {object} dto.FollowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/content-service/users/{userId}/follow [post]
func (h *PostsHandler) Follow(c *gin.Context) {
	followee := c.Param("userId")
	if err := h.service.Follow(c.Request.Context(), middleware.GetViewerID(c), followee); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FollowResponse{FolloweeID: followee, Following: true})
}

// Unfollow handles DELETE /users/{userId}/follow
// @Summary Unfollow a user
// @Tags Follows
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param userId path string true "User to unfollow"
// @Success 200 {object} dto.FollowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/content-service/users/{userId}/follow [delete]
func (h *PostsHandler) Unfollow(c *gin.Context) {
	followee := c.Param("userId")
	if err := h.service.Unfollow(c.Request.Context(), middleware.GetViewerID(c), followee); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FollowResponse{FolloweeID: followee, Following: false})
}

// Feed handles GET /me/feed
// @Summary Get the viewer's feed
// @Description Returns posts by the users the viewer follows
// @Tags Posts
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param sort query string false "Sort order" Enums(recent, oldest)
// @Success 200 {object} dto.PostPageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/content-service/me/feed [get]
func (h *PostsHandler) Feed(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	page, err := h.service.Feed(c.Request.Context(), middleware.GetViewerID(c), q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// RecentlyViewed handles GET /me/recent
// @Summary Get recently viewed posts
// @Tags Posts
// @Produce json
// @Param X-User-ID header string true "Viewer ID"
// @Param limit query int false "Maximum number of posts" minimum(1)
// @Success 200 {object} dto.RecentlyViewedResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/content-service/me/recent [get]
func (h *PostsHandler) RecentlyViewed(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			middleware.HandleError(c, errors.NewValidationError("invalid limit", raw))
			return
		}
		limit = n
	}

	views, err := h.service.RecentlyViewed(c.Request.Context(), middleware.GetViewerID(c), limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RecentlyViewedResponse{Posts: views})
}

// bindListQuery parses paging parameters. On failure it writes the error
// response and returns false.
func bindListQuery(c *gin.Context) (models.ListQuery, bool) {
	var params dto.ListQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid query parameters", err.Error()))
		return models.ListQuery{}, false
	}
	return params.ToQuery(), true
}
