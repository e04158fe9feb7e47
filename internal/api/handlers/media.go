package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/services/media"
)

// MediaHandler resolves signed media URLs.
type MediaHandler struct {
	signer    media.Signer
	originURL string
}

// NewMediaHandler creates a new MediaHandler. When originURL is set,
// resolved references are redirected to originURL/ref.
func NewMediaHandler(signer media.Signer, originURL string) *MediaHandler {
	return &MediaHandler{
		signer:    signer,
		originURL: strings.TrimRight(originURL, "/"),
	}
}

// Resolve handles GET /media/{token}
// @Summary Resolve a signed media URL
// @Description Opens a token issued with a post and redirects to the media, or
// @Description returns the reference when no media origin is configured.
// @Tags Media
// @Produce json
// @Param token path string true "Signed token"
// @Success 200 {object} dto.MediaResponse
// @Success 302
// @Failure 403 {object} dto.ErrorResponse "Token expired"
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Router /media/{token} [get]
func (h *MediaHandler) Resolve(c *gin.Context) {
	ref, err := h.signer.Resolve(c.Param("token"))
	switch {
	case stderrors.Is(err, media.ErrExpired):
		middleware.HandleError(c, errors.NewForbiddenError("media url expired"))
		return
	case err != nil:
		middleware.HandleError(c, errors.NewNotFoundError("media", c.Param("token")))
		return
	}

	if h.originURL == "" {
		c.JSON(http.StatusOK, dto.MediaResponse{Ref: ref})
		return
	}
	target := h.originURL + "/" + strings.TrimLeft(ref, "/")
	c.Header("Cache-Control", "private, no-store")
	c.Redirect(http.StatusFound, target)
}
