package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
)

// ViewerHeader carries the ID of the user the request acts for. It is set by
// the gateway in front of the service after authentication.
const ViewerHeader = "X-User-ID"

const viewerKey = "viewer_id"

// ViewerMiddleware extracts the viewer identity from the request.
type ViewerMiddleware struct{}

// NewViewerMiddleware creates a new ViewerMiddleware.
func NewViewerMiddleware() *ViewerMiddleware {
	return &ViewerMiddleware{}
}

// ExtractViewer returns a gin middleware that stores the viewer ID, if any,
// in the gin context. Anonymous requests pass through. IDs that cannot take
// part in like and follow identifiers are rejected.
func (m *ViewerMiddleware) ExtractViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerID := strings.TrimSpace(c.GetHeader(ViewerHeader)); viewerID != "" {
			if !models.ValidUserID(viewerID) {
				HandleError(c, domainerrors.NewValidationError("invalid "+ViewerHeader+" header", "must not contain "+models.IDSeparator))
				return
			}
			c.Set(viewerKey, viewerID)
		}
		c.Next()
	}
}

// RequireViewer returns a gin middleware that rejects anonymous requests.
func (m *ViewerMiddleware) RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetViewerID(c) == "" {
			HandleError(c, domainerrors.NewUnauthorizedError("missing "+ViewerHeader+" header"))
			return
		}
		c.Next()
	}
}

// GetViewerID retrieves the viewer ID from the gin context. Returns an empty
// string for anonymous requests.
func GetViewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}
