// Package middleware provides the gin middleware shared by every route:
// request logging, panic recovery, error rendering, CORS and viewer identity.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
)

// ErrorMiddleware recovers panics raised by handlers.
type ErrorMiddleware struct{}

// NewErrorMiddleware creates a new ErrorMiddleware.
func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

// Recovery turns a handler panic into a 500 response and logs it with the
// request's logger.
func (m *ErrorMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger := GetRequestLogger(c)
				logger.Error().
					Interface("panic", recovered).
					Str("route", c.FullPath()).
					Msg("handler panicked")
				abortInternal(c)
			}
		}()
		c.Next()
	}
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HandleError renders err and aborts the request. Domain errors keep their
// code and status; 5xx details stay in the log, not the body.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	domainErr, ok := domainerrors.GetDomainError(err)
	if !ok {
		logger := GetRequestLogger(c)
		logger.Error().Err(err).Str("route", c.FullPath()).Msg("unhandled error")
		abortInternal(c)
		return
	}

	body := ErrorResponse{Code: domainErr.Code, Message: domainErr.Message, Details: domainErr.Details}
	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		logger := GetRequestLogger(c)
		logger.Error().Err(domainErr.Err).Str("code", domainErr.Code).Msg(domainErr.Message)
		body.Details = ""
	}
	c.AbortWithStatusJSON(domainErr.HTTPStatus, body)
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:    domainerrors.ErrCodeInternal,
		Message: "internal server error",
	})
}

// NotFound renders unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    domainerrors.ErrCodeNotFound,
			Message: "route not found",
			Details: c.Request.URL.Path,
		})
	}
}

