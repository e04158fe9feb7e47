package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

const (
	requestIDKey = "request_id"
	loggerKey    = "logger"
)

// quietRoutes are polled by probes and scrapers; successful calls are
// logged at debug level only.
var quietRoutes = []string{"/metrics", "/health", "/ready", "/live"}

// LoggingMiddleware logs every request with its viewer and request ID.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware on the global logger.
func NewLoggingMiddleware() *LoggingMiddleware {
	return NewLoggingMiddlewareWithLogger(log.Logger)
}

// NewLoggingMiddlewareWithLogger creates a LoggingMiddleware on logger.
func NewLoggingMiddlewareWithLogger(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// RequestLogger assigns the request ID, echoing an inbound X-Request-ID,
// and stores a request-scoped logger for handlers and HandleError.
func (m *LoggingMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Set(loggerKey, m.logger.With().
			Str("request_id", requestID).
			Str("viewer_id", strings.TrimSpace(c.GetHeader(ViewerHeader))).
			Logger())

		c.Next()
	}
}

// Logger writes one line per completed request. Client errors log at warn
// and server errors at error.
func (m *LoggingMiddleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = m.logger.Error()
		case status >= 400:
			event = m.logger.Warn()
		case isQuiet(c.Request.URL.Path):
			event = m.logger.Debug()
		default:
			event = m.logger.Info()
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("viewer_id", GetViewerID(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("body_size", c.Writer.Size()).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}

func isQuiet(path string) bool {
	for _, suffix := range quietRoutes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// GetRequestLogger returns the request-scoped logger, or the global logger
// outside RequestLogger.
func GetRequestLogger(c *gin.Context) zerolog.Logger {
	if logger, ok := c.Get(loggerKey); ok {
		if l, ok := logger.(zerolog.Logger); ok {
			return l
		}
	}
	return log.Logger
}

// GetRequestID returns the request ID assigned by RequestLogger.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
