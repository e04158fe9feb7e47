package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/api/middleware"
	"github.com/wayfarer/content-service/internal/api/sse"
	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/services/invalidation"
)

// EventSource delivers invalidation events published by every instance.
type EventSource interface {
	Subscribe(ctx context.Context, fn func(ctx context.Context, event invalidation.Event) error) (cache.Subscription, error)
}

const eventBuffer = 64

// EventsHandler streams invalidation events over Server-Sent Events.
type EventsHandler struct {
	source    EventSource
	heartbeat time.Duration
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(source EventSource, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &EventsHandler{source: source, heartbeat: heartbeat}
}

// Stream handles GET /events
// @Summary Stream invalidation events
// @Description Streams every cache invalidation applied by any instance as
// @Description Server-Sent Events until the client disconnects.
// @Tags Events
// @Produce text/event-stream
// @Success 200 {object} dto.InvalidationEventResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/content-service/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetRequestLogger(c)

	events := make(chan invalidation.Event, eventBuffer)
	sub, err := h.source.Subscribe(ctx, func(_ context.Context, event invalidation.Event) error {
		select {
		case events <- event:
		default:
			logger.Warn().Str("event_id", event.ID).Msg("event stream too slow, dropping invalidation event")
		}
		return nil
	})
	if err != nil {
		middleware.HandleError(c, errors.NewServiceUnavailableError("event stream", err))
		return
	}
	defer func() {
		unsubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := sub.Unsubscribe(unsubCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to close event subscription")
		}
	}()

	writer, err := sse.NewWriter(c.Writer)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("streaming not supported", err))
		return
	}
	if err := writer.WriteEvent(sse.EventReady, sub.Channel()); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writer.WriteHeartbeat(); err != nil {
				return
			}
		case event := <-events:
			if err := writer.WriteJSONWithID(sse.EventInvalidation, event.ID, toEventResponse(event)); err != nil {
				logger.Debug().Err(err).Msg("event stream closed")
				return
			}
		}
	}
}

func toEventResponse(e invalidation.Event) dto.InvalidationEventResponse {
	return dto.InvalidationEventResponse{
		ID:         e.ID,
		Origin:     e.Origin,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Keys:       e.Keys,
		Patterns:   e.Patterns,
		OccurredAt: e.OccurredAt,
	}
}
