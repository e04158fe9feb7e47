package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/wayfarer/content-service/internal/core/cache"
)

// subscription delivers messages of one channel to a handler on its own goroutine.
type subscription struct {
	channel string
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	err     error
}

// Subscribe registers handler for channel. The subscription is confirmed
// before Subscribe returns. A handler error or panic is logged and the
// subscription keeps delivering. Cancelling ctx closes the subscription.
func (c *Cache) Subscribe(ctx context.Context, channel string, handler cache.Handler) (cache.Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	ps := c.client.Subscribe(ctx, c.key(channel))

	confirmCtx, cancelConfirm := context.WithTimeout(ctx, c.opTimeout)
	defer cancelConfirm()
	if _, err := ps.Receive(confirmCtx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		channel: channel,
		pubsub:  ps,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.deliver(runCtx, sub, handler)

	c.logger.Debug().Str("channel", channel).Msg("subscribed")
	return sub, nil
}

func (c *Cache) deliver(ctx context.Context, sub *subscription, handler cache.Handler) {
	defer close(sub.done)

	messages := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = sub.close()
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.handle(ctx, sub.channel, msg, handler)
		}
	}
}

func (c *Cache) handle(ctx context.Context, channel string, msg *redis.Message, handler cache.Handler) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Interface("panic", r).
				Str("channel", channel).
				Msg("subscription handler panicked")
		}
	}()

	logical := strings.TrimPrefix(msg.Channel, c.key(""))
	if err := handler(ctx, cache.Message{Channel: logical, Payload: []byte(msg.Payload)}); err != nil {
		c.logger.Error().Err(err).Str("channel", channel).Msg("subscription handler failed")
	}
}

// Channel returns the logical channel name.
func (s *subscription) Channel() string {
	return s.channel
}

// close stops delivery and releases the connection once.
func (s *subscription) close() error {
	s.once.Do(func() {
		s.cancel()
		s.err = s.pubsub.Close()
	})
	return s.err
}

// Unsubscribe stops delivery and waits for the delivery goroutine to exit.
// It is safe to call after the subscribe context was cancelled.
func (s *subscription) Unsubscribe(ctx context.Context) error {
	err := s.close()

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err != nil {
		return fmt.Errorf("failed to unsubscribe from channel %s: %w", s.channel, err)
	}
	return nil
}
