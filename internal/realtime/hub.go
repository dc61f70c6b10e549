// Package realtime fans newly recorded clicks out to live watchers
// over Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

const channelPrefix = "realtime:link:"

// Hub publishes and subscribes to per-link click channels. Every
// process shares the same Redis, so subscribers see clicks recorded
// by any instance.
type Hub struct {
	client *redis.Client
	logger *slog.Logger
}

// NewHub creates a Hub on the given Redis client.
func NewHub(client *redis.Client, logger *slog.Logger) *Hub {
	return &Hub{
		client: client,
		logger: logger.With("component", "realtime"),
	}
}

// Channel returns the pub/sub channel name for a link.
func Channel(linkID string) string {
	return channelPrefix + linkID
}

// Publish sends a click to the link's channel. Dropped messages are
// fine: pub/sub is fire-and-forget and watchers reconnect.
func (h *Hub) Publish(ctx context.Context, linkID string, click *model.Click) error {
	payload, err := json.Marshal(click)
	if err != nil {
		return fmt.Errorf("marshal click: %w", err)
	}

	if err := h.client.Publish(ctx, Channel(linkID), payload).Err(); err != nil {
		return fmt.Errorf("publish click: %w", err)
	}

	return nil
}

// Subscription is a live feed of clicks for one link.
type Subscription struct {
	pubsub *redis.PubSub
	clicks chan *model.Click
}

// Clicks returns the channel of incoming clicks. It is closed when the
// subscription context ends or the connection drops.
func (s *Subscription) Clicks() <-chan *model.Click {
	return s.clicks
}

// Close tears down the subscription.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// Subscribe opens a live click feed for the link. The returned
// subscription delivers clicks until ctx is done or Close is called.
func (h *Hub) Subscribe(ctx context.Context, linkID string) (*Subscription, error) {
	pubsub := h.client.Subscribe(ctx, Channel(linkID))

	// Confirm the subscription before handing it out.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", Channel(linkID), err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		clicks: make(chan *model.Click, 16),
	}

	go func() {
		defer close(sub.clicks)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}

				var click model.Click
				if err := json.Unmarshal([]byte(msg.Payload), &click); err != nil {
					h.logger.Warn("dropping malformed realtime message",
						"channel", msg.Channel,
						"error", err,
					)
					continue
				}

				select {
				case sub.clicks <- &click:
				case <-ctx.Done():
					return
				default:
					// Slow consumer: drop rather than block the reader.
				}
			}
		}
	}()

	return sub, nil
}
