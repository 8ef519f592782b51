// Package eventbus wraps the in-process watermill pub/sub used to fan
// platform events into the module handlers.
//
// The bot is a single process, so the gochannel transport is enough; the
// router keeps the handler surface identical to a brokered deployment.
package eventbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/focus-guild/pomo-bot/app/events"
)

// EventBus bundles the pub/sub and the handler router.
type EventBus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

// New constructs the bus and router with retry + recoverer middleware.
func New(logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
	)

	return &EventBus{pubsub: pubsub, router: router, logger: wmLogger}, nil
}

// Publish marshals the payload and publishes it on the topic.
func (b *EventBus) Publish(topic string, payload interface{}) error {
	msg, err := events.NewMessage(payload)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(topic, msg)
}

// AddHandler registers a no-publisher handler for a topic.
func (b *EventBus) AddHandler(name, topic string, fn message.NoPublishHandlerFunc) {
	b.router.AddNoPublisherHandler(name, topic, b.pubsub, fn)
}

// Run starts the router and blocks until the context is cancelled.
func (b *EventBus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running returns a channel closed once the router is running.
func (b *EventBus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close shuts down the router and pub/sub.
func (b *EventBus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubsub.Close()
}
