// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// # Notifier Contract

// Notifier is the write-side contract consumed by domain services.
//
// # Why an interface?
//
// Services only need "tell everyone this table changed". Defining the
// contract here lets service tests substitute a recording fake without
// touching Redis.
type Notifier interface {
	// Notify publishes a change notification. It must never fail the
	// originating operation: delivery is best-effort by design.
	Notify(ctx context.Context, event Event)
}

// # Redis Publisher

// Publisher broadcasts change notifications over Redis PubSub.
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPublisher constructs a [Publisher] on an existing Redis client.
func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

/*
Notify publishes the event on its table's channel.

Description: The write has already committed when Notify runs; a publish
failure therefore only degrades freshness for currently-connected clients,
never correctness. Failures are logged and swallowed.

Parameters:
  - ctx: context.Context
  - event: Event (table, op, entity id)
*/
func (publisher *Publisher) Notify(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		publisher.logger.Error("feed_event_marshal_failed", slog.Any("error", err))
		return
	}

	if err := publisher.client.Publish(ctx, event.Table.Channel(), payload).Err(); err != nil {
		publisher.logger.Warn("feed_publish_failed",
			slog.String("table", string(event.Table)),
			slog.String("entity_id", event.EntityID),
			slog.Any("error", err),
		)
		return
	}

	publisher.logger.Debug("feed_event_published",
		slog.String("table", string(event.Table)),
		slog.String("op", string(event.Op)),
		slog.String("entity_id", event.EntityID),
	)
}

// # No-op Notifier

// NopNotifier discards every event. Useful for tooling and tests that have
// no interest in the change feed.
type NopNotifier struct{}

// Notify implements [Notifier].
func (NopNotifier) Notify(context.Context, Event) {}
