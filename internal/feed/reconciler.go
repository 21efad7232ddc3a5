// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// FetchFunc loads the full canonical collection for a view.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Reconciler keeps a local snapshot of one table's list view consistent
// with the backing store via notify-then-refetch.
//
// # Consistency Model
//
// The reconciler never patches state from an event payload. Every event for
// its table triggers a full re-fetch, and the snapshot is replaced
// wholesale. This trades bandwidth for the invariant "the snapshot is
// always a recent full read of server state" and needs no sequence numbers
// or merge logic: duplicate, stale, or reordered events all converge to the
// same fresh read.
//
// # Lifecycle
//
// The reconciler is an explicit subscription handle owned by whoever
// created it: Start establishes the subscription, Close releases it. There
// is no ambient/global registration.
type Reconciler[T any] struct {
	client *redis.Client
	table  Table
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot []T

	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

// NewReconciler constructs a [Reconciler] for one table's list view.
func NewReconciler[T any](client *redis.Client, table Table, fetch FetchFunc[T], logger *slog.Logger) *Reconciler[T] {
	return &Reconciler[T]{
		client: client,
		table:  table,
		fetch:  fetch,
		logger: logger.With(slog.String("feed_table", string(table))),
		done:   make(chan struct{}),
	}
}

/*
Start performs the initial canonical fetch and begins listening for change
notifications on the table's channel.

Description: The subscription is confirmed before Start returns, so an event
published after Start cannot be missed. Re-subscription after a dropped
connection is handled by the Redis client library.

Parameters:
  - ctx: context.Context — cancel it to stop the listener (Close also stops it).

Returns:
  - error: initial fetch or subscribe failure. The reconciler is unusable
    on error and needs no Close.
*/
func (reconciler *Reconciler[T]) Start(ctx context.Context) error {
	initial, err := reconciler.fetch(ctx)
	if err != nil {
		return err
	}

	reconciler.mu.Lock()
	reconciler.snapshot = initial
	reconciler.mu.Unlock()

	pubsub := reconciler.client.Subscribe(ctx, reconciler.table.Channel())

	// Force the SUBSCRIBE handshake so no event published after Start
	// returns can slip past us.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	reconciler.pubsub = pubsub
	go reconciler.listen(ctx, pubsub.Channel())

	reconciler.logger.Info("reconciler_started", slog.Int("initial_items", len(initial)))
	return nil
}

// listen drains notifications until the channel closes or ctx is cancelled.
func (reconciler *Reconciler[T]) listen(ctx context.Context, events <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reconciler.done:
			return
		case message, ok := <-events:
			if !ok {
				return
			}
			reconciler.refetch(ctx, message.Payload)
		}
	}
}

// refetch replaces the snapshot with a fresh canonical read.
//
// A failed re-fetch keeps the previous snapshot: staleness until the next
// event is the documented failure mode, retrying is the list view's job.
func (reconciler *Reconciler[T]) refetch(ctx context.Context, payload string) {
	fresh, err := reconciler.fetch(ctx)
	if err != nil {
		reconciler.logger.Warn("reconciler_refetch_failed",
			slog.String("event", payload),
			slog.Any("error", err),
		)
		return
	}

	reconciler.mu.Lock()
	reconciler.snapshot = fresh
	reconciler.mu.Unlock()

	reconciler.logger.Debug("reconciler_snapshot_replaced", slog.Int("items", len(fresh)))
}

// Snapshot returns a copy of the current local collection.
func (reconciler *Reconciler[T]) Snapshot() []T {
	reconciler.mu.RLock()
	defer reconciler.mu.RUnlock()

	copied := make([]T, len(reconciler.snapshot))
	copy(copied, reconciler.snapshot)
	return copied
}

// Close tears down the subscription. Safe to call more than once.
func (reconciler *Reconciler[T]) Close() error {
	var err error
	reconciler.once.Do(func() {
		close(reconciler.done)
		if reconciler.pubsub != nil {
			err = reconciler.pubsub.Close()
		}
		reconciler.logger.Info("reconciler_closed")
	})
	return err
}
