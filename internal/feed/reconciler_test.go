// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package feed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosepilot/api/internal/feed"
)

// fakeStore is the shared canonical state two reconcilers converge on.
type fakeStore struct {
	mu    sync.Mutex
	rows  []string
	reads int
}

func (s *fakeStore) set(rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

func (s *fakeStore) fetch(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	copied := make([]string, len(s.rows))
	copy(copied, s.rows)
	return copied, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

/*
TestReconciler_Converges runs two independent reconcilers over one shared
store. After a mutation plus notification, both converge to the canonical
read without any payload interpretation.
*/
func TestReconciler_Converges(t *testing.T) {
	client := testClient(t)
	store := &fakeStore{}
	store.set("alpha")
	ctx := context.Background()

	publisher := feed.NewPublisher(client, testLogger())

	first := feed.NewReconciler(client, feed.TableBooks, store.fetch, testLogger())
	second := feed.NewReconciler(client, feed.TableBooks, store.fetch, testLogger())
	require.NoError(t, first.Start(ctx))
	require.NoError(t, second.Start(ctx))
	defer func() { _ = first.Close() }()
	defer func() { _ = second.Close() }()

	assert.Equal(t, []string{"alpha"}, first.Snapshot())
	assert.Equal(t, []string{"alpha"}, second.Snapshot())

	// Mutate, then notify — the order every service follows.
	store.set("alpha", "beta")
	publisher.Notify(ctx, feed.Event{Table: feed.TableBooks, Op: feed.OpInsert, EntityID: "beta"})

	for _, reconciler := range []*feed.Reconciler[string]{first, second} {
		require.Eventually(t, func() bool {
			snapshot := reconciler.Snapshot()
			return len(snapshot) == 2 && snapshot[1] == "beta"
		}, 2*time.Second, 10*time.Millisecond)
	}
}

/*
TestReconciler_DuplicateAndStaleEvents floods the channel with duplicated
and misleading events. Because every event triggers a full refetch, the
snapshot still equals the canonical state — events are never interpreted.
*/
func TestReconciler_DuplicateAndStaleEvents(t *testing.T) {
	client := testClient(t)
	store := &fakeStore{}
	store.set("only")
	ctx := context.Background()

	publisher := feed.NewPublisher(client, testLogger())

	reconciler := feed.NewReconciler(client, feed.TableBooks, store.fetch, testLogger())
	require.NoError(t, reconciler.Start(ctx))
	defer func() { _ = reconciler.Close() }()

	// Events that arrive late, twice, or describe rows that never existed.
	events := []feed.Event{
		{Table: feed.TableBooks, Op: feed.OpDelete, EntityID: "ghost"},
		{Table: feed.TableBooks, Op: feed.OpInsert, EntityID: "only"},
		{Table: feed.TableBooks, Op: feed.OpInsert, EntityID: "only"},
		{Table: feed.TableBooks, Op: feed.OpUpdate, EntityID: "stale"},
	}
	for _, event := range events {
		publisher.Notify(ctx, event)
	}

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.reads >= len(events)+1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"only"}, reconciler.Snapshot())
}

/*
TestReconciler_TableIsolation verifies a reconciler ignores events for
other tables: a chapters event must not trigger a books refetch.
*/
func TestReconciler_TableIsolation(t *testing.T) {
	client := testClient(t)
	store := &fakeStore{}
	ctx := context.Background()

	publisher := feed.NewPublisher(client, testLogger())

	reconciler := feed.NewReconciler(client, feed.TableBooks, store.fetch, testLogger())
	require.NoError(t, reconciler.Start(ctx))
	defer func() { _ = reconciler.Close() }()

	publisher.Notify(ctx, feed.Event{Table: feed.TableChapters, Op: feed.OpInsert, EntityID: "ch1"})
	publisher.Notify(ctx, feed.Event{Table: feed.TableBooks, Op: feed.OpInsert, EntityID: "b1"})

	// The books event lands; only then do we check the read count. One
	// initial fetch plus exactly one event-driven refetch.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.reads == 2
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 2, store.reads)
}

/*
TestReconciler_FailedRefetchKeepsSnapshot verifies the documented failure
mode: a failed refetch logs and keeps the previous snapshot, and the next
successful event recovers.
*/
func TestReconciler_FailedRefetchKeepsSnapshot(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	var mu sync.Mutex
	rows := []string{"stable"}
	failing := true
	calls := 0

	fetch := func(context.Context) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls > 1 && failing {
			return nil, errors.New("store unavailable")
		}
		copied := make([]string, len(rows))
		copy(copied, rows)
		return copied, nil
	}

	publisher := feed.NewPublisher(client, testLogger())
	reconciler := feed.NewReconciler(client, feed.TableVersions, fetch, testLogger())
	require.NoError(t, reconciler.Start(ctx))
	defer func() { _ = reconciler.Close() }()

	publisher.Notify(ctx, feed.Event{Table: feed.TableVersions, Op: feed.OpInsert, EntityID: "v1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// Stale but intact.
	assert.Equal(t, []string{"stable"}, reconciler.Snapshot())

	// Store recovers; the next event heals the snapshot.
	mu.Lock()
	rows = []string{"stable", "fresh"}
	failing = false
	mu.Unlock()

	publisher.Notify(ctx, feed.Event{Table: feed.TableVersions, Op: feed.OpInsert, EntityID: "v2"})

	require.Eventually(t, func() bool {
		return len(reconciler.Snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

/*
TestReconciler_CloseIdempotent verifies Close is safe to call repeatedly.
*/
func TestReconciler_CloseIdempotent(t *testing.T) {
	client := testClient(t)
	store := &fakeStore{}

	reconciler := feed.NewReconciler(client, feed.TableBooks, store.fetch, testLogger())
	require.NoError(t, reconciler.Start(context.Background()))

	require.NoError(t, reconciler.Close())
	require.NoError(t, reconciler.Close())
}

/*
TestPublisher_BestEffort verifies a publish failure never propagates: the
write has already committed when Notify runs.
*/
func TestPublisher_BestEffort(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Close()) // force every publish to fail

	publisher := feed.NewPublisher(client, testLogger())

	assert.NotPanics(t, func() {
		publisher.Notify(context.Background(), feed.Event{
			Table: feed.TableBooks, Op: feed.OpInsert, EntityID: "b1",
		})
	})
}
