// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package version_test

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/chapter"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/version"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Test Doubles

// gateGuard enforces the editability gate from a per-book status table.
type gateGuard struct {
	statuses map[string]book.Status
}

func (g *gateGuard) AuthorizeRead(_ context.Context, bookID, _ string) (*book.Book, error) {
	status, ok := g.statuses[bookID]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	return &book.Book{ID: bookID, Status: status}, nil
}

func (g *gateGuard) AuthorizeEdit(ctx context.Context, bookID, actorID string) (*book.Book, error) {
	b, err := g.AuthorizeRead(ctx, bookID, actorID)
	if err != nil {
		return nil, err
	}
	if !b.Status.Editable() {
		return nil, book.ErrNotEditable(b.Status)
	}
	return b, nil
}

// memoryChapters resolves chapter IDs to their owning book.
type memoryChapters struct {
	chapters map[string]*chapter.Chapter
}

func (m *memoryChapters) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	c, ok := m.chapters[id]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	clone := *c
	return &clone, nil
}

// memoryRepository is an append-only in-memory [version.Repository]. Seq
// is assigned monotonically, matching the bigserial behavior, and ordering
// is (created_at, seq) descending.
type memoryRepository struct {
	mu       sync.Mutex
	versions []*version.Version
	nextSeq  int64
}

func (m *memoryRepository) ListByChapter(_ context.Context, chapterID string) ([]*version.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []*version.Version
	for _, v := range m.versions {
		if v.ChapterID == chapterID {
			clone := *v
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Seq > list[j].Seq
	})
	return list, nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*version.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.versions {
		if v.ID == id {
			clone := *v
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Version")
}

func (m *memoryRepository) Newest(ctx context.Context, chapterID string) (*version.Version, error) {
	list, err := m.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("Version")
	}
	return list[0], nil
}

func (m *memoryRepository) Create(_ context.Context, v *version.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	v.Seq = m.nextSeq
	// A fixed timestamp forces the seq tiebreak, the worst case for
	// ordering correctness.
	v.CreatedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	clone := *v
	m.versions = append(m.versions, &clone)
	return nil
}

// nopNotifier satisfies feed.Notifier.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, feed.Event) {}

// # Fixture

type fixture struct {
	repo      *memoryRepository
	service   *version.Service
	chapterID string
	actor     string
}

func newFixture(status book.Status) *fixture {
	bookID := uuid.New()
	chapterID := uuid.New()

	chapters := &memoryChapters{chapters: map[string]*chapter.Chapter{
		chapterID: {ID: chapterID, BookID: bookID, Kind: chapter.KindChapter},
	}}
	guard := &gateGuard{statuses: map[string]book.Status{bookID: status}}
	repo := &memoryRepository{}

	return &fixture{
		repo:      repo,
		service:   version.NewService(repo, chapters, guard, nopNotifier{}),
		chapterID: chapterID,
		actor:     uuid.New(),
	}
}

// # History Tests

/*
TestService_CurrentContent_Empty verifies a brand-new chapter reads as an
empty editor, not an error.
*/
func TestService_CurrentContent_Empty(t *testing.T) {
	f := newFixture(book.StatusDraft)

	content, err := f.service.CurrentContent(context.Background(), f.chapterID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

/*
TestService_CreateVersion_Appends verifies each save appends, never
overwrites: after saves A then B, the history holds both and B is current.
*/
func TestService_CreateVersion_Appends(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	_, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, "draft one")
	require.NoError(t, err)
	_, err = f.service.CreateVersion(ctx, f.chapterID, f.actor, "draft two")
	require.NoError(t, err)

	content, err := f.service.CurrentContent(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "draft two", content)

	history, err := f.service.ListVersions(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "draft two", history[0].Content)
	assert.Equal(t, "draft one", history[1].Content)
}

/*
TestService_ListVersions_Decoration verifies the derived listing fields:
element 0 is current, labels count down so the oldest reads "Version 1".
*/
func TestService_ListVersions_Decoration(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		_, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, content)
		require.NoError(t, err)
	}

	history, err := f.service.ListVersions(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.True(t, history[0].Current)
	assert.False(t, history[1].Current)
	assert.False(t, history[2].Current)

	assert.Equal(t, "Version 3", history[0].Label)
	assert.Equal(t, "Version 2", history[1].Label)
	assert.Equal(t, "Version 1", history[2].Label)
}

/*
TestService_RestoreVersion appends a copy of the target's content: history
grows from 3 to 4, the restored content becomes current, and the target
version itself is untouched.
*/
func TestService_RestoreVersion(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	var ids []string
	for _, content := range []string{"first", "second", "third"} {
		v, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, content)
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}

	restored, err := f.service.RestoreVersion(ctx, f.chapterID, ids[0], f.actor)
	require.NoError(t, err)
	assert.Equal(t, "first", restored.Content)
	assert.NotEqual(t, ids[0], restored.ID)

	history, err := f.service.ListVersions(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, restored.ID, history[0].ID)
	assert.True(t, history[0].Current)

	// The target survives in place with its content intact.
	target, err := f.repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "first", target.Content)

	content, err := f.service.CurrentContent(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "first", content)
}

/*
TestService_RestoreVersion_Current rejects restoring the version that is
already current.
*/
func TestService_RestoreVersion_Current(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	_, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, "first")
	require.NoError(t, err)
	current, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, "second")
	require.NoError(t, err)

	_, err = f.service.RestoreVersion(ctx, f.chapterID, current.ID, f.actor)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)

	history, err := f.service.ListVersions(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

/*
TestService_RestoreVersion_WrongChapter rejects restoring a version that
belongs to a different chapter.
*/
func TestService_RestoreVersion_WrongChapter(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	_, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, "mine")
	require.NoError(t, err)

	// A version appended directly under a foreign chapter.
	foreign := &version.Version{ID: uuid.New(), ChapterID: uuid.New(), Content: "theirs"}
	require.NoError(t, f.repo.Create(ctx, foreign))

	_, err = f.service.RestoreVersion(ctx, f.chapterID, foreign.ID, f.actor)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

/*
TestService_CreateVersion_Gate verifies saving into a published book is
rejected with NOT_EDITABLE and nothing is appended.
*/
func TestService_CreateVersion_Gate(t *testing.T) {
	f := newFixture(book.StatusPublished)

	_, err := f.service.CreateVersion(context.Background(), f.chapterID, f.actor, "frozen edit")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_EDITABLE", ae.Code)
	assert.Empty(t, f.repo.versions)
}

/*
TestService_ConcurrentSaves runs parallel saves against one chapter: all
succeed, all are retained, and exactly one is current afterwards.
*/
func TestService_ConcurrentSaves(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateVersion(ctx, f.chapterID, f.actor, "concurrent draft")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := f.service.ListVersions(ctx, f.chapterID, f.actor)
	require.NoError(t, err)
	require.Len(t, history, writers)

	currents := 0
	for _, v := range history {
		if v.Current {
			currents++
		}
	}
	assert.Equal(t, 1, currents)
}
