// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package chapter_test

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/chapter"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Test Doubles

// gateGuard authorizes everyone but enforces the editability gate from a
// per-book status table, mirroring what book.Service does.
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

// memoryRepository is an in-memory [chapter.Repository] with the same
// renumber-on-delete and atomic-reorder semantics as the PostgreSQL one.
type memoryRepository struct {
	mu       sync.Mutex
	chapters map[string]*chapter.Chapter
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{chapters: make(map[string]*chapter.Chapter)}
}

func (m *memoryRepository) ListByBook(_ context.Context, bookID string) ([]*chapter.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []*chapter.Chapter
	for _, c := range m.chapters {
		if c.BookID == bookID {
			clone := *c
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list, nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chapters[id]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	clone := *c
	return &clone, nil
}

func (m *memoryRepository) Create(_ context.Context, c *chapter.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *c
	m.chapters[c.ID] = &clone
	return nil
}

func (m *memoryRepository) Rename(_ context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chapters[id]
	if !ok {
		return apperr.NotFound("Chapter")
	}
	c.Title = title
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, victim *chapter.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chapters[victim.ID]; !ok {
		return apperr.NotFound("Chapter")
	}
	delete(m.chapters, victim.ID)
	for _, c := range m.chapters {
		if c.BookID == victim.BookID && c.Position > victim.Position {
			c.Position--
		}
	}
	return nil
}

func (m *memoryRepository) Reorder(_ context.Context, bookID string, orderedIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for index, id := range orderedIDs {
		if c, ok := m.chapters[id]; ok && c.BookID == bookID {
			c.Position = index
		}
	}
	return nil
}

// nopNotifier satisfies feed.Notifier for tests that ignore events.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, feed.Event) {}

// # Fixture

type fixture struct {
	repo    *memoryRepository
	guard   *gateGuard
	service *chapter.Service
	bookID  string
	actor   string
}

func newFixture(status book.Status) *fixture {
	repo := newMemoryRepository()
	bookID := uuid.New()
	guard := &gateGuard{statuses: map[string]book.Status{bookID: status}}
	return &fixture{
		repo:    repo,
		guard:   guard,
		service: chapter.NewService(repo, guard, nopNotifier{}),
		bookID:  bookID,
		actor:   uuid.New(),
	}
}

// requireDense asserts the book's chapters occupy exactly positions 0..N-1.
func (f *fixture) requireDense(t *testing.T) []*chapter.Chapter {
	t.Helper()
	list, err := f.repo.ListByBook(context.Background(), f.bookID)
	require.NoError(t, err)
	for index, c := range list {
		require.Equal(t, index, c.Position, "position gap at index %d", index)
	}
	return list
}

// # Collection Tests

/*
TestService_AddChapter_Defaults verifies default naming: chapters count
only their own kind, pages are always "New Page", and each append lands at
the end of the collection.
*/
func TestService_AddChapter_Defaults(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	first, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "")
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1", first.Title)
	assert.Equal(t, 0, first.Position)

	page, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindPage, "")
	require.NoError(t, err)
	assert.Equal(t, "New Page", page.Title)
	assert.Equal(t, 1, page.Position)

	// The page does not advance the chapter counter.
	second, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "")
	require.NoError(t, err)
	assert.Equal(t, "Chapter 2", second.Title)
	assert.Equal(t, 2, second.Position)

	custom, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "Epilogue")
	require.NoError(t, err)
	assert.Equal(t, "Epilogue", custom.Title)

	f.requireDense(t)
}

/*
TestService_AddChapter_PublishedBook verifies the gate: appending to a
published book is rejected with NOT_EDITABLE and the collection is
unchanged.
*/
func TestService_AddChapter_PublishedBook(t *testing.T) {
	f := newFixture(book.StatusPublished)

	_, err := f.service.AddChapter(context.Background(), f.bookID, f.actor, chapter.KindChapter, "")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_EDITABLE", ae.Code)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
	assert.Empty(t, f.repo.chapters)
}

/*
TestService_DeleteChapter_Renumbers verifies the density invariant across
deletes from the middle, front, and back of the collection.
*/
func TestService_DeleteChapter_Renumbers(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		c, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	// Middle.
	require.NoError(t, f.service.DeleteChapter(ctx, ids[2], f.actor))
	list := f.requireDense(t)
	require.Len(t, list, 4)
	assert.Equal(t, []string{ids[0], ids[1], ids[3], ids[4]}, collectIDs(list))

	// Front.
	require.NoError(t, f.service.DeleteChapter(ctx, ids[0], f.actor))
	list = f.requireDense(t)
	assert.Equal(t, []string{ids[1], ids[3], ids[4]}, collectIDs(list))

	// Back.
	require.NoError(t, f.service.DeleteChapter(ctx, ids[4], f.actor))
	list = f.requireDense(t)
	assert.Equal(t, []string{ids[1], ids[3]}, collectIDs(list))
}

/*
TestService_Reorder rotates [A, B, C] into [B, C, A] and expects positions
0, 1, 2 in the new order — the order is read back solely from positions.
*/
func TestService_Reorder(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	a, _ := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "A")
	b, _ := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "B")
	c, _ := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "C")

	reordered, err := f.service.Reorder(ctx, f.bookID, f.actor, []string{b.ID, c.ID, a.ID})
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID, c.ID, a.ID}, collectIDs(reordered))
	f.requireDense(t)

	// Reordering to the current order is accepted and harmless.
	same, err := f.service.Reorder(ctx, f.bookID, f.actor, []string{b.ID, c.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, collectIDs(same))
}

/*
TestService_Reorder_RejectsBadPermutations covers the validation cases:
short lists, unknown IDs, and duplicates all reject before any write.
*/
func TestService_Reorder_RejectsBadPermutations(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	a, _ := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "A")
	b, _ := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "B")

	tests := []struct {
		name string
		ids  []string
	}{
		{"missing_entry", []string{a.ID}},
		{"unknown_entry", []string{a.ID, uuid.New()}},
		{"duplicate_entry", []string{a.ID, a.ID}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Reorder(ctx, f.bookID, f.actor, tt.ids)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
		})
	}

	// Untouched.
	list := f.requireDense(t)
	assert.Equal(t, []string{a.ID, b.ID}, collectIDs(list))
}

/*
TestService_RenameChapter leaves position untouched.
*/
func TestService_RenameChapter(t *testing.T) {
	f := newFixture(book.StatusDraft)
	ctx := context.Background()

	_, _ = f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "")
	c, err := f.service.AddChapter(ctx, f.bookID, f.actor, chapter.KindChapter, "")
	require.NoError(t, err)

	renamed, err := f.service.RenameChapter(ctx, c.ID, f.actor, "The Reckoning")
	require.NoError(t, err)
	assert.Equal(t, "The Reckoning", renamed.Title)
	assert.Equal(t, 1, renamed.Position)

	_, err = f.service.RenameChapter(ctx, c.ID, f.actor, "")
	require.Error(t, err)
}

func collectIDs(chapters []*chapter.Chapter) []string {
	ids := make([]string, 0, len(chapters))
	for _, c := range chapters {
		ids = append(ids, c.ID)
	}
	return ids
}
