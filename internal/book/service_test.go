// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/team"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Test Doubles

// memoryRepository is an in-memory [book.Repository] that mirrors the
// PostgreSQL implementation's semantics, including the compare-and-set on
// UpdateStatus.
type memoryRepository struct {
	mu    sync.Mutex
	books map[string]*book.Book
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{books: make(map[string]*book.Book)}
}

func (m *memoryRepository) ListForUser(_ context.Context, userID string, limit, offset int) ([]*book.Book, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*book.Book
	for _, b := range m.books {
		if b.OwnerUserID == userID {
			all = append(all, b)
		}
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return nil, apperr.NotFound("Book")
	}
	clone := *b
	return &clone, nil
}

func (m *memoryRepository) Create(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *b
	m.books[b.ID] = &clone
	return nil
}

func (m *memoryRepository) UpdateMetadata(_ context.Context, id string, meta book.Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return apperr.NotFound("Book")
	}
	b.Title = meta.Title
	b.AuthorName = meta.AuthorName
	b.ISBN = meta.ISBN
	b.Synopsis = meta.Synopsis
	b.LanguageID = meta.LanguageID
	b.Categories = meta.Categories
	return nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id string, from, to book.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok || b.Status != from {
		return apperr.NotFound("Book")
	}
	b.Status = to
	return nil
}

func (m *memoryRepository) SetCoverKey(_ context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return apperr.NotFound("Book")
	}
	b.CoverKey = key
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return apperr.NotFound("Book")
	}
	delete(m.books, id)
	return nil
}

// memoryMembers is a fixed role table keyed by teamID/userID.
type memoryMembers struct {
	roles map[string]map[string]team.Role
}

func (m *memoryMembers) RoleOf(_ context.Context, teamID, userID string) (team.Role, error) {
	return m.roles[teamID][userID], nil
}

func (m *memoryMembers) TeamsOf(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for teamID, members := range m.roles {
		if _, ok := members[userID]; ok {
			ids = append(ids, teamID)
		}
	}
	return ids, nil
}

// recordingNotifier captures published feed events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []feed.Event
}

func (r *recordingNotifier) Notify(_ context.Context, event feed.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// # Fixture

type fixture struct {
	repo     *memoryRepository
	members  *memoryMembers
	notifier *recordingNotifier
	service  *book.Service
}

func newFixture() *fixture {
	repo := newMemoryRepository()
	members := &memoryMembers{roles: make(map[string]map[string]team.Role)}
	notifier := &recordingNotifier{}
	return &fixture{
		repo:     repo,
		members:  members,
		notifier: notifier,
		service:  book.NewService(repo, members, notifier, nil),
	}
}

// seed inserts a user-owned book in the given status.
func (f *fixture) seed(ownerID string, status book.Status) *book.Book {
	b := &book.Book{
		ID:          uuid.New(),
		Title:       "The Long Draft",
		Status:      status,
		LanguageID:  uuid.New(),
		OwnerUserID: ownerID,
	}
	_ = f.repo.Create(context.Background(), b)
	return b
}

// seedTeam inserts a team-owned book and registers the member roles.
func (f *fixture) seedTeam(teamID string, status book.Status, roles map[string]team.Role) *book.Book {
	f.members.roles[teamID] = roles
	b := &book.Book{
		ID:          uuid.New(),
		Title:       "The Shared Draft",
		Status:      status,
		LanguageID:  uuid.New(),
		OwnerTeamID: teamID,
	}
	_ = f.repo.Create(context.Background(), b)
	return b
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	return ae.HTTPStatus
}

// # Lifecycle Tests

/*
TestService_CreateBook verifies that new books start in the writing status
with the actor as direct owner.
*/
func TestService_CreateBook(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	created, err := f.service.CreateBook(context.Background(), actor, book.Metadata{
		Title:      "Maiden Voyage",
		LanguageID: uuid.New(),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, book.StatusWriting, created.Status)
	assert.Equal(t, actor, created.OwnerUserID)
	assert.Empty(t, created.OwnerTeamID)
	assert.Equal(t, 1, f.notifier.count())
}

/*
TestService_CreateBook_Validation rejects missing titles and malformed
language IDs before anything is stored.
*/
func TestService_CreateBook_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateBook(context.Background(), uuid.New(), book.Metadata{
		Title:      "",
		LanguageID: "not-a-uuid",
	}, "")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
	assert.Empty(t, f.repo.books)
	assert.Zero(t, f.notifier.count())
}

/*
TestService_CreateBook_TeamRole requires an editor-or-above role to create
into a team.
*/
func TestService_CreateBook_TeamRole(t *testing.T) {
	f := newFixture()
	teamID := uuid.New()
	editor := uuid.New()
	reader := uuid.New()
	f.members.roles[teamID] = map[string]team.Role{
		editor: team.RoleEditor,
		reader: team.RoleReader,
	}

	meta := book.Metadata{Title: "Team Book", LanguageID: uuid.New()}

	created, err := f.service.CreateBook(context.Background(), editor, meta, teamID)
	require.NoError(t, err)
	assert.Equal(t, teamID, created.OwnerTeamID)
	assert.Empty(t, created.OwnerUserID)

	_, err = f.service.CreateBook(context.Background(), reader, meta, teamID)
	assert.Equal(t, http.StatusForbidden, statusCode(t, err))
}

/*
TestService_UpdateBook_Gate verifies the editability gate: metadata updates
against a published book return 409 NOT_EDITABLE and change nothing.
*/
func TestService_UpdateBook_Gate(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	published := f.seed(owner, book.StatusPublished)

	_, err := f.service.UpdateBook(context.Background(), published.ID, owner, book.Metadata{
		Title:      "Sneaky Edit",
		LanguageID: published.LanguageID,
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_EDITABLE", ae.Code)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)

	unchanged, err := f.repo.FindByID(context.Background(), published.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Long Draft", unchanged.Title)
	assert.Zero(t, f.notifier.count())
}

/*
TestService_UpdateBook_Access verifies the access ladder for team books:
outsiders get 404, readers get 403, editors succeed.
*/
func TestService_UpdateBook_Access(t *testing.T) {
	f := newFixture()
	teamID := uuid.New()
	editor := uuid.New()
	reader := uuid.New()
	outsider := uuid.New()
	b := f.seedTeam(teamID, book.StatusDraft, map[string]team.Role{
		editor: team.RoleEditor,
		reader: team.RoleReader,
	})

	meta := book.Metadata{Title: "Renamed", LanguageID: b.LanguageID}

	_, err := f.service.UpdateBook(context.Background(), b.ID, outsider, meta)
	assert.Equal(t, http.StatusNotFound, statusCode(t, err))

	_, err = f.service.UpdateBook(context.Background(), b.ID, reader, meta)
	assert.Equal(t, http.StatusForbidden, statusCode(t, err))

	updated, err := f.service.UpdateBook(context.Background(), b.ID, editor, meta)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

/*
TestService_Transitions walks the archive toggle and the publish cycle.
*/
func TestService_Transitions(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	b := f.seed(owner, book.StatusDraft)
	ctx := context.Background()

	archived, err := f.service.Archive(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, book.StatusArchived, archived.Status)

	restored, err := f.service.Unarchive(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, book.StatusDraft, restored.Status)

	published, err := f.service.Publish(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, book.StatusPublished, published.Status)

	// Archive from published is not a legal move.
	_, err = f.service.Archive(ctx, b.ID, owner)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	draft, err := f.service.Unpublish(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, book.StatusDraft, draft.Status)
}

/*
TestService_ApplyGenerationResult lands writing → draft or error, and
rejects duplicate callbacks.
*/
func TestService_ApplyGenerationResult(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	ctx := context.Background()

	success := f.seed(owner, book.StatusWriting)
	landed, err := f.service.ApplyGenerationResult(ctx, success.ID, true)
	require.NoError(t, err)
	assert.Equal(t, book.StatusDraft, landed.Status)

	// Second callback finds the book already out of writing.
	_, err = f.service.ApplyGenerationResult(ctx, success.ID, true)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))

	failure := f.seed(owner, book.StatusWriting)
	landed, err = f.service.ApplyGenerationResult(ctx, failure.ID, false)
	require.NoError(t, err)
	assert.Equal(t, book.StatusError, landed.Status)

	// error is terminal for transitions.
	_, err = f.service.Publish(ctx, failure.ID, owner)
	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

/*
TestService_DeleteBook_ErrorState confirms delete works in every status,
including the terminal error state.
*/
func TestService_DeleteBook_ErrorState(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	ctx := context.Background()

	failed := f.seed(owner, book.StatusError)
	require.NoError(t, f.service.DeleteBook(ctx, failed.ID, owner))

	frozen := f.seed(owner, book.StatusPublished)
	require.NoError(t, f.service.DeleteBook(ctx, frozen.ID, owner))

	assert.Empty(t, f.repo.books)
}

/*
TestService_ListBooks returns only the actor's own library.
*/
func TestService_ListBooks(t *testing.T) {
	f := newFixture()
	mine := uuid.New()
	theirs := uuid.New()
	f.seed(mine, book.StatusDraft)
	f.seed(mine, book.StatusPublished)
	f.seed(theirs, book.StatusDraft)

	books, total, err := f.service.ListBooks(context.Background(), mine, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, books, 2)
}
