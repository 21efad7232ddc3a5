// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package version

import (
	"context"
	"net/http"
	"sync"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/chapter"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/platform/ctxutil"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Collaborator Contracts

// Guard is the authorization+gate checkpoint delegated to before any
// history mutation. Satisfied by [book.Service].
type Guard interface {
	AuthorizeRead(ctx context.Context, bookID, actorID string) (*book.Book, error)
	AuthorizeEdit(ctx context.Context, bookID, actorID string) (*book.Book, error)
}

// Chapters resolves a chapter to its owning book. Satisfied by
// [chapter.Repository].
type Chapters interface {
	FindByID(ctx context.Context, id string) (*chapter.Chapter, error)
}

// # Service Layer

// Service orchestrates chapter version histories: listing, the derived
// current content, explicit saves, and restores.
//
// In-process saves to one chapter are serialized through a keyed mutex so
// two goroutines of this process never interleave their read-append pairs.
// Saves from different clients remain last-writer-wins: both append, the
// newer one becomes current.
type Service struct {
	versionRepo Repository
	chapters    Chapters
	books       Guard
	notifier    feed.Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService constructs a new [Service].
func NewService(versionRepo Repository, chapters Chapters, books Guard, notifier feed.Notifier) *Service {
	return &Service{
		versionRepo: versionRepo,
		chapters:    chapters,
		books:       books,
		notifier:    notifier,
		locks:       make(map[string]*sync.Mutex),
	}
}

// chapterLock returns the mutex serializing writes to one chapter.
// Locks are never removed; the map grows with the set of chapters this
// process has written to, which is bounded and small per process lifetime.
func (service *Service) chapterLock(chapterID string) *sync.Mutex {
	service.mu.Lock()
	defer service.mu.Unlock()

	lock, ok := service.locks[chapterID]
	if !ok {
		lock = &sync.Mutex{}
		service.locks[chapterID] = lock
	}
	return lock
}

// # History Lookups

/*
ListVersions retrieves a chapter's full history, newest first.

Description: The listing is decorated: element 0 carries Current=true and
labels count down so the oldest version reads "Version 1". Current is
derived from order alone — it is never stored.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - actorID: string (UUID)

Returns:
  - []*Version: decorated descending history, possibly empty
  - error: NotFound when the chapter or book is missing/invisible
*/
func (service *Service) ListVersions(context context.Context, chapterID, actorID string) ([]*Version, error) {
	if _, err := service.authorizeRead(context, chapterID, actorID); err != nil {
		return nil, err
	}

	versions, err := service.versionRepo.ListByChapter(context, chapterID)
	if err != nil {
		return nil, err
	}

	Decorate(versions)
	return versions, nil
}

/*
CurrentContent returns the chapter's editable content.

Description: The content of the newest version, or the empty string for a
chapter that has no versions yet — a brand-new chapter opens as an empty
editor, not an error.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - actorID: string (UUID)

Returns:
  - string: current content ("" when no versions exist)
  - error: NotFound when the chapter or book is missing/invisible
*/
func (service *Service) CurrentContent(context context.Context, chapterID, actorID string) (string, error) {
	if _, err := service.authorizeRead(context, chapterID, actorID); err != nil {
		return "", err
	}

	newest, err := service.versionRepo.Newest(context, chapterID)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}

	return newest.Content, nil
}

// # History Mutations

/*
CreateVersion appends a new version carrying the given content.

Description: The explicit, irreversible save: a single append that becomes
the chapter's current content. Prior versions are untouched — there is no
overwrite path anywhere in this package. Concurrent saves from different
clients both succeed; the later one wins visibility.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - actorID: string (UUID, recorded as the author)
  - content: string (may be empty; clearing a chapter is a valid save)

Returns:
  - *Version: the appended version
  - error: authorization, gate, or persistence errors
*/
func (service *Service) CreateVersion(context context.Context, chapterID, actorID, content string) (*Version, error) {
	owner, err := service.authorizeEdit(context, chapterID, actorID)
	if err != nil {
		return nil, err
	}

	lock := service.chapterLock(chapterID)
	lock.Lock()
	defer lock.Unlock()

	version := &Version{
		ID:        uuid.New(),
		ChapterID: chapterID,
		Content:   content,
		CreatedBy: actorID,
	}

	if err := service.versionRepo.Create(context, version); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("version_created",
		"book_id", owner.BookID, "chapter_id", chapterID, "version_id", version.ID)
	service.notifier.Notify(context, feed.Event{
		Table: feed.TableVersions, Op: feed.OpInsert, EntityID: version.ID, BookID: owner.BookID,
	})

	return version, nil
}

/*
RestoreVersion makes an older version's content current again.

Description: Restore never rewinds history: it appends a brand-new version
copying the target's content, with a fresh identity and timestamp. The
target itself is unchanged and the versions between it and the top all
survive, so a restore is itself undoable by restoring something else.
Restoring the version that is already current is rejected — it would
append a duplicate for no effect.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - versionID: string (UUID of the version to restore)
  - actorID: string (UUID, recorded as the restore's author)

Returns:
  - *Version: the newly appended version
  - error: ValidationError when versionID is current or belongs to another
    chapter; authorization, gate, or persistence errors
*/
func (service *Service) RestoreVersion(context context.Context, chapterID, versionID, actorID string) (*Version, error) {
	owner, err := service.authorizeEdit(context, chapterID, actorID)
	if err != nil {
		return nil, err
	}

	lock := service.chapterLock(chapterID)
	lock.Lock()
	defer lock.Unlock()

	target, err := service.versionRepo.FindByID(context, versionID)
	if err != nil {
		return nil, err
	}
	if target.ChapterID != chapterID {
		return nil, apperr.ValidationError("Version does not belong to this chapter")
	}

	newest, err := service.versionRepo.Newest(context, chapterID)
	if err != nil {
		return nil, err
	}
	if newest.ID == target.ID {
		return nil, apperr.ValidationError("Version is already current")
	}

	restored := &Version{
		ID:        uuid.New(),
		ChapterID: chapterID,
		Content:   target.Content,
		CreatedBy: actorID,
	}

	if err := service.versionRepo.Create(context, restored); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("version_restored",
		"book_id", owner.BookID, "chapter_id", chapterID,
		"restored_from", target.ID, "version_id", restored.ID)
	service.notifier.Notify(context, feed.Event{
		Table: feed.TableVersions, Op: feed.OpInsert, EntityID: restored.ID, BookID: owner.BookID,
	})

	return restored, nil
}

// # Helpers

// authorizeRead resolves the chapter and checks book visibility.
func (service *Service) authorizeRead(context context.Context, chapterID, actorID string) (*chapter.Chapter, error) {
	owner, err := service.chapters.FindByID(context, chapterID)
	if err != nil {
		return nil, err
	}
	if _, err := service.books.AuthorizeRead(context, owner.BookID, actorID); err != nil {
		return nil, err
	}
	return owner, nil
}

// authorizeEdit resolves the chapter and runs the edit checkpoint
// (authorization then editability gate) before any write.
func (service *Service) authorizeEdit(context context.Context, chapterID, actorID string) (*chapter.Chapter, error) {
	owner, err := service.chapters.FindByID(context, chapterID)
	if err != nil {
		return nil, err
	}
	if _, err := service.books.AuthorizeEdit(context, owner.BookID, actorID); err != nil {
		return nil, err
	}
	return owner, nil
}

// isNotFound reports whether err is the 404 flavor of [apperr.AppError].
func isNotFound(err error) bool {
	app := apperr.As(err)
	return app != nil && app.HTTPStatus == http.StatusNotFound
}
