// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package chapter

import (
	"context"
	"fmt"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/platform/ctxutil"
	"github.com/prosepilot/api/internal/platform/validate"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Book Guard

// Guard is the authorization+gate checkpoint this service delegates to
// before touching a book's chapters. Satisfied by [book.Service]; defined
// here so tests can substitute a fake.
type Guard interface {
	AuthorizeRead(ctx context.Context, bookID, actorID string) (*book.Book, error)
	AuthorizeEdit(ctx context.Context, bookID, actorID string) (*book.Book, error)
}

// # Service Layer

// Service orchestrates the ordered chapter collection. Every mutation runs
// the same prologue: book authorization, then the editability gate, then
// the storage call — so a rejected request never leaves partial state.
type Service struct {
	chapterRepo Repository
	books       Guard
	notifier    feed.Notifier
}

// NewService constructs a new [Service].
func NewService(chapterRepo Repository, books Guard, notifier feed.Notifier) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		books:       books,
		notifier:    notifier,
	}
}

// # Lookups

/*
ListChapters retrieves the book's full chapter list in display order.

Description: The list is complete and position-ordered; clients render it
as-is. No pagination — a book's chapter count stays small by nature.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)

Returns:
  - []*Chapter: chapters ordered by position ascending
  - error: NotFound when the book is missing or invisible to the actor
*/
func (service *Service) ListChapters(context context.Context, bookID, actorID string) ([]*Chapter, error) {
	if _, err := service.books.AuthorizeRead(context, bookID, actorID); err != nil {
		return nil, err
	}
	return service.chapterRepo.ListByBook(context, bookID)
}

// # Collection Mutations

/*
AddChapter appends a new chapter or page to the end of the collection.

Description: The new entry takes position len(existing), preserving the
density invariant. When title is empty a default is assigned: "Chapter N"
for chapters, where N counts only entries of the chapter kind, or
"New Page" for pages.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)
  - kind: Kind (chapter or page)
  - title: string (optional; defaulted when empty)

Returns:
  - *Chapter: the appended entry
  - error: validation, authorization, gate, or persistence errors
*/
func (service *Service) AddChapter(context context.Context, bookID, actorID string, kind Kind, title string) (*Chapter, error) {
	if _, err := service.books.AuthorizeEdit(context, bookID, actorID); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldKind, string(kind), string(KindChapter), string(KindPage))
	validator.MaxLen(FieldTitle, title, 500)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.chapterRepo.ListByBook(context, bookID)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = defaultTitle(kind, existing)
	}

	chapter := &Chapter{
		ID:       uuid.New(),
		BookID:   bookID,
		Title:    title,
		Kind:     kind,
		Position: len(existing),
	}

	if err := service.chapterRepo.Create(context, chapter); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("chapter_added",
		"book_id", bookID, "chapter_id", chapter.ID, "kind", kind, "position", chapter.Position)
	service.notifier.Notify(context, feed.Event{
		Table: feed.TableChapters, Op: feed.OpInsert, EntityID: chapter.ID, BookID: bookID,
	})

	return chapter, nil
}

/*
RenameChapter updates a chapter's title in place.

Description: Position and version history are untouched; renaming never
creates a version.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - actorID: string (UUID)
  - title: string (required)

Returns:
  - *Chapter: the renamed entry
  - error: validation, authorization, gate, or persistence errors
*/
func (service *Service) RenameChapter(context context.Context, chapterID, actorID, title string) (*Chapter, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, 500)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter, err := service.chapterRepo.FindByID(context, chapterID)
	if err != nil {
		return nil, err
	}
	if _, err := service.books.AuthorizeEdit(context, chapter.BookID, actorID); err != nil {
		return nil, err
	}

	if err := service.chapterRepo.Rename(context, chapterID, title); err != nil {
		return nil, err
	}
	chapter.Title = title

	service.notifier.Notify(context, feed.Event{
		Table: feed.TableChapters, Op: feed.OpUpdate, EntityID: chapterID, BookID: chapter.BookID,
	})

	return chapter, nil
}

/*
DeleteChapter removes a chapter and its entire version history.

Description: The removal and the renumbering of the surviving chapters to
0..N-1 happen in one transaction, so the density invariant holds at every
observable point. Versions cascade with the chapter.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - actorID: string (UUID)

Returns:
  - error: authorization, gate, or persistence errors
*/
func (service *Service) DeleteChapter(context context.Context, chapterID, actorID string) error {
	chapter, err := service.chapterRepo.FindByID(context, chapterID)
	if err != nil {
		return err
	}
	if _, err := service.books.AuthorizeEdit(context, chapter.BookID, actorID); err != nil {
		return err
	}

	if err := service.chapterRepo.Delete(context, chapter); err != nil {
		return err
	}

	ctxutil.GetLogger(context).Info("chapter_deleted",
		"book_id", chapter.BookID, "chapter_id", chapterID)
	service.notifier.Notify(context, feed.Event{
		Table: feed.TableChapters, Op: feed.OpDelete, EntityID: chapterID, BookID: chapter.BookID,
	})

	return nil
}

/*
Reorder replaces the book's chapter order with the given permutation.

Description: orderedIDs must contain exactly the book's chapter IDs, each
once — anything else (missing, unknown, or duplicated IDs) is rejected
before any write. On success position = index for every entry, assigned
atomically; a reorder to the current order is accepted and harmless.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)
  - orderedIDs: []string (complete permutation of the book's chapter IDs)

Returns:
  - []*Chapter: the collection in its new order
  - error: validation, authorization, gate, or persistence errors
*/
func (service *Service) Reorder(context context.Context, bookID, actorID string, orderedIDs []string) ([]*Chapter, error) {
	if _, err := service.books.AuthorizeEdit(context, bookID, actorID); err != nil {
		return nil, err
	}

	existing, err := service.chapterRepo.ListByBook(context, bookID)
	if err != nil {
		return nil, err
	}

	if err := validatePermutation(existing, orderedIDs); err != nil {
		return nil, err
	}

	if err := service.chapterRepo.Reorder(context, bookID, orderedIDs); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("chapters_reordered",
		"book_id", bookID, "count", len(orderedIDs))
	service.notifier.Notify(context, feed.Event{
		Table: feed.TableChapters, Op: feed.OpUpdate, EntityID: bookID, BookID: bookID,
	})

	return service.chapterRepo.ListByBook(context, bookID)
}

// # Helpers

// defaultTitle names a new entry: chapters count only their own kind, so a
// book with 2 chapters and 5 pages still gets "Chapter 3".
func defaultTitle(kind Kind, existing []*Chapter) string {
	if kind == KindPage {
		return "New Page"
	}

	count := 0
	for _, chapter := range existing {
		if chapter.Kind == KindChapter {
			count++
		}
	}

	return fmt.Sprintf("Chapter %d", count+1)
}

// validatePermutation rejects orderedIDs unless it is an exact permutation
// of the existing chapter IDs.
func validatePermutation(existing []*Chapter, orderedIDs []string) error {
	if len(orderedIDs) != len(existing) {
		return apperr.ValidationError(fmt.Sprintf(
			"Order must list all %d chapters, got %d", len(existing), len(orderedIDs)))
	}

	known := make(map[string]bool, len(existing))
	for _, chapter := range existing {
		known[chapter.ID] = true
	}

	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] {
			return apperr.ValidationError("Order references an unknown chapter: " + id)
		}
		if seen[id] {
			return apperr.ValidationError("Order lists a chapter twice: " + id)
		}
		seen[id] = true
	}

	return nil
}
