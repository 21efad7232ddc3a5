// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book

import (
	"context"
	"io"

	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/platform/ctxutil"
	"github.com/prosepilot/api/internal/platform/objectstore"
	"github.com/prosepilot/api/internal/platform/validate"
	"github.com/prosepilot/api/internal/team"
	"github.com/prosepilot/api/pkg/uuid"
)

// # Service Layer

// Service orchestrates the book lifecycle: library listing, metadata
// editing, status transitions, and the authorization+gate check the
// chapter and version services delegate to.
type Service struct {
	bookRepo Repository
	members  team.MemberRepository
	notifier feed.Notifier
	covers   *objectstore.Store
}

// NewService constructs a new [Service].
//
// covers may be nil when object storage is not configured; cover uploads
// then return ServiceUnavailable.
func NewService(bookRepo Repository, members team.MemberRepository, notifier feed.Notifier, covers *objectstore.Store) *Service {
	return &Service{
		bookRepo: bookRepo,
		members:  members,
		notifier: notifier,
		covers:   covers,
	}
}

// # Authorization

/*
AuthorizeRead loads the book and verifies the actor may see it.

Description: Read access requires direct ownership or any team membership.
Actors with no relationship get NotFound rather than Forbidden so the
book's existence is not leaked.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID of the authenticated user)

Returns:
  - *Book: the hydrated book
  - error: NotFound when missing or invisible to the actor
*/
func (service *Service) AuthorizeRead(context context.Context, bookID, actorID string) (*Book, error) {
	book, err := service.bookRepo.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}

	access, err := service.resolveAccess(context, book, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead() {
		return nil, ErrNoAccess()
	}

	return book, nil
}

/*
AuthorizeEdit loads the book and verifies the actor may mutate beneath it.

Description: This is the single mutation checkpoint shared by the chapter
and version services: authorization first (owner or team editor+), then the
editability gate. Both checks are synchronous and happen before any write,
so a rejection implies nothing changed.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)

Returns:
  - *Book: the hydrated book, guaranteed editable by the actor
  - error: NotFound (missing/invisible), Forbidden (reader role), or
    NotEditable (published)
*/
func (service *Service) AuthorizeEdit(context context.Context, bookID, actorID string) (*Book, error) {
	book, err := service.bookRepo.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}

	access, err := service.resolveAccess(context, book, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead() {
		return nil, ErrNoAccess()
	}
	if !access.CanEdit() {
		return nil, ErrReadOnly()
	}

	// Editability gate
	if !book.Status.Editable() {
		return nil, ErrNotEditable(book.Status)
	}

	return book, nil
}

// resolveAccess computes the actor's relationship to the book.
func (service *Service) resolveAccess(context context.Context, book *Book, actorID string) (Access, error) {
	if book.OwnedByUser() {
		return Access{IsOwner: book.OwnerUserID == actorID}, nil
	}

	role, err := service.members.RoleOf(context, book.OwnerTeamID, actorID)
	if err != nil {
		return Access{}, err
	}

	return Access{TeamRole: role}, nil
}

// # Library

/*
ListBooks retrieves the actor's library.

Description: Includes books the actor owns directly and books owned by any
team the actor belongs to, newest first.

Parameters:
  - context: context.Context
  - actorID: string (UUID)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Book: slice of library entries
  - int: total count for pagination metadata
  - error: repository errors
*/
func (service *Service) ListBooks(context context.Context, actorID string, limit, offset int) ([]*Book, int, error) {
	return service.bookRepo.ListForUser(context, actorID, limit, offset)
}

/*
GetBook fetches a single book visible to the actor.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)

Returns:
  - *Book: the hydrated entity
  - error: NotFound if missing or invisible
*/
func (service *Service) GetBook(context context.Context, bookID, actorID string) (*Book, error) {
	return service.AuthorizeRead(context, bookID, actorID)
}

// # Lifecycle Management

/*
CreateBook registers a new book for the generation pipeline.

Description: Validates the metadata, assigns a UUID v7 identity, and
persists the book in the writing status — content generation is in flight
until [Service.ApplyGenerationResult] lands the outcome. Ownership goes to
the actor directly unless meta targets a team, in which case the actor must
hold an editor-or-above role there.

Parameters:
  - context: context.Context
  - actorID: string (UUID)
  - meta: Metadata (descriptive fields)
  - ownerTeamID: string (UUID, empty for personal ownership)

Returns:
  - *Book: the persisted entity
  - error: validation, authorization, or persistence errors
*/
func (service *Service) CreateBook(context context.Context, actorID string, meta Metadata, ownerTeamID string) (*Book, error) {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, meta.Title).MaxLen(FieldTitle, meta.Title, 500)
	validator.MaxLen(FieldAuthorName, meta.AuthorName, 200)
	validator.Required(FieldLanguageID, meta.LanguageID).UUID(FieldLanguageID, meta.LanguageID)
	if meta.ISBN != "" {
		validator.ISBN(FieldISBN, meta.ISBN)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Team ownership requires an editor-or-above role
	if ownerTeamID != "" {
		role, err := service.members.RoleOf(context, ownerTeamID, actorID)
		if err != nil {
			return nil, err
		}
		if !role.AtLeast(team.RoleEditor) {
			return nil, apperr.Forbidden("Your team role does not allow creating books")
		}
	}

	book := &Book{
		ID:         uuid.New(),
		Title:      meta.Title,
		AuthorName: meta.AuthorName,
		ISBN:       meta.ISBN,
		Synopsis:   meta.Synopsis,
		Status:     StatusWriting,
		LanguageID: meta.LanguageID,
		Categories: meta.Categories,
	}
	if ownerTeamID != "" {
		book.OwnerTeamID = ownerTeamID
	} else {
		book.OwnerUserID = actorID
	}

	if err := service.bookRepo.Create(context, book); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("book_created", "book_id", book.ID, "status", book.Status)
	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpInsert, EntityID: book.ID})

	return book, nil
}

/*
UpdateBook replaces the book's descriptive metadata.

Description: Requires edit authorization and an editable status. Status and
ownership never change here; they move only through the dedicated
transition operations.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)
  - meta: Metadata

Returns:
  - *Book: the updated entity
  - error: validation, authorization, gate, or persistence errors
*/
func (service *Service) UpdateBook(context context.Context, bookID, actorID string, meta Metadata) (*Book, error) {
	if _, err := service.AuthorizeEdit(context, bookID, actorID); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, meta.Title).MaxLen(FieldTitle, meta.Title, 500)
	validator.MaxLen(FieldAuthorName, meta.AuthorName, 200)
	validator.Required(FieldLanguageID, meta.LanguageID).UUID(FieldLanguageID, meta.LanguageID)
	if meta.ISBN != "" {
		validator.ISBN(FieldISBN, meta.ISBN)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.bookRepo.UpdateMetadata(context, bookID, meta); err != nil {
		return nil, err
	}

	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpUpdate, EntityID: bookID})

	return service.bookRepo.FindByID(context, bookID)
}

/*
DeleteBook removes the book and everything beneath it.

Description: Allowed in any status, including published and error — delete
is the only exit from the error state. Chapters and their versions go with
it via cascading foreign keys; the cover object is removed best-effort.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)

Returns:
  - error: authorization or persistence errors
*/
func (service *Service) DeleteBook(context context.Context, bookID, actorID string) error {
	book, err := service.bookRepo.FindByID(context, bookID)
	if err != nil {
		return err
	}

	// Delete bypasses the editability gate, not authorization.
	access, err := service.resolveAccess(context, book, actorID)
	if err != nil {
		return err
	}
	if !access.CanRead() {
		return ErrNoAccess()
	}
	if !access.CanEdit() {
		return ErrReadOnly()
	}

	if err := service.bookRepo.Delete(context, bookID); err != nil {
		return err
	}

	if book.CoverKey != "" && service.covers != nil {
		if err := service.covers.RemoveCover(context, book.CoverKey); err != nil {
			ctxutil.GetLogger(context).Warn("cover_remove_failed", "book_id", bookID, "error", err)
		}
	}

	ctxutil.GetLogger(context).Info("book_deleted", "book_id", bookID)
	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpDelete, EntityID: bookID})

	return nil
}

// # Status Transitions

// Archive parks a draft book (draft → archived).
func (service *Service) Archive(context context.Context, bookID, actorID string) (*Book, error) {
	return service.transition(context, bookID, actorID, StatusArchived)
}

// Unarchive reopens an archived book (archived → draft).
func (service *Service) Unarchive(context context.Context, bookID, actorID string) (*Book, error) {
	return service.transition(context, bookID, actorID, StatusDraft)
}

// Publish freezes the book (any non-published → published).
func (service *Service) Publish(context context.Context, bookID, actorID string) (*Book, error) {
	return service.transition(context, bookID, actorID, StatusPublished)
}

// Unpublish reopens a published book for editing (published → draft).
func (service *Service) Unpublish(context context.Context, bookID, actorID string) (*Book, error) {
	return service.transition(context, bookID, actorID, StatusDraft)
}

/*
ApplyGenerationResult lands the outcome of the content generation pipeline.

Description: Internal, service-to-service only — no actor authorization.
Moves writing → draft on success or writing → error on failure; any other
current status rejects the call, which makes duplicate pipeline callbacks
harmless.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - succeeded: bool

Returns:
  - *Book: the book in its landed status
  - error: NotFound or transition errors
*/
func (service *Service) ApplyGenerationResult(context context.Context, bookID string, succeeded bool) (*Book, error) {
	target := StatusDraft
	if !succeeded {
		target = StatusError
	}

	book, err := service.bookRepo.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Status.CanTransition(target) {
		return nil, ErrBadTransition(book.Status, target)
	}

	if err := service.bookRepo.UpdateStatus(context, bookID, book.Status, target); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("book_generation_landed",
		"book_id", bookID, "status", target, "succeeded", succeeded)
	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpUpdate, EntityID: bookID})

	return service.bookRepo.FindByID(context, bookID)
}

// transition is the shared manual status-change path: authorization, the
// transition table, then a compare-and-set update so racing calls cannot
// both win.
func (service *Service) transition(context context.Context, bookID, actorID string, target Status) (*Book, error) {
	book, err := service.bookRepo.FindByID(context, bookID)
	if err != nil {
		return nil, err
	}

	// Transitions bypass the editability gate (unpublish must work on a
	// published book) but never authorization.
	access, err := service.resolveAccess(context, book, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead() {
		return nil, ErrNoAccess()
	}
	if !access.CanEdit() {
		return nil, ErrReadOnly()
	}

	if !book.Status.CanTransition(target) {
		return nil, ErrBadTransition(book.Status, target)
	}

	if err := service.bookRepo.UpdateStatus(context, bookID, book.Status, target); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("book_status_changed",
		"book_id", bookID, "from", book.Status, "to", target)
	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpUpdate, EntityID: bookID})

	return service.bookRepo.FindByID(context, bookID)
}

// # Cover Management

/*
SetCover uploads a cover image and records its object key.

Parameters:
  - context: context.Context
  - bookID: string (UUID)
  - actorID: string (UUID)
  - filename: string (original upload name, slugged into the object key)
  - reader: io.Reader (image bytes)
  - size: int64 (declared content length)
  - contentType: string

Returns:
  - string: the stored object key
  - error: authorization, gate, upload, or persistence errors
*/
func (service *Service) SetCover(context context.Context, bookID, actorID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if service.covers == nil {
		return "", apperr.ServiceUnavailable("Cover storage is not configured")
	}

	if _, err := service.AuthorizeEdit(context, bookID, actorID); err != nil {
		return "", err
	}

	key := objectstore.CoverKey(bookID, filename)
	if err := service.covers.PutCover(context, key, reader, size, contentType); err != nil {
		return "", err
	}

	if err := service.bookRepo.SetCoverKey(context, bookID, key); err != nil {
		return "", err
	}

	ctxutil.GetLogger(context).Info("book_cover_set", "book_id", bookID, "key", key)
	service.notifier.Notify(context, feed.Event{Table: feed.TableBooks, Op: feed.OpUpdate, EntityID: bookID})

	return key, nil
}
