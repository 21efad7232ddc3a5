// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package book

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prosepilot/api/internal/platform/apperr"
	"github.com/prosepilot/api/internal/platform/constants"
	"github.com/prosepilot/api/internal/platform/middleware"
	requestutil "github.com/prosepilot/api/internal/platform/request"
	"github.com/prosepilot/api/internal/platform/respond"
	"github.com/prosepilot/api/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the book library and lifecycle.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register attaches the book endpoints to the authenticated /books route
// group. The group is composed in internal/api because the chapter
// collection hangs routes off the same /books/{bookID} subtree.
func (handler *Handler) Register(router chi.Router) {

	// ## Library
	router.Get("/", handler.listBooks)
	router.Post("/", handler.createBook)
	router.Get("/{bookID}", handler.getBook)
	router.Patch("/{bookID}", handler.updateBook)
	router.Delete("/{bookID}", handler.deleteBook)

	// ## Lifecycle
	router.Post("/{bookID}/archive", handler.archive)
	router.Post("/{bookID}/unarchive", handler.unarchive)
	router.Post("/{bookID}/publish", handler.publish)
	router.Post("/{bookID}/unpublish", handler.unpublish)

	// ## Cover
	router.Post("/{bookID}/cover", handler.setCover)
}

// InternalRoutes returns the service-to-service surface: the generation
// pipeline callback. Mounted under /internal, guarded by the service role.
func (handler *Handler) InternalRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireService)

	router.Post("/{bookID}/generation", handler.applyGenerationResult)

	return router
}

// # Library Endpoints

/*
GET /api/v1/books.

Description: Retrieves the authenticated user's library — directly owned
books plus books owned by any of their teams, newest first.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Book: Paginated library
  - 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	books, total, err := handler.service.ListBooks(request.Context(), actorID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/books/{bookID}.

Response:
  - 200: Book: Success
  - 404: ErrNotFound: Book missing or not visible to the actor
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), requestutil.ID(request, "bookID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

// # Request Payloads

// bookRequest defines the inbound JSON schema for creation and metadata
// updates. Status is deliberately absent: it moves only through the
// lifecycle endpoints.
type bookRequest struct {
	Title       string   `json:"title"`
	AuthorName  string   `json:"author_name"`
	ISBN        string   `json:"isbn"`
	Synopsis    string   `json:"synopsis"`
	LanguageID  string   `json:"language_id"`
	CategoryIDs []string `json:"category_ids"`

	// OwnerTeamID is honoured on creation only.
	OwnerTeamID string `json:"owner_team_id"`
}

func (input bookRequest) metadata() Metadata {
	return Metadata{
		Title:      input.Title,
		AuthorName: input.AuthorName,
		ISBN:       input.ISBN,
		Synopsis:   input.Synopsis,
		LanguageID: input.LanguageID,
		Categories: input.CategoryIDs,
	}
}

// # Mutation Endpoints

/*
POST /api/v1/books.

Description: Registers a new book. The book starts in the writing status;
the generation pipeline lands it into draft or error via the internal
callback.

Request (Body):
  - bookRequest: JSON object

Response:
  - 201: Book: Created book in writing status
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 403: ErrForbidden: Actor lacks an editor role in the target team
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.CreateBook(request.Context(), actorID, input.metadata(), input.OwnerTeamID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, book)
}

/*
PATCH /api/v1/books/{bookID}.

Description: Replaces the book's descriptive metadata. Rejected with 409
NOT_EDITABLE while the book is published.

Response:
  - 200: Book: Updated book
  - 403: ErrForbidden: Team reader role
  - 404: ErrNotFound: Book missing or not visible
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.UpdateBook(request.Context(), requestutil.ID(request, "bookID"), actorID, input.metadata())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
DELETE /api/v1/books/{bookID}.

Description: Deletes the book and, via cascade, its chapters and versions.
Allowed in any status; this is the only exit from the error state.

Response:
  - 204: No Content: Success
  - 403: ErrForbidden: Team reader role
  - 404: ErrNotFound: Book missing or not visible
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteBook(request.Context(), requestutil.ID(request, "bookID"), actorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Lifecycle Endpoints

func (handler *Handler) archive(writer http.ResponseWriter, request *http.Request) {
	handler.runTransition(writer, request, handler.service.Archive)
}

func (handler *Handler) unarchive(writer http.ResponseWriter, request *http.Request) {
	handler.runTransition(writer, request, handler.service.Unarchive)
}

func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	handler.runTransition(writer, request, handler.service.Publish)
}

func (handler *Handler) unpublish(writer http.ResponseWriter, request *http.Request) {
	handler.runTransition(writer, request, handler.service.Unpublish)
}

// runTransition is the shared adapter for the four manual lifecycle
// endpoints: resolve actor, run the transition, return the updated book.
func (handler *Handler) runTransition(writer http.ResponseWriter, request *http.Request, transition func(ctx context.Context, bookID, actorID string) (*Book, error)) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := transition(request.Context(), requestutil.ID(request, "bookID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
POST /internal/books/{bookID}/generation.

Description: Generation pipeline callback. Lands the outcome of content
generation: writing → draft on success, writing → error on failure.
Requires the service role.

Request (Body):
  - succeeded: bool

Response:
  - 200: Book: Book in its landed status
  - 400: ValidationError: Book is not in writing status
  - 403: ErrForbidden: Caller lacks the service role
*/
func (handler *Handler) applyGenerationResult(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Succeeded bool `json:"succeeded"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.ApplyGenerationResult(request.Context(), requestutil.ID(request, "bookID"), input.Succeeded)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

// # Cover Endpoint

/*
POST /api/v1/books/{bookID}/cover.

Description: Multipart cover upload. The file part must be named "cover";
uploads above the configured size cap are rejected.

Response:
  - 200: {cover_key}: Stored object key
  - 409: NOT_EDITABLE: Book is published
  - 503: ErrServiceUnavailable: Object storage not configured
*/
func (handler *Handler) setCover(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.CoverMaxBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	file, header, err := request.FormFile("cover")
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Missing cover file part"))
		return
	}
	defer file.Close()

	key, err := handler.service.SetCover(
		request.Context(),
		requestutil.ID(request, "bookID"),
		actorID,
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"cover_key": key})
}
