// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/prosepilot/api/internal/platform/request"
	"github.com/prosepilot/api/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for the chapter collection. The
// book-scoped collection routes and the chapter-scoped item routes mount
// separately because they hang off different URL roots.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// BookRoutes returns the collection endpoints, mounted under
// /books/{bookID}/chapters by the authenticated /books route group.
func (handler *Handler) BookRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listChapters)
	router.Post("/", handler.addChapter)
	router.Put("/order", handler.reorder)

	return router
}

// Register attaches the item endpoints to the authenticated /chapters
// route group, which it shares with the version history handler.
func (handler *Handler) Register(router chi.Router) {
	router.Patch("/{chapterID}", handler.renameChapter)
	router.Delete("/{chapterID}", handler.deleteChapter)
}

// # Collection Endpoints

/*
GET /api/v1/books/{bookID}/chapters.

Description: Returns the book's complete chapter list ordered by position.

Response:
  - 200: []Chapter: Ordered collection
  - 404: ErrNotFound: Book missing or not visible
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.ListChapters(request.Context(), requestutil.ID(request, "bookID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

// addChapterRequest defines the inbound JSON schema for appending.
type addChapterRequest struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
}

/*
POST /api/v1/books/{bookID}/chapters.

Description: Appends a chapter or page to the end of the collection. An
empty title gets the kind's default ("Chapter N" / "New Page").

Request (Body):
  - kind: string (chapter | page)
  - title: string (optional)

Response:
  - 201: Chapter: The appended entry
  - 400: ValidationError: Unknown kind
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) addChapter(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.AddChapter(request.Context(),
		requestutil.ID(request, "bookID"), actorID, input.Kind, input.Title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
PUT /api/v1/books/{bookID}/chapters/order.

Description: Atomically replaces the collection order. The body must list
every chapter ID of the book exactly once, in the desired display order.

Request (Body):
  - chapter_ids: []string (complete permutation)

Response:
  - 200: []Chapter: Collection in its new order
  - 400: ValidationError: Not an exact permutation
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		ChapterIDs []string `json:"chapter_ids"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.Reorder(request.Context(),
		requestutil.ID(request, "bookID"), actorID, input.ChapterIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

// # Item Endpoints

/*
PATCH /api/v1/chapters/{chapterID}.

Description: Renames the chapter. Order and version history are untouched.

Request (Body):
  - title: string (required)

Response:
  - 200: Chapter: The renamed entry
  - 404: ErrNotFound: Chapter or book missing/invisible
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) renameChapter(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Title string `json:"title"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.RenameChapter(request.Context(),
		requestutil.ID(request, "chapterID"), actorID, input.Title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
DELETE /api/v1/chapters/{chapterID}.

Description: Removes the chapter and its version history; the surviving
chapters are renumbered to keep positions dense.

Response:
  - 204: No Content: Success
  - 404: ErrNotFound: Chapter or book missing/invisible
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteChapter(request.Context(), requestutil.ID(request, "chapterID"), actorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
