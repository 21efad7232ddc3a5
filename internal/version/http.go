// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package version

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/prosepilot/api/internal/platform/request"
	"github.com/prosepilot/api/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter version histories.
type Handler struct {
	service *Service
}

// NewHandler constructs a new version [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register attaches the history endpoints to the authenticated /chapters
// route group, shared with the chapter item handler.
func (handler *Handler) Register(router chi.Router) {
	router.Get("/{chapterID}/versions", handler.listVersions)
	router.Get("/{chapterID}/content", handler.currentContent)
	router.Post("/{chapterID}/versions", handler.createVersion)
	router.Post("/{chapterID}/versions/{versionID}/restore", handler.restoreVersion)
}

// # History Endpoints

/*
GET /api/v1/chapters/{chapterID}/versions.

Description: Returns the full history, newest first. The first element is
the current version; labels count down to "Version 1" for the oldest.

Response:
  - 200: []Version: Decorated descending history
  - 404: ErrNotFound: Chapter or book missing/invisible
*/
func (handler *Handler) listVersions(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	versions, err := handler.service.ListVersions(request.Context(), requestutil.ID(request, "chapterID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, versions)
}

/*
GET /api/v1/chapters/{chapterID}/content.

Description: Returns the chapter's current editable content — the newest
version's content, or the empty string for a chapter without versions.

Response:
  - 200: {content}: Current content
  - 404: ErrNotFound: Chapter or book missing/invisible
*/
func (handler *Handler) currentContent(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.service.CurrentContent(request.Context(), requestutil.ID(request, "chapterID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"content": content})
}

/*
POST /api/v1/chapters/{chapterID}/versions.

Description: The explicit save: appends a new version that becomes the
chapter's current content. There is no overwrite or discard endpoint —
every save grows the history.

Request (Body):
  - content: string (may be empty)

Response:
  - 201: Version: The appended version
  - 404: ErrNotFound: Chapter or book missing/invisible
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) createVersion(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	version, err := handler.service.CreateVersion(request.Context(),
		requestutil.ID(request, "chapterID"), actorID, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, version)
}

/*
POST /api/v1/chapters/{chapterID}/versions/{versionID}/restore.

Description: Appends a new version copying the target's content. The
target and everything above it survive; restoring the current version is
rejected.

Response:
  - 201: Version: The newly appended version
  - 400: ValidationError: Version is current or belongs to another chapter
  - 404: ErrNotFound: Chapter, version, or book missing/invisible
  - 409: NOT_EDITABLE: Book is published
*/
func (handler *Handler) restoreVersion(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	version, err := handler.service.RestoreVersion(request.Context(),
		requestutil.ID(request, "chapterID"), requestutil.ID(request, "versionID"), actorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, version)
}
