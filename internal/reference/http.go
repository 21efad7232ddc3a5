// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prosepilot/api/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the read-only HTTP layer for master data.
type Handler struct {
	repo Repository
}

// NewHandler constructs a reference [Handler]. No service layer sits in
// between: there are no business rules on straight vocabulary reads.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes returns the reference endpoints. Public: the vocabularies leak
// nothing and the editor needs them before any book exists.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/languages", handler.listLanguages)
	router.Get("/categories", handler.listCategories)

	return router
}

/*
GET /api/v1/languages.

Response:
  - 200: []Language: Supported writing languages ordered by code
*/
func (handler *Handler) listLanguages(writer http.ResponseWriter, request *http.Request) {
	languages, err := handler.repo.ListLanguages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, languages)
}

/*
GET /api/v1/categories.

Response:
  - 200: []Category: Category taxonomy ordered by name
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.repo.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}
