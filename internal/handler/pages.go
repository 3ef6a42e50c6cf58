// Package handler contains the HTTP handlers of the site.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, form fields, JSON body)
//  2. Call the service layer
//  3. Write the response: a rendered page, a redirect, or JSON
//
// Handlers hold no business rules. Validation and defaulting live in
// internal/service so every entry point shares them.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/burakyalinat/portfolio/internal/service"
)

// PageHandler serves the public pages. None of them require a session.
type PageHandler struct {
	projects *service.ProjectService
	render   *Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(projects *service.ProjectService, render *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		projects: projects,
		render:   render,
		logger:   logger,
	}
}

// HandleIndex serves GET /.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "index", viewData{Title: "Ana Sayfa"})
}

// HandleAbout serves GET /about.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "about", viewData{Title: "Hakkımda"})
}

// HandleContact serves GET /contact.
func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "contact", viewData{Title: "İletişim"})
}

// HandleProjects serves GET /projects: every stored project, oldest first.
func (h *PageHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, r, http.StatusOK, "projects", viewData{
		Title:    "Projeler",
		Projects: projects,
	})
}

// HandleNotFound is the router's fallback for unknown paths.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render.NotFound(w, r)
}
