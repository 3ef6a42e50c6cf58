package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/model"
	"github.com/burakyalinat/portfolio/internal/service"
)

const adminPath = "/admin"

// maxFormBytes caps admin form bodies. A description is long text, but not
// megabytes.
const maxFormBytes = 1 << 20

// AdminHandler serves the project management pages.
//
// Every route is mounted behind auth.RequireAuth, so a request that reaches
// these methods already carries a principal in its context.
//
// Mutations follow post/redirect/get: the outcome is flashed and the
// browser is sent back with 303 See Other, so a refresh never re-submits.
type AdminHandler struct {
	projects *service.ProjectService
	render   *Renderer
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(projects *service.ProjectService, render *Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		projects: projects,
		render:   render,
		logger:   logger,
	}
}

// HandleList serves GET /admin.
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, r, http.StatusOK, "admin", viewData{
		Title:    "Yönetim",
		Projects: projects,
	})
}

// HandleNew serves GET /admin/projects/new.
func (h *AdminHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "project_form", viewData{Title: "Yeni Proje"})
}

// HandleCreate serves POST /admin/projects.
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	in := service.ProjectInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		GitHubLink:  r.PostForm.Get("github_link"),
		ImageURL:    r.PostForm.Get("image_url"),
	}

	p, err := h.projects.AddProject(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, adminPath+"/projects/new")
		return
	}

	h.audit(r, "project added", p.ID)
	setFlash(w, flashSuccess, "Project added successfully")
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// HandleEdit serves GET /admin/projects/{id}/edit.
func (h *AdminHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		h.render.NotFound(w, r)
		return
	}

	p, err := h.projects.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFound(w, r)
			return
		}
		h.logger.Error("loading project for edit",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, r, http.StatusOK, "project_form", viewData{
		Title:   "Projeyi Düzenle",
		Project: p,
	})
}

// HandleUpdate serves POST /admin/projects/{id}.
//
// Only fields present in the form become part of the patch. A client that
// posts just "title" changes just the title.
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	patch := model.ProjectPatch{
		Title:       formField(r, "title"),
		Description: formField(r, "description"),
		GitHubLink:  formField(r, "github_link"),
		ImageURL:    formField(r, "image_url"),
	}

	if _, err := h.projects.EditProject(r.Context(), id, patch); err != nil {
		h.fail(w, r, err, fmt.Sprintf("%s/projects/%d/edit", adminPath, id))
		return
	}

	h.audit(r, "project updated", id)
	setFlash(w, flashSuccess, "Project updated successfully")
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// HandleDelete serves POST /admin/projects/{id}/delete.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.projects.DeleteProject(r.Context(), id); err != nil {
		h.fail(w, r, err, adminPath)
		return
	}

	h.audit(r, "project deleted", id)
	setFlash(w, flashSuccess, "Project deleted successfully")
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *AdminHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		setFlash(w, flashError, "Invalid form submission")
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
		return false
	}
	return true
}

// fail flashes err and redirects.
//
//   - validation errors go back to the form (formPath)
//   - an unknown project goes to the list
//   - anything else is logged and reported generically on the list
func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error, formPath string) {
	var appErr *apperror.AppError
	switch {
	case errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr):
		setFlash(w, flashError, appErr.Message)
		http.Redirect(w, r, formPath, http.StatusSeeOther)
	case errors.Is(err, apperror.ErrNotFound):
		h.notFound(w, r)
	default:
		h.logger.Error("admin action failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		setFlash(w, flashError, "Something went wrong, please try again")
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
	}
}

func (h *AdminHandler) notFound(w http.ResponseWriter, r *http.Request) {
	setFlash(w, flashError, "Project not found")
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *AdminHandler) audit(r *http.Request, msg string, id int64) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	h.logger.Info(msg,
		slog.Int64("id", id),
		slog.String("principal", principal),
	)
}

// projectID parses the {id} path parameter. Ids are positive integers.
func projectID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formField returns nil when key was not submitted at all, which is how a
// partial update leaves a field untouched.
func formField(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
