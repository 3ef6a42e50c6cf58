package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/model"
)

// pages lists every page template. Each one is parsed together with
// base.html, which defines the layout and pulls in the page's "content".
var pages = []string{
	"index",
	"about",
	"projects",
	"contact",
	"login",
	"admin",
	"project_form",
	"not_found",
}

// viewData is what every template receives. Pages use the fields they need.
type viewData struct {
	Title string

	// Filled by the Renderer
	AuthEnabled   bool
	GitHubEnabled bool
	Principal     string
	Flash         *Flash

	Projects []model.Project
	Project  *model.Project
	Next     string
}

// RenderOptions carries the site-wide switches the layout depends on.
type RenderOptions struct {
	AuthEnabled   bool
	GitHubEnabled bool
}

// Renderer executes page templates.
//
// Templates are parsed once at startup; a page that fails to parse stops
// the server from starting instead of failing on the first visitor.
type Renderer struct {
	pages  map[string]*template.Template
	opts   RenderOptions
	logger *slog.Logger
}

// NewRenderer parses base.html plus each page from fsys.
func NewRenderer(fsys fs.FS, opts RenderOptions, logger *slog.Logger) (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, "base.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		parsed[page] = tmpl
	}
	return &Renderer{pages: parsed, opts: opts, logger: logger}, nil
}

// Render writes page with status.
//
// The page is rendered into a buffer first. If execution fails halfway,
// the visitor gets a clean 500 instead of half a page with a 200 status.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.AuthEnabled = rd.opts.AuthEnabled
	data.GitHubEnabled = rd.opts.GitHubEnabled
	data.Principal, _ = auth.PrincipalFromContext(r.Context())
	data.Flash = popFlash(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// NotFound renders the 404 page.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "not_found", viewData{Title: "Sayfa bulunamadı"})
}
