// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware and
// routes, and it decides which routes exist at all. A site started with
// AUTH_ENABLED=false is a read-only portfolio with no login and no admin
// pages.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB → ProjectService → PageHandler, AdminHandler
//	  sqlite.DB → AuthService    → AuthHandler
//	  ProjectService, AuthService → seed.Seeder (runs once, before any request)
//	  chat.Proxy → ChatHandler
//
// This is the "composition root": every dependency is built here and handed
// down, so no package reaches for globals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/chat"
	"github.com/burakyalinat/portfolio/internal/config"
	"github.com/burakyalinat/portfolio/internal/handler"
	"github.com/burakyalinat/portfolio/internal/middleware"
	sqliteRepo "github.com/burakyalinat/portfolio/internal/repository/sqlite"
	"github.com/burakyalinat/portfolio/internal/seed"
	"github.com/burakyalinat/portfolio/internal/service"
	"github.com/burakyalinat/portfolio/web"
)

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 30 * time.Second

// Option customises a Server. Tests use options to replace external
// services.
type Option func(*options)

type options struct {
	chatFactory chat.GeneratorFactory
	chatKey     func() string
	github      *auth.GitHubProvider
}

// WithChatFactory replaces the Gemini client factory.
func WithChatFactory(f chat.GeneratorFactory) Option {
	return func(o *options) { o.chatFactory = f }
}

// WithChatKey replaces the environment lookup of the chat API key.
func WithChatKey(f func() string) Option {
	return func(o *options) { o.chatKey = f }
}

// WithGitHubProvider replaces the GitHub OAuth provider built from config.
func WithGitHubProvider(p *auth.GitHubProvider) Option {
	return func(o *options) { o.github = p }
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after a
// graceful shutdown; callers that never Start (tests) call Close.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	chat   *chat.Proxy
}

// New opens the database, seeds it, and builds the router.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// === CREATE DATABASE ===
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setup(o); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) setup(o options) error {
	cfg := s.config
	passwords := auth.NewPasswordServiceWithCost(cfg.BcryptCost)

	// === SERVICES ===
	projectService := service.NewProjectService(s.db, s.logger)

	s.chat = chat.NewProxy(chat.Config{
		Model:        cfg.GeminiModel,
		SystemPrompt: cfg.ChatSystemPrompt,
		Timeout:      cfg.ChatTimeout,
		KeyFunc:      o.chatKey,
		Factory:      o.chatFactory,
	}, s.logger)

	var (
		tokens      *auth.TokenService
		authService *service.AuthService
		github      = o.github
		err         error
	)
	if cfg.AuthEnabled {
		tokens, err = auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		authService = service.NewAuthService(s.db, tokens, passwords, s.logger)
		authService.AllowGitHubLogins(cfg.AdminGitHubLogins)

		if github == nil && cfg.GitHubEnabled() {
			github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
		}
	} else {
		github = nil
	}

	// === SEED ===
	// Runs to completion before the router exists, so no request can ever
	// observe a half-seeded store. Both inserts go through the services and
	// get the same validation as the admin pages.
	projects, err := seed.LoadProjects(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("loading seed projects: %w", err)
	}
	seedOpts := seed.Options{Projects: projects}
	var admins seed.AdminCreator
	if authService != nil {
		admins = authService
		seedOpts.Admin = &seed.AdminCredential{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
	}
	if _, err := seed.New(s.db, projectService, admins, s.logger).Run(context.Background(), seedOpts); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	render, err := handler.NewRenderer(web.Templates(), handler.RenderOptions{
		AuthEnabled:   cfg.AuthEnabled,
		GitHubEnabled: github != nil,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("setting up templates: %w", err)
	}

	// === HANDLERS ===
	pages := handler.NewPageHandler(projectService, render, s.logger)
	chatHandler := handler.NewChatHandler(s.chat, s.logger)
	health := handler.NewHealthHandler(s.db, s.logger)

	var (
		admin     *handler.AdminHandler
		authPages *handler.AuthHandler
	)
	if cfg.AuthEnabled {
		admin = handler.NewAdminHandler(projectService, render, s.logger)
		authPages = handler.NewAuthHandler(authService, github, render, auth.CookieOptions{
			Secure: cfg.CookieSecure,
			MaxAge: tokens.TTL(),
		}, s.logger)
	}

	s.routes(tokens, pages, admin, authPages, chatHandler, health)
	return nil
}

// routes registers every route.
//
// ROUTE STRUCTURE:
//
//	GET  /  /about  /projects  /contact     public pages
//	POST /api/chat                          chat proxy (JSON, CORS)
//	GET  /healthz                           liveness
//	GET  /static/*                          embedded CSS/JS
//	GET  /login   POST /login   POST /logout
//	GET  /auth/github/login  /auth/github/callback
//	     /admin/...                         gated by RequireAuth
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns the id the logger prints
//  2. RealIP: client IP from proxy headers
//  3. Logger: one line per request
//  4. Recoverer: a panic becomes a 500 instead of killing the process
func (s *Server) routes(
	tokens *auth.TokenService,
	pages *handler.PageHandler,
	admin *handler.AdminHandler,
	authPages *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	health *handler.HealthHandler,
) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	r.Get("/healthz", health.HandleHealth)

	// The widget calls the API from the site itself; CORS only matters when
	// the API is used from another origin listed in CORS_ALLOWED_ORIGINS.
	r.Route("/api", func(r chi.Router) {
		if len(s.config.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.config.CORSAllowedOrigins,
				AllowedMethods: []string{http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Post("/chat", chatHandler.HandleChat)
	})

	r.Group(func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.OptionalAuth(tokens))
		}

		r.Get("/", pages.HandleIndex)
		r.Get("/about", pages.HandleAbout)
		r.Get("/projects", pages.HandleProjects)
		r.Get("/contact", pages.HandleContact)

		if authPages != nil {
			r.Get("/login", authPages.HandleLoginPage)
			r.Post("/login", authPages.HandleLogin)
			r.Post("/logout", authPages.HandleLogout)
			r.Get("/auth/github/login", authPages.HandleGitHubLogin)
			r.Get("/auth/github/callback", authPages.HandleGitHubCallback)
		}

		r.NotFound(pages.HandleNotFound)
	})

	if admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/", admin.HandleList)
			r.Get("/projects/new", admin.HandleNew)
			r.Post("/projects", admin.HandleCreate)
			r.Get("/projects/{id}/edit", admin.HandleEdit)
			r.Post("/projects/{id}", admin.HandleUpdate)
			r.Post("/projects/{id}/delete", admin.HandleDelete)
		})
	}
}

// Handler returns the root http.Handler. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests (up to shutdownTimeout)
//  3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// A chat request may wait for the model for the whole chat timeout.
		WriteTimeout: s.chat.Timeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.config.AuthEnabled),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
