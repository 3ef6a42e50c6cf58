// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses forms, renders pages, redirects
//	Service (Business layer) → validates, applies defaulting rules
//	Repository (Data layer)  → reads/writes SQLite
//
// Services accept plain Go values and return domain errors from apperror.
// They know nothing about HTTP, so the same rules apply to the admin forms,
// the seeding step and the tests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/model"
	"github.com/burakyalinat/portfolio/internal/repository"
)

// Field limits, matching the column sizes of the first version of the site.
const (
	MaxTitleLength = 200
	MaxLinkLength  = 500
)

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	Title       string
	Description string
	GitHubLink  string
	ImageURL    string
}

// ProjectService is the catalog: public reads plus the admin mutations.
// Gating happens in the HTTP layer; by the time a mutation reaches this
// service the caller is already authenticated.
type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
}

// NewProjectService creates a ProjectService on top of any ProjectRepository.
func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		logger: logger,
	}
}

// ListProjects returns all projects in ascending id order.
func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetProject returns one project or an apperror.ErrNotFound.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	return s.repo.GetProject(ctx, id)
}

// AddProject validates and stores a new project.
//
// Title and description are required after trimming. Links are optional
// and stored as "" when absent. On a validation error nothing is written.
func (s *ProjectService) AddProject(ctx context.Context, in ProjectInput) (*model.Project, error) {
	p := &model.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		GitHubLink:  strings.TrimSpace(in.GitHubLink),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}

	if p.Title == "" {
		return nil, apperror.ValidationFailed("title", "Title is required")
	}
	if p.Description == "" {
		return nil, apperror.ValidationFailed("description", "Description is required")
	}
	if err := checkLengths(p.Title, p.GitHubLink, p.ImageURL); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		s.logger.Error("failed to create project",
			slog.String("title", p.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.Int64("id", p.ID),
		slog.String("title", p.Title),
	)
	return p, nil
}

// EditProject applies a partial update.
//
// DEFAULTING RULES:
//   - a nil field is left unchanged
//   - a blank title or description is also left unchanged; both must stay
//     non-empty, so blank can only mean "not edited"
//   - a blank link clears the link
func (s *ProjectService) EditProject(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	patch = normalizePatch(patch)

	var title, github, image string
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.GitHubLink != nil {
		github = *patch.GitHubLink
	}
	if patch.ImageURL != nil {
		image = *patch.ImageURL
	}
	if err := checkLengths(title, github, image); err != nil {
		return nil, err
	}

	// An empty patch still has to report NotFound for an unknown id.
	if patch.IsEmpty() {
		return s.repo.GetProject(ctx, id)
	}

	p, err := s.repo.PatchProject(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		slog.Int64("id", p.ID),
		slog.String("title", p.Title),
	)
	return p, nil
}

// DeleteProject removes a project permanently.
// Returns apperror.ErrNotFound if the id does not exist.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", slog.Int64("id", id))
	return nil
}

func normalizePatch(patch model.ProjectPatch) model.ProjectPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	required := func(v *string) *string {
		if v = trim(v); v == nil || *v == "" {
			return nil
		}
		return v
	}

	return model.ProjectPatch{
		Title:       required(patch.Title),
		Description: required(patch.Description),
		GitHubLink:  trim(patch.GitHubLink),
		ImageURL:    trim(patch.ImageURL),
	}
}

func checkLengths(title, githubLink, imageURL string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("Title must be %d characters or less", MaxTitleLength))
	}
	if utf8.RuneCountInString(githubLink) > MaxLinkLength {
		return apperror.ValidationFailed("github_link",
			fmt.Sprintf("GitHub link must be %d characters or less", MaxLinkLength))
	}
	if utf8.RuneCountInString(imageURL) > MaxLinkLength {
		return apperror.ValidationFailed("image_url",
			fmt.Sprintf("Image URL must be %d characters or less", MaxLinkLength))
	}
	return nil
}
