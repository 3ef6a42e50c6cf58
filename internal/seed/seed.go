// Package seed fills an empty database with its initial content.
//
// SEEDING RULES:
//   - the example projects are inserted only when the projects table is empty
//   - the bootstrap administrator is created only when the admins table is
//     empty and a credential was configured
//
// Both checks run on every start, so seeding is idempotent: once a table has
// any row, it is never seeded again, even if the admin later deletes every
// project.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/burakyalinat/portfolio/internal/model"
	"github.com/burakyalinat/portfolio/internal/service"
)

//go:embed projects.yaml
var defaultProjects []byte

// Counter reports how many rows the seeded tables hold.
// *sqlite.DB satisfies it.
type Counter interface {
	CountProjects(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}

// Catalog adds a project with the same validation as the admin pages.
// *service.ProjectService satisfies it.
type Catalog interface {
	AddProject(ctx context.Context, in service.ProjectInput) (*model.Project, error)
}

// AdminCreator hashes and stores a credential.
// *service.AuthService satisfies it.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, username, password string) (*model.Admin, error)
}

// AdminCredential is the bootstrap administrator.
type AdminCredential struct {
	Username string
	Password string
}

// Options controls one seeding run.
type Options struct {
	Projects []model.Project
	// Admin is nil when the site runs without the admin pages.
	Admin *AdminCredential
}

// Result reports what a run inserted.
type Result struct {
	ProjectsSeeded int
	AdminSeeded    bool
}

// Seeder applies the seeding rules.
type Seeder struct {
	counts  Counter
	catalog Catalog
	admins  AdminCreator
	logger  *slog.Logger
}

// New creates a Seeder. admins may be nil when the site has no admin pages.
func New(counts Counter, catalog Catalog, admins AdminCreator, logger *slog.Logger) *Seeder {
	return &Seeder{
		counts:  counts,
		catalog: catalog,
		admins:  admins,
		logger:  logger,
	}
}

// Run seeds whatever is still empty. It must finish before the server starts
// accepting requests.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	n, err := s.counts.CountProjects(ctx)
	if err != nil {
		return res, fmt.Errorf("seed: counting projects: %w", err)
	}
	if n == 0 {
		for _, p := range opts.Projects {
			_, err := s.catalog.AddProject(ctx, service.ProjectInput{
				Title:       p.Title,
				Description: p.Description,
				GitHubLink:  p.GitHubLink,
				ImageURL:    p.ImageURL,
			})
			if err != nil {
				return res, fmt.Errorf("seed: inserting project %q: %w", p.Title, err)
			}
			res.ProjectsSeeded++
		}
		if res.ProjectsSeeded > 0 {
			s.logger.Info("seed data added", slog.Int("projects", res.ProjectsSeeded))
		}
	}

	if opts.Admin == nil || s.admins == nil {
		return res, nil
	}

	n, err = s.counts.CountAdmins(ctx)
	if err != nil {
		return res, fmt.Errorf("seed: counting admins: %w", err)
	}
	if n > 0 {
		return res, nil
	}

	if strings.TrimSpace(opts.Admin.Username) == "" || opts.Admin.Password == "" {
		s.logger.Warn("no administrator exists and no bootstrap credential is configured; admin pages are unreachable until ADMIN_PASSWORD is set")
		return res, nil
	}

	admin, err := s.admins.CreateAdmin(ctx, opts.Admin.Username, opts.Admin.Password)
	if err != nil {
		return res, fmt.Errorf("seed: creating bootstrap admin: %w", err)
	}
	res.AdminSeeded = true

	s.logger.Info("bootstrap administrator created", slog.String("username", admin.Username))
	return res, nil
}

type seedFile struct {
	Projects []struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		GitHubLink  string `yaml:"github_link"`
		ImageURL    string `yaml:"image_url"`
	} `yaml:"projects"`
}

// LoadProjects reads the example projects from a YAML file, or from the
// built-in list when path is empty.
func LoadProjects(path string) ([]model.Project, error) {
	data := defaultProjects
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("seed: reading %s: %w", path, err)
		}
	}
	return ParseProjects(data)
}

// ParseProjects decodes seed YAML. Every entry needs a title and a
// description, the same as a project created through the admin pages.
func ParseProjects(data []byte) ([]model.Project, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parsing projects: %w", err)
	}

	projects := make([]model.Project, 0, len(f.Projects))
	for i, e := range f.Projects {
		p := model.Project{
			Title:       strings.TrimSpace(e.Title),
			Description: strings.TrimSpace(e.Description),
			GitHubLink:  strings.TrimSpace(e.GitHubLink),
			ImageURL:    strings.TrimSpace(e.ImageURL),
		}
		if p.Title == "" || p.Description == "" {
			return nil, fmt.Errorf("seed: project %d: title and description are required", i+1)
		}
		projects = append(projects, p)
	}
	return projects, nil
}
