// Package repository declares the storage interfaces the services depend on.
// Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/burakyalinat/portfolio/internal/model"
)

// ProjectRepository is the record store for portfolio projects.
//
// Every method is atomic with respect to a single project. Lookups of an
// unknown id return an error wrapping apperror.ErrNotFound.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	// ListProjects returns every project in ascending id order.
	ListProjects(ctx context.Context) ([]model.Project, error)
	// PatchProject applies patch to the stored project and returns the result.
	PatchProject(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	CountProjects(ctx context.Context) (int, error)
}

// AdminRepository is the credential store.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}
