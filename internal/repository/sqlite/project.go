package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/model"
	"github.com/burakyalinat/portfolio/internal/repository"
)

// compile-time check that *DB implements repository.ProjectRepository
var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, title, description, github_link, image_url, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so one mapping
// function serves single-row lookups and list iteration.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProject maps one row (selected with projectColumns) to a model.Project.
// The column order here must match projectColumns exactly.
func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.GitHubLink,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project and fills in its ID and timestamps.
//
// The ID comes from SQLite (LastInsertId), not from Go: AUTOINCREMENT is what
// guarantees a deleted id is never handed out again.
func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (title, description, github_link, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.Title,
		project.Description,
		project.GitHubLink,
		project.ImageURL,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new project id: %w", err)
	}
	project.ID = id

	return nil
}

// GetProject retrieves a single project by its ID.
// Returns apperror.ErrNotFound if no row matches.
func (db *DB) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %d: %w", id, err)
	}
	return p, nil
}

// ListProjects returns every project, oldest (lowest id) first.
//
// There is no pagination: a portfolio holds a handful of entries and the
// projects page shows all of them.
func (db *DB) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	// CRITICAL: rows holds the pool's only connection until closed.
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// PatchProject applies a partial update inside a transaction.
//
// READ-MODIFY-WRITE:
// The SELECT and the UPDATE run in the same transaction, so no other writer
// can slip in between them and have its change silently overwritten.
func (db *DB) PatchProject(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning project update: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	p, err := scanProject(tx.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: loading project %d for update: %w", id, err)
	}

	p.Apply(patch)
	p.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, github_link = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title,
		p.Description,
		p.GitHubLink,
		p.ImageURL,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating project %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing project %d: %w", id, err)
	}

	return p, nil
}

// DeleteProject removes a project permanently.
// RowsAffected == 0 means the id did not exist.
func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", id)
	}

	return nil
}

// CountProjects returns the number of stored projects.
func (db *DB) CountProjects(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting projects: %w", err)
	}
	return n, nil
}
