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

// compile-time check that *DB implements repository.AdminRepository
var _ repository.AdminRepository = (*DB)(nil)

// CreateAdmin inserts a credential. The caller hashes the password first;
// this layer never sees plaintext.
//
// Returns apperror.ErrConflict if the username is taken (UNIQUE constraint).
func (db *DB) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)`,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("admin", admin.Username)
		}
		return fmt.Errorf("sqlite: creating admin %q: %w", admin.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new admin id: %w", err)
	}
	admin.ID = id

	return nil
}

// GetAdminByUsername looks up a credential for login.
// Returns apperror.ErrNotFound if no admin has that username.
func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`,
		username,
	).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("admin", username)
		}
		return nil, fmt.Errorf("sqlite: getting admin %q: %w", username, err)
	}

	return &a, nil
}

// CountAdmins returns the number of stored credentials.
func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting admins: %w", err)
	}
	return n, nil
}
