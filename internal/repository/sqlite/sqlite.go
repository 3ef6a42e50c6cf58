// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// A personal site runs as one process on one machine. SQLite lives inside the
// binary as a single file: no database server to run, back up, or secure.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// CONNECTION POOL:
// sql.DB is a pool, not a single connection. SQLite allows only one writer at
// a time, so the pool is capped at one open connection. Every statement is
// then serialized by database/sql itself, and ":memory:" databases behave
// (each new connection to ":memory:" would otherwise get its own empty DB).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "instance/site.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// OpenReadOnly opens an existing database without running migrations.
// Used by the dbview command, which must never change the file it inspects.
//
// mode=rw refuses to create a missing file; query_only rejects every write
// statement. Plain mode=ro is avoided because a WAL database still needs its
// shared-memory file to be writable.
func OpenReadOnly(dbPath string) (*DB, error) {
	conn, err := open("file:" + dbPath + "?mode=rw&_pragma=query_only(1)")
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn}, nil
}

func open(dsn string) (*sql.DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite.
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path fails here, not on the
	// first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	return conn, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to
// run on every start.
//
// AUTOINCREMENT matters: without it SQLite may hand out the id of a deleted
// row again. With it, ids only ever grow.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL CHECK (length(title) > 0),
			description TEXT NOT NULL CHECK (length(description) > 0),
			github_link TEXT NOT NULL DEFAULT '',
			image_url   TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE CHECK (length(username) > 0),
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating admins table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqlErr *msqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
