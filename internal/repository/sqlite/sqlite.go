// Package sqlite implements the repository interfaces on SQLite
// (modernc.org/sqlite, pure Go, no cgo).
//
// Profiles and posts are stored as documents: scalar attributes are columns,
// while nested lists (skills, experience, education, likes, comments) and the
// social sub-object are JSON text columns that are read, mutated in Go, and
// written back whole. The social column is the exception on update: sparse
// profile updates patch it in place with json_set.
//
// One *DB owns the connection pool and hands out a store per aggregate:
//
//	db.Users()    → repository.UserRepository
//	db.Profiles() → repository.ProfileRepository
//	db.Posts()    → repository.PostRepository
//
// *DB itself is the repository.AccountRepository, since account deletion
// spans all three tables inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/devconnector.db" → file-based database (persistent)
//   - ":memory:"             → in-memory database, used by the tests
//
// The pool is limited to a single connection. SQLite allows one writer at a
// time anyway, and every ":memory:" connection would otherwise open its own
// empty database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Off by default in SQLite.
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

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

func (db *DB) Profiles() *ProfileStore {
	return &ProfileStore{conn: db.conn}
}

func (db *DB) Posts() *PostStore {
	return &PostStore{conn: db.conn}
}

// migrate creates the schema. Every statement is idempotent, so it runs on
// each start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// user_id is UNIQUE: at most one profile per user.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE REFERENCES users(id),
			company        TEXT NOT NULL DEFAULT '',
			website        TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			bio            TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT '',
			skills         TEXT NOT NULL DEFAULT '[]',
			githubusername TEXT NOT NULL DEFAULT '',
			social         TEXT NOT NULL DEFAULT '{}',
			experience     TEXT NOT NULL DEFAULT '[]',
			education      TEXT NOT NULL DEFAULT '[]',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			likes      TEXT NOT NULL DEFAULT '[]',
			comments   TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

// encodeJSON marshals a document column. Nil slices are stored as [] so
// the column never holds JSON null.
func encodeJSON[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeJSON unmarshals a JSON list column, always returning a non-nil slice.
func decodeJSON[T any](s string) ([]T, error) {
	out := []T{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// builder produces SQLite-style "?" placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
