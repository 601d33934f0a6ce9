// Package userstore persists user accounts in SQLite. All
// non-administrative lookups exclude soft-deleted rows (deleted_at set).
package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"synapse/pkg/logger"
)

// ErrNotFound reports a lookup that matched no live row.
var ErrNotFound = errors.New("user not found")

// User is the storage shape of an account, including password material.
// Only pkg/auth consumes PasswordHash; it is never serialized to
// clients.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    sql.NullString
}

// Store wraps the users table.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	deleted_at    TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_live ON users(email) WHERE deleted_at IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS users_username_live ON users(username) WHERE deleted_at IS NULL;
`

// Open opens (or creates) the user database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply user schema: %w", err)
	}
	logger.Info("userstore_opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Create inserts a new user and returns the stored row.
func (s *Store) Create(ctx context.Context, email, username, passwordHash string) (*User, error) {
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		email, username, passwordHash, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *Store) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const cols = `id, email, username, password_hash, created_at, updated_at, deleted_at`

// FindByEmail returns the live user with the given email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM users WHERE email = ? AND deleted_at IS NULL`, email))
}

// FindByUsername returns the live user with the given username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM users WHERE username = ? AND deleted_at IS NULL`, username))
}

// FindByID returns the live user with the given id.
func (s *Store) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM users WHERE id = ? AND deleted_at IS NULL`, id))
}

// EmailExists reports whether a live user holds the email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UsernameExists reports whether a live user holds the username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdatePassword replaces the stored hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.touchUpdate(ctx, id,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash)
}

// UpdateProfile updates email and/or username; empty values keep the
// current one.
func (s *Store) UpdateProfile(ctx context.Context, id int64, email, username string) (*User, error) {
	if email != "" {
		if err := s.touchUpdate(ctx, id,
			`UPDATE users SET email = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, email); err != nil {
			return nil, err
		}
	}
	if username != "" {
		if err := s.touchUpdate(ctx, id,
			`UPDATE users SET username = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, username); err != nil {
			return nil, err
		}
	}
	return s.FindByID(ctx, id)
}

// touchUpdate runs an UPDATE of shape (value, updated_at, id) and maps
// zero affected rows to ErrNotFound.
func (s *Store) touchUpdate(ctx context.Context, id int64, query string, value any) error {
	res, err := s.db.ExecContext(ctx, query, value, now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks the user deleted; it disappears from all
// non-administrative lookups.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now(), now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	logger.Info("user_soft_deleted", "id", id)
	return nil
}

// HardDelete physically removes the row.
func (s *Store) HardDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	logger.Info("user_hard_deleted", "id", id)
	return nil
}

// Restore clears the deletion timestamp.
func (s *Store) Restore(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`,
		now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	logger.Info("user_restored", "id", id)
	return nil
}

// Stats summarizes the table for administrative reads.
type Stats struct {
	TotalUsers   int `json:"totalUsers"`
	RecentUsers  int `json:"recentUsers"`
	DeletedUsers int `json:"deletedUsers"`
}

// GetStats counts live, recently created (24h) and soft-deleted users.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	dayAgo := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*) FILTER (WHERE deleted_at IS NULL),
		COUNT(*) FILTER (WHERE deleted_at IS NULL AND created_at >= ?),
		COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
	FROM users`, dayAgo)
	if err := row.Scan(&st.TotalUsers, &st.RecentUsers, &st.DeletedUsers); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// PurgeDeletedBefore hard-deletes rows soft-deleted before the cutoff.
// Used by the retention job.
func (s *Store) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE deleted_at IS NOT NULL AND deleted_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
