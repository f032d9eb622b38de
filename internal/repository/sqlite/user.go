package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

type UserStore struct {
	conn *sql.DB
}

const userColumns = `id, name, email, password_hash, avatar, github_id, created_at`

// Create inserts a new account and fills in user.ID and user.CreatedAt.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		nullGitHubID(user.GitHubID),
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetUserByID returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpsertGitHub inserts or refreshes the account linked to user.GitHubID.
//
// An existing account keeps its internal ID and email; only name and avatar
// follow the GitHub profile. After the call user holds the stored record.
func (s *UserStore) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return fmt.Errorf("sqlite: upserting GitHub user: github id is required")
	}

	existing, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, user.GitHubID,
	))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existing != nil {
		_, err = s.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, avatar = ? WHERE id = ?`,
			user.Name,
			user.Avatar,
			existing.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", existing.ID, err)
		}
		existing.Name = user.Name
		existing.Avatar = user.Avatar
		*user = *existing
		return nil
	}

	return s.Create(ctx, user)
}

func scanUser(row scanner) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Avatar,
		&githubID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	return &u, nil
}

// nullGitHubID stores password accounts with a NULL github_id so the UNIQUE
// index does not collide on zero.
func nullGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
