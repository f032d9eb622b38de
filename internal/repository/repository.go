// Package repository declares the storage contracts the services depend on.
// internal/repository/sqlite implements them on one shared *sqlite.DB;
// service tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/devconnector/internal/model"
)

type UserRepository interface {
	// Create inserts a new password account. A taken email is apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub creates or refreshes the account linked to user.GitHubID
	// and fills in user.ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

// ProfileRepository stores profile documents. Reads return the profile joined
// with its owner's name and avatar.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	// Create inserts a new profile. A second profile for the same user is
	// apperror.ErrConflict.
	Create(ctx context.Context, profile *model.Profile) error
	// ApplyUpdate writes only the supplied fields of upd.
	ApplyUpdate(ctx context.Context, userID string, upd model.ProfileUpdate) error
	// SaveEntries persists the experience and education lists of profile.
	SaveEntries(ctx context.Context, profile *model.Profile) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]model.Post, error)
	// SaveActivity persists the likes and comments of post.
	SaveActivity(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository removes an account together with everything it owns.
type AccountRepository interface {
	// DeleteAccount deletes the user's posts, profile and user record
	// atomically: either all three go or none do.
	DeleteAccount(ctx context.Context, userID string) error
}
