package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devconnector/internal/apperror"
)

func TestDeleteAccount_RemovesEverythingOwned(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "ada")
	createTestProfile(t, db, user)
	createTestPost(t, db, user, "one")
	createTestPost(t, db, user, "two")

	other := createTestUser(t, db, "grace")
	createTestProfile(t, db, other)
	kept := createTestPost(t, db, other, "stays")

	if err := db.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	if _, err := db.Users().GetUserByID(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("user still present: err = %v", err)
	}
	if _, err := db.Profiles().GetByUserID(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("profile still present: err = %v", err)
	}

	posts, err := db.Posts().List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 1 || posts[0].ID != kept.ID {
		t.Errorf("remaining posts = %+v, want only %s", posts, kept.ID)
	}

	if _, err := db.Profiles().GetByUserID(ctx, other.ID); err != nil {
		t.Errorf("other user's profile was removed: %v", err)
	}
}

func TestDeleteAccount_WithoutProfileOrPosts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ada")

	if err := db.DeleteAccount(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteAccount(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("DeleteAccount() error = %v, want ErrNotFound", err)
	}
}
