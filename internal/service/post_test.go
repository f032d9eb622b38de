package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devconnector/internal/apperror"
)

func TestPostCreate(t *testing.T) {
	env := newTestEnv(t)
	u := env.addUser(t, "ada")

	p, err := env.post.Create(context.Background(), u.ID, PostInput{Text: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "ada", p.Name)
	assert.Equal(t, u.Avatar, p.Avatar)
	assert.Empty(t, p.Likes)
	assert.Empty(t, p.Comments)
}

func TestPostCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := env.addUser(t, "ada")

	_, err := env.post.Create(context.Background(), u.ID, PostInput{})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Text is required", err.Error())
	assert.Empty(t, env.posts.posts)
}

func TestPostCreate_DeletedAuthor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.post.Create(context.Background(), "gone", PostInput{Text: "hello"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestPostList_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.addUser(t, "ada")

	older, err := env.post.Create(ctx, u.ID, PostInput{Text: "older"})
	require.NoError(t, err)
	newer, err := env.post.Create(ctx, u.ID, PostInput{Text: "newer"})
	require.NoError(t, err)

	posts, err := env.post.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}

func TestPostGet_MalformedAndMissing(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"not-an-id", xid.New().String()} {
		_, err := env.post.Get(context.Background(), id)
		require.ErrorIs(t, err, apperror.ErrNotFound, "id %q", id)
		assert.Equal(t, "Post not found", err.Error())
	}
}

func TestPostDelete_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "ada")
	other := env.addUser(t, "grace")

	p, err := env.post.Create(ctx, owner.ID, PostInput{Text: "mine"})
	require.NoError(t, err)

	err = env.post.Delete(ctx, other.ID, p.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, "User not authorized", err.Error())
	assert.Contains(t, env.posts.posts, p.ID)

	require.NoError(t, env.post.Delete(ctx, owner.ID, p.ID))
	assert.NotContains(t, env.posts.posts, p.ID)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.addUser(t, "ada")
	fan := env.addUser(t, "grace")
	p, err := env.post.Create(ctx, author.ID, PostInput{Text: "like me"})
	require.NoError(t, err)

	likes, err := env.post.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, fan.ID, likes[0].UserID)

	likes, err = env.post.ToggleLike(ctx, author.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, author.ID, likes[0].UserID, "newest like goes first")

	likes, err = env.post.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, author.ID, likes[0].UserID)
}

func TestToggleLike_DeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.addUser(t, "ada")
	p, err := env.post.Create(ctx, author.ID, PostInput{Text: "like me"})
	require.NoError(t, err)

	_, err = env.post.ToggleLike(ctx, "gone", p.ID)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Empty(t, env.posts.posts[p.ID].Likes)
}

func TestToggleLike_SaveError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.addUser(t, "ada")
	p, err := env.post.Create(ctx, u.ID, PostInput{Text: "hello"})
	require.NoError(t, err)
	env.posts.saveErr = errors.New("database is locked")

	_, err = env.post.ToggleLike(ctx, u.ID, p.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.addUser(t, "ada")
	commenter := env.addUser(t, "grace")
	p, err := env.post.Create(ctx, author.ID, PostInput{Text: "discuss"})
	require.NoError(t, err)

	_, err = env.post.AddComment(ctx, commenter.ID, p.ID, PostInput{})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.post.AddComment(ctx, commenter.ID, p.ID, PostInput{Text: "first"})
	require.NoError(t, err)
	comments, err := env.post.AddComment(ctx, author.ID, p.ID, PostInput{Text: "second"})
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "ada", comments[0].Name)
	assert.Equal(t, "grace", comments[1].Name)
	assert.False(t, comments[0].CreatedAt.IsZero())

	// only the comment's author may remove it
	_, err = env.post.DeleteComment(ctx, author.ID, p.ID, comments[1].ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = env.post.DeleteComment(ctx, author.ID, p.ID, "missing")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Comment does not exist", err.Error())

	comments, err = env.post.DeleteComment(ctx, commenter.ID, p.ID, comments[1].ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Text)
}
