package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
	"github.com/sakif/devconnector/internal/validate"
)

// PostInput is the body of POST /api/posts and POST /api/posts/comment/{id}.
type PostInput struct {
	Text string `json:"text" validate:"required" msg:"Text is required"`
}

// PostService handles the feed: posts, likes and comments. Author name and
// avatar are copied from the user record when a post or comment is written.
type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

func (s *PostService) Create(ctx context.Context, callerID string, in PostInput) (*model.Post, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, callerID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   callerID,
		Text:     in.Text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []model.Like{},
		Comments: []model.Comment{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("userID", callerID),
		slog.String("postID", post.ID),
	)
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}

// Get answers a malformed id exactly like an unknown one.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if _, err := xid.FromString(id); err != nil {
		return nil, apperror.NotFound("Post not found")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("loading post", err)
	}
	return post, nil
}

// Delete removes a post. Only its author may delete it.
func (s *PostService) Delete(ctx context.Context, callerID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return apperror.Forbidden("User not authorized")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return s.wrap("deleting post", err)
	}

	s.logger.Info("post deleted",
		slog.String("userID", callerID),
		slog.String("postID", id),
	)
	return nil
}

// ToggleLike adds the caller's like at the front, or removes it if the caller
// already liked the post. It returns the resulting likes.
func (s *PostService) ToggleLike(ctx context.Context, callerID, id string) ([]model.Like, error) {
	if _, err := s.author(ctx, callerID); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if i := post.LikedBy(callerID); i >= 0 {
		post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
	} else {
		like := model.Like{ID: xid.New().String(), UserID: callerID}
		post.Likes = append([]model.Like{like}, post.Likes...)
	}

	if err := s.posts.SaveActivity(ctx, post); err != nil {
		return nil, s.wrap("saving likes", err)
	}
	return post.Likes, nil
}

// AddComment puts a comment by the caller at the front of the post's
// comments and returns them.
func (s *PostService) AddComment(ctx context.Context, callerID, id string, in PostInput) ([]model.Comment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, callerID)
	if err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:        xid.New().String(),
		UserID:    callerID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: time.Now(),
	}
	post.Comments = append([]model.Comment{comment}, post.Comments...)

	if err := s.posts.SaveActivity(ctx, post); err != nil {
		return nil, s.wrap("saving comments", err)
	}

	s.logger.Info("comment added",
		slog.String("postID", id),
		slog.String("commentID", comment.ID),
	)
	return post.Comments, nil
}

// DeleteComment removes one comment. Only the comment's author may remove it.
func (s *PostService) DeleteComment(ctx context.Context, callerID, id, commentID string) ([]model.Comment, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	i := post.IndexOfComment(commentID)
	if i < 0 {
		return nil, apperror.NotFound("Comment does not exist")
	}
	if post.Comments[i].UserID != callerID {
		return nil, apperror.Forbidden("User not authorized")
	}
	post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)

	if err := s.posts.SaveActivity(ctx, post); err != nil {
		return nil, s.wrap("saving comments", err)
	}
	return post.Comments, nil
}

// author loads the caller for the name and avatar snapshot. A token whose
// account is gone is treated as unauthenticated.
func (s *PostService) author(ctx context.Context, callerID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Token is not valid")
		}
		return nil, fmt.Errorf("service/post: loading author %s: %w", callerID, err)
	}
	return user, nil
}

func (s *PostService) wrap(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("service/post: %s: %w", op, err)
}
