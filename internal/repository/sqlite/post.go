package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

var _ repository.PostRepository = (*PostStore)(nil)

type PostStore struct {
	conn *sql.DB
}

func errNoPost() error {
	return apperror.NotFound("Post not found")
}

func selectPosts() sq.SelectBuilder {
	return builder.Select(
		"id", "user_id", "text", "name", "avatar", "likes", "comments", "created_at",
	).From("posts")
}

// Create inserts post and fills in its ID and CreatedAt.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	likes, err := encodeJSON(post.Likes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding likes: %w", err)
	}
	comments, err := encodeJSON(post.Comments)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comments: %w", err)
	}

	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	query, args, err := builder.Insert("posts").
		Columns("id", "user_id", "text", "name", "avatar", "likes", "comments", "created_at").
		Values(post.ID, post.UserID, post.Text, post.Name, post.Avatar, likes, comments, post.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building post insert: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building post query: %w", err)
	}

	p, err := scanPost(s.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNoPost()
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return p, nil
}

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context) ([]model.Post, error) {
	query, args, err := selectPosts().OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building post list query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// SaveActivity writes back the likes and comments lists of post.
func (s *PostStore) SaveActivity(ctx context.Context, post *model.Post) error {
	likes, err := encodeJSON(post.Likes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding likes: %w", err)
	}
	comments, err := encodeJSON(post.Comments)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comments: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET likes = ?, comments = ? WHERE id = ?`,
		likes,
		comments,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving activity for post %s: %w", post.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return errNoPost()
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return errNoPost()
	}
	return nil
}

func scanPost(row scanner) (*model.Post, error) {
	var (
		p               model.Post
		likes, comments string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar,
		&likes, &comments, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Likes, err = decodeJSON[model.Like](likes); err != nil {
		return nil, fmt.Errorf("decoding likes: %w", err)
	}
	if p.Comments, err = decodeJSON[model.Comment](comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	return &p, nil
}
