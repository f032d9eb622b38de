package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/repository"
)

var _ repository.AccountRepository = (*DB)(nil)

// DeleteAccount removes the user's posts, profile and user row in one
// transaction. Child rows go first so the foreign keys on posts and profiles
// hold at every step. A user that no longer exists rolls everything back and
// reports NotFound.
func (db *DB) DeleteAccount(ctx context.Context, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning account deletion: %w", err)
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: deleting posts of user %s: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: deleting profile of user %s: %w", userID, err)
	}

	n, err := execCount(ctx, tx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", userID, err)
	}
	if n == 0 {
		return apperror.NotFound("User not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing account deletion: %w", err)
	}
	return nil
}

func execCount(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
