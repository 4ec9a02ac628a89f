package postgres

import (
	"context"
	"fmt"

	"github.com/mkuznecov/blogplatform/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Session() repository.SessionRepo {
	return &SessionRepo{DB: s.db}
}

func (s *Storage) Blog() repository.BlogRepo {
	return &BlogRepo{DB: s.db}
}

func (s *Storage) Post() repository.PostRepo {
	return &PostRepo{DB: s.db}
}

func (s *Storage) Comment() repository.CommentRepo {
	return &CommentRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}

const truncateAll = `-- name: TruncateAll
TRUNCATE comment_likes, post_likes, comments, posts, blogs, device_sessions, users
`

// Wipe everything. Used by the testing endpoint only
func (s *Storage) TruncateAll(ctx context.Context) error {
	_, err := s.db.Exec(ctx, truncateAll)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
