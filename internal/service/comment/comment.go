package comment

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository"
)

type CommentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CommentService {
	return &CommentService{storage: storage}
}

func (s *CommentService) Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Comment, error) {
	return s.storage.Comment().GetByID(ctx, id, viewerID)
}

// Update changes comment content. Only the author may edit their comment.
// The ownership check and the write run in one transaction
func (s *CommentService) Update(ctx context.Context, id uuid.UUID, user *models.User, content string) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		comment, err := st.Comment().GetByID(ctx, id, uuid.Nil)
		if err != nil {
			return err
		}
		if comment.AuthorID != user.ID {
			return apperrors.ErrForbidden
		}

		return st.Comment().UpdateContent(ctx, id, content)
	})
}

// Delete removes the comment. Only the author may delete their comment
func (s *CommentService) Delete(ctx context.Context, id uuid.UUID, user *models.User) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		comment, err := st.Comment().GetByID(ctx, id, uuid.Nil)
		if err != nil {
			return err
		}
		if comment.AuthorID != user.ID {
			return apperrors.ErrForbidden
		}

		return st.Comment().Delete(ctx, id)
	})
}

// SetLikeStatus upserts the user reaction on the comment
// Returns apperrors.ErrCommentNotFound if the comment does not exist
func (s *CommentService) SetLikeStatus(ctx context.Context, commentID uuid.UUID, user *models.User, status models.LikeStatus) error {
	_, err := s.storage.Comment().GetByID(ctx, commentID, uuid.Nil)
	if err != nil {
		return err
	}

	return s.storage.Comment().SetLikeStatus(ctx, commentID, user.ID, status)
}
