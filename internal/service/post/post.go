package post

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository"
)

// PostService serves the public post surface: reading posts, commenting and
// reacting. Post creation is blog-scoped and lives in the blog service
type PostService struct {
	posts    repository.PostRepo
	comments repository.CommentRepo
}

func NewService(posts repository.PostRepo, comments repository.CommentRepo) *PostService {
	return &PostService{posts: posts, comments: comments}
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Post, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

func (s *PostService) List(ctx context.Context, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error) {
	return s.posts.List(ctx, q, viewerID)
}

// SetLikeStatus upserts the user reaction on the post
// Returns apperrors.ErrPostNotFound if the post does not exist
func (s *PostService) SetLikeStatus(ctx context.Context, postID uuid.UUID, user *models.User, status models.LikeStatus) error {
	_, err := s.posts.GetByID(ctx, postID, uuid.Nil)
	if err != nil {
		return err
	}

	return s.posts.SetLikeStatus(ctx, postID, user.ID, status)
}

// CreateComment adds a comment of the user under the post
// Returns apperrors.ErrPostNotFound if the post does not exist
func (s *PostService) CreateComment(ctx context.Context, postID uuid.UUID, user *models.User, content string) (models.Comment, error) {
	_, err := s.posts.GetByID(ctx, postID, uuid.Nil)
	if err != nil {
		return models.Comment{}, err
	}

	return s.comments.Create(ctx, models.Comment{
		PostID:   postID,
		AuthorID: user.ID,
		Content:  content,
	})
}

// ListComments lists comments under the post
// Returns apperrors.ErrPostNotFound if the post does not exist
func (s *PostService) ListComments(ctx context.Context, postID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Comment], error) {
	_, err := s.posts.GetByID(ctx, postID, uuid.Nil)
	if err != nil {
		return models.Page[models.Comment]{}, err
	}

	return s.comments.ListByPost(ctx, postID, q, viewerID)
}
