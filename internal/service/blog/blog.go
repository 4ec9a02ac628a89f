package blog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository"
)

// BlogService manages blogs and blog-scoped posts
type BlogService struct {
	blogs repository.BlogRepo
	posts repository.PostRepo
}

func NewService(blogs repository.BlogRepo, posts repository.PostRepo) *BlogService {
	return &BlogService{blogs: blogs, posts: posts}
}

func (s *BlogService) Create(ctx context.Context, name string, description string, websiteURL string) (models.Blog, error) {
	return s.blogs.Create(ctx, models.Blog{
		Name:        name,
		Description: description,
		WebsiteURL:  websiteURL,
	})
}

func (s *BlogService) Get(ctx context.Context, id uuid.UUID) (models.Blog, error) {
	return s.blogs.GetByID(ctx, id)
}

func (s *BlogService) Update(ctx context.Context, blog models.Blog) error {
	return s.blogs.Update(ctx, blog)
}

func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.blogs.Delete(ctx, id)
}

func (s *BlogService) List(ctx context.Context, q models.PageQuery, searchName string) (models.Page[models.Blog], error) {
	return s.blogs.List(ctx, q, searchName)
}

// CreatePost creates a post inside the blog
// Returns apperrors.ErrBlogNotFound if the blog does not exist
func (s *BlogService) CreatePost(ctx context.Context, blogID uuid.UUID, title string, shortDescription string, content string) (models.Post, error) {
	_, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return models.Post{}, err
	}

	return s.posts.Create(ctx, models.Post{
		BlogID:           blogID,
		Title:            title,
		ShortDescription: shortDescription,
		Content:          content,
	})
}

// UpdatePost updates a post addressed through its blog
// The post must belong to the blog, otherwise it is reported as not found
func (s *BlogService) UpdatePost(ctx context.Context, blogID uuid.UUID, postID uuid.UUID, title string, shortDescription string, content string) error {
	post, err := s.posts.GetByID(ctx, postID, uuid.Nil)
	if err != nil {
		return err
	}
	if post.BlogID != blogID {
		return apperrors.ErrPostNotFound
	}

	post.Title = title
	post.ShortDescription = shortDescription
	post.Content = content
	return s.posts.Update(ctx, post)
}

// DeletePost deletes a post addressed through its blog
func (s *BlogService) DeletePost(ctx context.Context, blogID uuid.UUID, postID uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, postID, uuid.Nil)
	if err != nil {
		return err
	}
	if post.BlogID != blogID {
		return apperrors.ErrPostNotFound
	}

	return s.posts.Delete(ctx, postID)
}

// ListPosts lists posts of the blog
// Returns apperrors.ErrBlogNotFound if the blog does not exist
func (s *BlogService) ListPosts(ctx context.Context, blogID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error) {
	_, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return models.Page[models.Post]{}, err
	}

	return s.posts.ListByBlog(ctx, blogID, q, viewerID)
}
