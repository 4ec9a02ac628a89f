package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
)

type BlogRepo struct {
	DB DBTX
}

const createBlog = `-- name: CreateBlog
INSERT INTO blogs (id, name, description, website_url, is_membership)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, name, description, website_url, is_membership
`

func (r *BlogRepo) Create(ctx context.Context, blog models.Blog) (models.Blog, error) {
	id := blog.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createBlog, id, blog.Name, blog.Description, blog.WebsiteURL, blog.IsMembership)
	created, err := pgx.CollectOneRow(rows, rowToBlog)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

const getBlogByID = `-- name: GetBlogByID
SELECT id, created_at, name, description, website_url, is_membership
FROM blogs
WHERE id = $1
`

func (r *BlogRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, getBlogByID, id)
	blog, err := pgx.CollectOneRow(rows, rowToBlog)

	switch {
	case err == nil:
		return blog, nil
	case errors.Is(err, pgx.ErrNoRows):
		return blog, apperrors.ErrBlogNotFound
	default:
		return blog, fmt.Errorf("db error: %w", err)
	}
}

const updateBlog = `-- name: UpdateBlog
UPDATE blogs
SET name = $2, description = $3, website_url = $4
WHERE id = $1
`

func (r *BlogRepo) Update(ctx context.Context, blog models.Blog) error {
	tag, err := r.DB.Exec(ctx, updateBlog, blog.ID, blog.Name, blog.Description, blog.WebsiteURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBlogNotFound
	}
	return nil
}

const deleteBlog = `-- name: DeleteBlog
DELETE FROM blogs
WHERE id = $1
`

func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBlog, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBlogNotFound
	}
	return nil
}

const listBlogs = `-- name: ListBlogs
SELECT id, created_at, name, description, website_url, is_membership, count(*) OVER() AS total
FROM blogs
WHERE name ILIKE '%%' || $1 || '%%'
ORDER BY %s %s
LIMIT $2 OFFSET $3
`

var blogSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
}

func (r *BlogRepo) List(ctx context.Context, q models.PageQuery, searchName string) (models.Page[models.Blog], error) {
	sql := fmt.Sprintf(listBlogs, sortColumn(blogSortColumns, q.SortBy, "created_at"), sortDirection(q.SortDesc))

	var total int
	rows, _ := r.DB.Query(ctx, sql, searchName, q.PageSize, (q.Page-1)*q.PageSize)
	blogs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Blog, error) {
		var b models.Blog
		err := row.Scan(&b.ID, &b.CreatedAt, &b.Name, &b.Description, &b.WebsiteURL, &b.IsMembership, &total)
		return b, err
	})
	if err != nil {
		return models.Page[models.Blog]{}, fmt.Errorf("db error: %w", err)
	}

	return models.NewPage(blogs, q, total), nil
}

func rowToBlog(row pgx.CollectableRow) (models.Blog, error) {
	var b models.Blog
	err := row.Scan(&b.ID, &b.CreatedAt, &b.Name, &b.Description, &b.WebsiteURL, &b.IsMembership)
	return b, err
}
