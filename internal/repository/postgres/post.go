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

type PostRepo struct {
	DB DBTX
}

// How many most recent likes a post view carries
const newestLikesLimit = 3

const createPost = `-- name: CreatePost
INSERT INTO posts (id, blog_id, title, short_description, content)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, blog_id, (SELECT name FROM blogs WHERE id = $2), title, short_description, content
`

func (r *PostRepo) Create(ctx context.Context, post models.Post) (models.Post, error) {
	id := post.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createPost, id, post.BlogID, post.Title, post.ShortDescription, post.Content)
	created, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Post, error) {
		var p models.Post
		err := row.Scan(&p.ID, &p.CreatedAt, &p.BlogID, &p.BlogName, &p.Title, &p.ShortDescription, &p.Content)
		return p, err
	})
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	created.LikesInfo.MyStatus = models.LikeStatusNone
	created.LikesInfo.NewestLikes = []models.LikeDetails{}
	return created, nil
}

// Post columns with like aggregates. $viewer is the user whose reaction is
// reported as my_status; uuid.Nil never matches a row so anonymous viewers
// get 'None'
const postView = `
SELECT p.id, p.created_at, p.blog_id, b.name, p.title, p.short_description, p.content,
       (SELECT count(*) FROM post_likes WHERE post_id = p.id AND status = 'Like') AS likes,
       (SELECT count(*) FROM post_likes WHERE post_id = p.id AND status = 'Dislike') AS dislikes,
       COALESCE((SELECT status FROM post_likes WHERE post_id = p.id AND user_id = %s), 'None') AS my_status
`

const getPostByID = `-- name: GetPostByID` + postView + `
FROM posts p
JOIN blogs b ON b.id = p.blog_id
WHERE p.id = $2
`

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, fmt.Sprintf(getPostByID, "$1"), viewerID, id)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	case err != nil:
		return post, fmt.Errorf("db error: %w", err)
	}

	likes, err := r.newestLikes(ctx, []uuid.UUID{post.ID})
	if err != nil {
		return post, err
	}
	post.LikesInfo.NewestLikes = likes[post.ID]
	if post.LikesInfo.NewestLikes == nil {
		post.LikesInfo.NewestLikes = []models.LikeDetails{}
	}

	return post, nil
}

const updatePost = `-- name: UpdatePost
UPDATE posts
SET title = $2, short_description = $3, content = $4
WHERE id = $1
`

func (r *PostRepo) Update(ctx context.Context, post models.Post) error {
	tag, err := r.DB.Exec(ctx, updatePost, post.ID, post.Title, post.ShortDescription, post.Content)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1
`

func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

const listPosts = `-- name: ListPosts` + postView + `, count(*) OVER() AS total
FROM posts p
JOIN blogs b ON b.id = p.blog_id
ORDER BY %s %s
LIMIT $2 OFFSET $3
`

const listPostsByBlog = `-- name: ListPostsByBlog` + postView + `, count(*) OVER() AS total
FROM posts p
JOIN blogs b ON b.id = p.blog_id
WHERE p.blog_id = $4
ORDER BY %s %s
LIMIT $2 OFFSET $3
`

var postSortColumns = map[string]string{
	"createdAt": "p.created_at",
	"title":     "p.title",
	"blogName":  "b.name",
}

func (r *PostRepo) List(ctx context.Context, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error) {
	sql := fmt.Sprintf(listPosts, "$1", sortColumn(postSortColumns, q.SortBy, "p.created_at"), sortDirection(q.SortDesc))
	return r.collectPage(ctx, q, sql, viewerID, q.PageSize, (q.Page-1)*q.PageSize)
}

func (r *PostRepo) ListByBlog(ctx context.Context, blogID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Post], error) {
	sql := fmt.Sprintf(listPostsByBlog, "$1", sortColumn(postSortColumns, q.SortBy, "p.created_at"), sortDirection(q.SortDesc))
	return r.collectPage(ctx, q, sql, viewerID, q.PageSize, (q.Page-1)*q.PageSize, blogID)
}

const setPostLike = `-- name: SetPostLike
INSERT INTO post_likes (post_id, user_id, status)
VALUES ($1, $2, $3)
ON CONFLICT (post_id, user_id) DO UPDATE
SET status = EXCLUDED.status, added_at = now()
WHERE post_likes.status IS DISTINCT FROM EXCLUDED.status
`

func (r *PostRepo) SetLikeStatus(ctx context.Context, postID uuid.UUID, userID uuid.UUID, status models.LikeStatus) error {
	_, err := r.DB.Exec(ctx, setPostLike, postID, userID, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostRepo) collectPage(ctx context.Context, q models.PageQuery, sql string, args ...any) (models.Page[models.Post], error) {
	var page models.Page[models.Post]
	var total int

	rows, _ := r.DB.Query(ctx, sql, args...)
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Post, error) {
		return scanPost(row, &total)
	})
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	// One extra query fills the newest likes for the whole page
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	likes, err := r.newestLikes(ctx, ids)
	if err != nil {
		return page, err
	}
	for i := range posts {
		posts[i].LikesInfo.NewestLikes = likes[posts[i].ID]
		if posts[i].LikesInfo.NewestLikes == nil {
			posts[i].LikesInfo.NewestLikes = []models.LikeDetails{}
		}
	}

	return models.NewPage(posts, q, total), nil
}

const selectNewestLikes = `-- name: SelectNewestLikes
SELECT post_id, added_at, user_id, login
FROM (
    SELECT pl.post_id, pl.added_at, pl.user_id, u.login,
           row_number() OVER (PARTITION BY pl.post_id ORDER BY pl.added_at DESC) AS rn
    FROM post_likes pl
    JOIN users u ON u.id = pl.user_id
    WHERE pl.status = 'Like' AND pl.post_id = ANY($1)
) ranked
WHERE rn <= $2
ORDER BY post_id, added_at DESC
`

func (r *PostRepo) newestLikes(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.LikeDetails, error) {
	likes := make(map[uuid.UUID][]models.LikeDetails, len(postIDs))
	if len(postIDs) == 0 {
		return likes, nil
	}

	rows, _ := r.DB.Query(ctx, selectNewestLikes, postIDs, newestLikesLimit)
	_, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (struct{}, error) {
		var postID uuid.UUID
		var like models.LikeDetails
		err := row.Scan(&postID, &like.AddedAt, &like.UserID, &like.Login)
		likes[postID] = append(likes[postID], like)
		return struct{}{}, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return likes, nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	return scanPost(row, nil)
}

func scanPost(row pgx.Row, total *int) (models.Post, error) {
	var p models.Post
	var status string

	dest := []any{
		&p.ID, &p.CreatedAt, &p.BlogID, &p.BlogName, &p.Title, &p.ShortDescription, &p.Content,
		&p.LikesInfo.LikesCount, &p.LikesInfo.DislikesCount, &status,
	}
	if total != nil {
		dest = append(dest, total)
	}

	err := row.Scan(dest...)
	p.LikesInfo.MyStatus = models.LikeStatus(status)
	return p, err
}
