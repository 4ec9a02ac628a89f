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

type CommentRepo struct {
	DB DBTX
}

const createComment = `-- name: CreateComment
INSERT INTO comments (id, post_id, author_id, content)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, post_id, content, author_id, (SELECT login FROM users WHERE id = $3)
`

func (r *CommentRepo) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	id := comment.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createComment, id, comment.PostID, comment.AuthorID, comment.Content)
	created, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.CreatedAt, &c.PostID, &c.Content, &c.AuthorID, &c.AuthorLogin)
		return c, err
	})
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	created.LikesInfo.MyStatus = models.LikeStatusNone
	return created, nil
}

const commentView = `
SELECT c.id, c.created_at, c.post_id, c.content, c.author_id, u.login,
       (SELECT count(*) FROM comment_likes WHERE comment_id = c.id AND status = 'Like') AS likes,
       (SELECT count(*) FROM comment_likes WHERE comment_id = c.id AND status = 'Dislike') AS dislikes,
       COALESCE((SELECT status FROM comment_likes WHERE comment_id = c.id AND user_id = %s), 'None') AS my_status
`

const getCommentByID = `-- name: GetCommentByID` + commentView + `
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.id = $2
`

func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, fmt.Sprintf(getCommentByID, "$1"), viewerID, id)
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	switch {
	case err == nil:
		return comment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return comment, apperrors.ErrCommentNotFound
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

const updateComment = `-- name: UpdateComment
UPDATE comments
SET content = $2
WHERE id = $1
`

func (r *CommentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	tag, err := r.DB.Exec(ctx, updateComment, id, content)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

const deleteComment = `-- name: DeleteComment
DELETE FROM comments
WHERE id = $1
`

func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteComment, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

const listCommentsByPost = `-- name: ListCommentsByPost` + commentView + `, count(*) OVER() AS total
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = $4
ORDER BY %s %s
LIMIT $2 OFFSET $3
`

var commentSortColumns = map[string]string{
	"createdAt": "c.created_at",
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID uuid.UUID, q models.PageQuery, viewerID uuid.UUID) (models.Page[models.Comment], error) {
	sql := fmt.Sprintf(listCommentsByPost, "$1", sortColumn(commentSortColumns, q.SortBy, "c.created_at"), sortDirection(q.SortDesc))

	var total int
	rows, _ := r.DB.Query(ctx, sql, viewerID, q.PageSize, (q.Page-1)*q.PageSize, postID)
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		return scanComment(row, &total)
	})
	if err != nil {
		return models.Page[models.Comment]{}, fmt.Errorf("db error: %w", err)
	}

	return models.NewPage(comments, q, total), nil
}

const setCommentLike = `-- name: SetCommentLike
INSERT INTO comment_likes (comment_id, user_id, status)
VALUES ($1, $2, $3)
ON CONFLICT (comment_id, user_id) DO UPDATE
SET status = EXCLUDED.status, added_at = now()
WHERE comment_likes.status IS DISTINCT FROM EXCLUDED.status
`

func (r *CommentRepo) SetLikeStatus(ctx context.Context, commentID uuid.UUID, userID uuid.UUID, status models.LikeStatus) error {
	_, err := r.DB.Exec(ctx, setCommentLike, commentID, userID, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func rowToComment(row pgx.CollectableRow) (models.Comment, error) {
	return scanComment(row, nil)
}

func scanComment(row pgx.Row, total *int) (models.Comment, error) {
	var c models.Comment
	var status string

	dest := []any{
		&c.ID, &c.CreatedAt, &c.PostID, &c.Content, &c.AuthorID, &c.AuthorLogin,
		&c.LikesInfo.LikesCount, &c.LikesInfo.DislikesCount, &status,
	}
	if total != nil {
		dest = append(dest, total)
	}

	err := row.Scan(dest...)
	c.LikesInfo.MyStatus = models.LikeStatus(status)
	return c, err
}
