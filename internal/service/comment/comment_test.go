package comment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository/postgres"
	"github.com/mkuznecov/blogplatform/internal/testutil"
)

func Test_CommentService(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	type fixture struct {
		service *CommentService
		author  models.User
		other   models.User
		comment models.Comment
	}

	// One comment by author, a second user to exercise ownership checks
	setup := func(t *testing.T, tx pgx.Tx) fixture {
		t.Helper()

		users := &postgres.UserRepo{DB: tx}
		author, err := users.Create(t.Context(), models.User{
			Login: "author", Email: "author@example.com", HashedPassword: "x", Confirmed: true,
		})
		require.NoError(t, err)
		other, err := users.Create(t.Context(), models.User{
			Login: "other", Email: "other@example.com", HashedPassword: "x", Confirmed: true,
		})
		require.NoError(t, err)

		blogs := &postgres.BlogRepo{DB: tx}
		blog, err := blogs.Create(t.Context(), models.Blog{
			Name: "blog", Description: "d", WebsiteURL: "https://blog.example.com",
		})
		require.NoError(t, err)

		posts := &postgres.PostRepo{DB: tx}
		post, err := posts.Create(t.Context(), models.Post{
			BlogID: blog.ID, Title: "post", ShortDescription: "s", Content: "c",
		})
		require.NoError(t, err)

		comments := &postgres.CommentRepo{DB: tx}
		comment, err := comments.Create(t.Context(), models.Comment{
			PostID: post.ID, AuthorID: author.ID, Content: "original comment content goes here",
		})
		require.NoError(t, err)

		return fixture{
			service: NewService(postgres.NewStorage(tx)),
			author:  author,
			other:   other,
			comment: comment,
		}
	}

	t.Run("author updates own comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.Update(t.Context(), f.comment.ID, &f.author, "edited comment content goes here")
			require.NoError(t, err)

			got, err := f.service.Get(t.Context(), f.comment.ID, uuid.Nil)
			require.NoError(t, err)
			assert.Equal(t, "edited comment content goes here", got.Content)
		})
	})

	t.Run("non author may not update", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.Update(t.Context(), f.comment.ID, &f.other, "hijacked comment content goes here")

			require.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("update unknown comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.Update(t.Context(), uuid.New(), &f.author, "some replacement comment content")

			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})

	t.Run("author deletes own comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.Delete(t.Context(), f.comment.ID, &f.author)
			require.NoError(t, err)

			_, err = f.service.Get(t.Context(), f.comment.ID, uuid.Nil)
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})

	t.Run("non author may not delete", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.Delete(t.Context(), f.comment.ID, &f.other)

			require.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("anyone sets like status", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.SetLikeStatus(t.Context(), f.comment.ID, &f.other, models.LikeStatusLike)
			require.NoError(t, err)

			got, err := f.service.Get(t.Context(), f.comment.ID, f.other.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.LikesInfo.LikesCount)
			assert.Equal(t, models.LikeStatusLike, got.LikesInfo.MyStatus)
		})
	})

	t.Run("like unknown comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := setup(t, tx)

			err := f.service.SetLikeStatus(t.Context(), uuid.New(), &f.other, models.LikeStatusLike)

			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
