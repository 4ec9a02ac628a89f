package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository/postgres"
	"github.com/mkuznecov/blogplatform/internal/service/auth"
	"github.com/mkuznecov/blogplatform/internal/testutil"
)

func Test_UserService(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newService := func(tx pgx.Tx) *UserService {
		return NewService(auth.DefaultHasher, &postgres.UserRepo{DB: tx})
	}

	t.Run("created user is confirmed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)

			user, err := s.Create(t.Context(), "nk", "nk@example.com", "StrongEnoughPassword")

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.True(t, user.Confirmed, "admin-created accounts skip email confirmation")
		})
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)

			user, err := s.Create(t.Context(), "nk", "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			got, err := (&postgres.UserRepo{DB: tx}).GetByID(t.Context(), user.ID)
			require.NoError(t, err)
			assert.NotEqual(t, "StrongEnoughPassword", got.HashedPassword)
			assert.NoError(t, auth.DefaultHasher.Compare(got.HashedPassword, "StrongEnoughPassword"))
		})
	})

	t.Run("duplicate login", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)
			_, err := s.Create(t.Context(), "nk", "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			_, err = s.Create(t.Context(), "nk", "other@example.com", "StrongEnoughPassword")

			require.ErrorIs(t, err, apperrors.ErrLoginAlreadyExists)
		})
	})

	t.Run("list with search term", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)
			_, err := s.Create(t.Context(), "alpha", "alpha@example.com", "StrongEnoughPassword")
			require.NoError(t, err)
			_, err = s.Create(t.Context(), "beta", "beta@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			q := models.PageQuery{Page: 1, PageSize: 10, SortBy: "login", SortDesc: false}
			page, err := s.List(t.Context(), q, "alp", "")

			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "alpha", page.Items[0].Login)
		})
	})

	t.Run("delete user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)
			user, err := s.Create(t.Context(), "nk", "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), user.ID))

			_, err = s.Get(t.Context(), user.ID)
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("delete unknown user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(tx)

			err := s.Delete(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
