package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/blogplatform/internal/models"
)

// Fixtures shared by the repository tests. Each creates the row within the
// test transaction so it vanishes on rollback

func createTestUser(t *testing.T, tx pgx.Tx, login string) models.User {
	t.Helper()

	r := UserRepo{DB: tx}
	user, err := r.Create(t.Context(), models.User{
		Login:          login,
		Email:          login + "@example.com",
		HashedPassword: "hashedpassword123",
		Confirmed:      true,
	})
	require.NoError(t, err, "fixture user must be created")
	return user
}

func createTestBlog(t *testing.T, tx pgx.Tx, name string) models.Blog {
	t.Helper()

	r := BlogRepo{DB: tx}
	blog, err := r.Create(t.Context(), models.Blog{
		Name:        name,
		Description: "description of " + name,
		WebsiteURL:  "https://" + name + ".example.com",
	})
	require.NoError(t, err, "fixture blog must be created")
	return blog
}

func createTestPost(t *testing.T, tx pgx.Tx, blog models.Blog, title string) models.Post {
	t.Helper()

	r := PostRepo{DB: tx}
	post, err := r.Create(t.Context(), models.Post{
		BlogID:           blog.ID,
		Title:            title,
		ShortDescription: "short description",
		Content:          "content of " + title,
	})
	require.NoError(t, err, "fixture post must be created")
	return post
}

func createTestComment(t *testing.T, tx pgx.Tx, post models.Post, author models.User, content string) models.Comment {
	t.Helper()

	r := CommentRepo{DB: tx}
	comment, err := r.Create(t.Context(), models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  content,
	})
	require.NoError(t, err, "fixture comment must be created")
	return comment
}
