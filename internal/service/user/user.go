package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository"
)

// Hasher matches auth.PasswordHasher; declared locally so the package
// depends on the contract only
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword string, password string) error
}

// UserService serves the admin user surface
type UserService struct {
	hasher Hasher
	users  repository.UserRepo
}

func NewService(hasher Hasher, users repository.UserRepo) *UserService {
	return &UserService{hasher: hasher, users: users}
}

// Create adds a user that is confirmed right away (admin-created accounts
// skip the email confirmation flow)
func (s *UserService) Create(ctx context.Context, login string, email string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.users.Create(ctx, models.User{
		Login:          login,
		Email:          email,
		HashedPassword: hash,
		Confirmed:      true,
	})
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, q models.PageQuery, searchLogin string, searchEmail string) (models.Page[models.User], error) {
	return s.users.List(ctx, q, searchLogin, searchEmail)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
