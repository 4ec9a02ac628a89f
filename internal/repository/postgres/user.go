package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, login, email, password_hash, confirmed, confirm_code, confirm_expires_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, login, email, password_hash, confirmed, confirm_code, confirm_expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createUser,
		id, user.Login, user.Email, user.HashedPassword,
		user.Confirmed, nullableUUID(user.ConfirmCode), nullableTime(user.ConfirmExpiresAt),
	)
	created, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "users_login_key":
				return created, apperrors.ErrLoginAlreadyExists
			case "users_email_key":
				return created, apperrors.ErrEmailAlreadyExists
			default:
				return created, apperrors.ErrUserAlreadyExists
			}
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByLoginOrEmail = `-- name: GetUserByLoginOrEmail
SELECT ` + userColumns + `
FROM users
WHERE login = $1 OR email = $1
`

func (r *UserRepo) GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByLoginOrEmail, loginOrEmail)
	return collectUser(rows)
}

const getUserByConfirmCode = `-- name: GetUserByConfirmCode
SELECT ` + userColumns + `
FROM users
WHERE confirm_code = $1
`

func (r *UserRepo) GetByConfirmCode(ctx context.Context, code uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByConfirmCode, code)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrConfirmCodeNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const confirmUser = `-- name: ConfirmUser
UPDATE users
SET confirmed = TRUE, confirm_code = NULL, confirm_expires_at = NULL
WHERE id = $1
`

func (r *UserRepo) Confirm(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, confirmUser, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const setConfirmCode = `-- name: SetConfirmCode
UPDATE users
SET confirm_code = $2, confirm_expires_at = $3
WHERE id = $1
`

func (r *UserRepo) SetConfirmCode(ctx context.Context, id uuid.UUID, code uuid.UUID, expiresAt time.Time) error {
	tag, err := r.DB.Exec(ctx, setConfirmCode, id, code, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + `, count(*) OVER() AS total
FROM users
WHERE (($1 = '' AND $2 = '')
    OR ($1 != '' AND login ILIKE '%%' || $1 || '%%')
    OR ($2 != '' AND email ILIKE '%%' || $2 || '%%'))
ORDER BY %s %s
LIMIT $3 OFFSET $4
`

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"login":     "login",
	"email":     "email",
}

func (r *UserRepo) List(ctx context.Context, q models.PageQuery, searchLogin string, searchEmail string) (models.Page[models.User], error) {
	sql := fmt.Sprintf(listUsers, sortColumn(userSortColumns, q.SortBy, "created_at"), sortDirection(q.SortDesc))

	var total int
	rows, _ := r.DB.Query(ctx, sql, searchLogin, searchEmail, q.PageSize, (q.Page-1)*q.PageSize)
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		u, err := scanUser(row, &total)
		return u, err
	})
	if err != nil {
		return models.Page[models.User]{}, fmt.Errorf("db error: %w", err)
	}

	return models.NewPage(users, q, total), nil
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	return scanUser(row, nil)
}

// scanUser reads user columns plus the optional trailing window total
func scanUser(row pgx.Row, total *int) (models.User, error) {
	var u models.User
	var code *uuid.UUID
	var expiresAt *time.Time

	dest := []any{&u.ID, &u.CreatedAt, &u.Login, &u.Email, &u.HashedPassword, &u.Confirmed, &code, &expiresAt}
	if total != nil {
		dest = append(dest, total)
	}

	err := row.Scan(dest...)
	if code != nil {
		u.ConfirmCode = *code
	}
	if expiresAt != nil {
		u.ConfirmExpiresAt = *expiresAt
	}
	return u, err
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
