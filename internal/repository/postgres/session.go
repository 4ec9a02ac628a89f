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

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO device_sessions (user_id, device_id, device_name, device_ip, created_at)
VALUES ($1, $2, $3, $4, $5)
`

func (r *SessionRepo) Create(ctx context.Context, session models.DeviceSession) error {
	_, err := r.DB.Exec(ctx, createSession,
		session.UserID, session.DeviceID, session.DeviceName, session.DeviceIP, session.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperrors.ErrSessionExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getSession = `-- name: GetSession
SELECT user_id, device_id, device_name, device_ip, created_at
FROM device_sessions
WHERE user_id = $1 AND device_id = $2
`

func (r *SessionRepo) Get(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) (models.DeviceSession, error) {
	rows, _ := r.DB.Query(ctx, getSession, userID, deviceID)
	return collectSession(rows)
}

const getSessionByDeviceID = `-- name: GetSessionByDeviceID
SELECT user_id, device_id, device_name, device_ip, created_at
FROM device_sessions
WHERE device_id = $1
`

func (r *SessionRepo) GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (models.DeviceSession, error) {
	rows, _ := r.DB.Query(ctx, getSessionByDeviceID, deviceID)
	return collectSession(rows)
}

const listSessionsByUser = `-- name: ListSessionsByUser
SELECT user_id, device_id, device_name, device_ip, created_at
FROM device_sessions
WHERE user_id = $1
ORDER BY created_at
`

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceSession, error) {
	rows, _ := r.DB.Query(ctx, listSessionsByUser, userID)
	sessions, err := pgx.CollectRows(rows, rowToSession)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sessions, nil
}

const rotateSession = `-- name: RotateSession
UPDATE device_sessions
SET created_at = $4
WHERE user_id = $1 AND device_id = $2 AND created_at = $3
`

// Rotate is a compare-and-set on the session fingerprint. The created_at
// predicate makes concurrent refreshes with the same token race safely:
// exactly one UPDATE matches, the loser sees no affected rows
func (r *SessionRepo) Rotate(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID, prev time.Time, next time.Time) error {
	tag, err := r.DB.Exec(ctx, rotateSession, userID, deviceID, prev, next)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

const deleteSession = `-- name: DeleteSession
DELETE FROM device_sessions
WHERE user_id = $1 AND device_id = $2
`

func (r *SessionRepo) Delete(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteSession, userID, deviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

const deleteOtherSessions = `-- name: DeleteOtherSessions
DELETE FROM device_sessions
WHERE user_id = $1 AND device_id != $2
`

func (r *SessionRepo) DeleteOthers(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteOtherSessions, userID, keepDeviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func collectSession(rows pgx.Rows) (models.DeviceSession, error) {
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, apperrors.ErrSessionNotFound
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

func rowToSession(row pgx.CollectableRow) (models.DeviceSession, error) {
	var s models.DeviceSession
	err := row.Scan(&s.UserID, &s.DeviceID, &s.DeviceName, &s.DeviceIP, &s.CreatedAt)
	return s, err
}
