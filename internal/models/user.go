package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Login          string
	Email          string
	HashedPassword string

	// Email confirmation state. Code and expiry are zeroed once confirmed
	Confirmed        bool
	ConfirmCode      uuid.UUID
	ConfirmExpiresAt time.Time
}
