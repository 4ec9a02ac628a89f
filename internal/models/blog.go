package models

import (
	"time"

	"github.com/google/uuid"
)

type Blog struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Name         string
	Description  string
	WebsiteURL   string
	IsMembership bool
}
