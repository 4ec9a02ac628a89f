package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	BlogID           uuid.UUID
	BlogName         string
	Title            string
	ShortDescription string
	Content          string
	LikesInfo        ExtendedLikesInfo
}
