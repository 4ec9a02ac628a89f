package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	PostID      uuid.UUID
	Content     string
	AuthorID    uuid.UUID
	AuthorLogin string
	LikesInfo   LikesInfo
}
