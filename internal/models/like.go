package models

import (
	"time"

	"github.com/google/uuid"
)

// LikeStatus is a per-user reaction on a post or a comment
type LikeStatus string

const (
	LikeStatusNone    LikeStatus = "None"
	LikeStatusLike    LikeStatus = "Like"
	LikeStatusDislike LikeStatus = "Dislike"
)

func (s LikeStatus) Valid() bool {
	switch s {
	case LikeStatusNone, LikeStatusLike, LikeStatusDislike:
		return true
	}
	return false
}

type LikesInfo struct {
	LikesCount    int
	DislikesCount int

	// Status set by the viewing user; None for anonymous viewers
	MyStatus LikeStatus
}

// LikeDetails describes a single like for the post "newest likes" list
type LikeDetails struct {
	AddedAt time.Time
	UserID  uuid.UUID
	Login   string
}

type ExtendedLikesInfo struct {
	LikesInfo
	NewestLikes []LikeDetails
}
