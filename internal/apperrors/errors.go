package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrLoginAlreadyExists = errors.New("user with this login already exists")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")

	// Login failure. Covers both unknown user and wrong password so the
	// response can't be used for user enumeration
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Any token or session check failure on protected paths
	ErrUnauthorized = errors.New("unauthorized")

	ErrSessionNotFound = errors.New("device session not found")
	ErrSessionExists   = errors.New("device session already exists")

	ErrConfirmCodeNotFound = errors.New("confirmation code not found")
	ErrConfirmCodeExpired  = errors.New("confirmation code is expired")
	ErrAlreadyConfirmed    = errors.New("email is already confirmed")

	ErrBlogNotFound    = errors.New("blog not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrForbidden = errors.New("action is forbidden for this user")
)
