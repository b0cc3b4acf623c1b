package service

import "errors"

// Validation errors: reported synchronously, no side effect performed.
var (
	ErrEmptyContent  = errors.New("message content is empty")
	ErrLimitTooLarge = errors.New("limit exceeds maximum page size")
	ErrBadCheckpoint = errors.New("checkpoint does not parse as a timestamp")
)

// Authorization errors: refused before any engine work runs.
var (
	ErrNotRoomMember = errors.New("user is not a member of the room")
	ErrRoomNotFound  = errors.New("room does not exist")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrMessageNotFound    = errors.New("message not found")
)
