package domain

import "errors"

var (
	ErrIdentityEmpty     = errors.New("identity empty")
	ErrIdentityTooLong   = errors.New("identity too long")
	ErrIdentityTaken     = errors.New("identity already taken")
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrNotRegistered     = errors.New("connection not registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserBusy          = errors.New("user busy")
	ErrSelfCall          = errors.New("cannot call yourself")
	ErrNoPendingCall     = errors.New("no pending call from user")
	ErrRoomNotFound      = errors.New("room not found")
)
